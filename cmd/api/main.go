package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"classmark/internal/attendance"
	"classmark/internal/auth"
	"classmark/internal/config"
	"classmark/internal/httpmiddleware"
	"classmark/internal/metrics"
	"classmark/internal/notify"
	"classmark/internal/scan"
	"classmark/internal/store"
	"classmark/internal/token"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	codec, err := token.NewCodec(cfg.QRSecret)
	if err != nil {
		return err
	}
	issuer := token.NewIssuer(codec, cfg.TokenWindow)
	validator := token.NewValidator(codec)

	redisClient := store.NewRedis(cfg.RedisAddr)

	recordStore, db, err := buildStore(cfg, redisClient)
	if err != nil {
		return err
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	var feed notify.Feed
	if cfg.FeedBackend == "redis" {
		feed = notify.NewRedisFeed(redisClient.Client, "classmark:checkins")
	} else {
		feed = notify.NewInMemory(64)
	}

	att := attendance.NewService(recordStore)
	gates := newGateSet()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())

	limiter := httpmiddleware.NewLimiter(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	r.Use(limiter.ByClientIP())

	// Scans are additionally limited per student subject, so one session
	// cannot burn the shared IP budget from behind a campus NAT.
	scanLimiter := httpmiddleware.NewLimiter(cfg.RateLimitPerMin, cfg.RateLimitPerMin)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		ctx := c.Request.Context()
		redisHealthy := redisClient.Healthy(ctx)

		// Liveness of whichever backend actually holds the records.
		storeHealthy := true
		switch cfg.StoreBackend {
		case "redis":
			storeHealthy = redisHealthy
		case "postgres":
			storeHealthy = db.Healthy(ctx)
		}

		status := http.StatusOK
		if !storeHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "store": cfg.StoreBackend, "store_healthy": storeHealthy, "redis": redisHealthy})
	})

	// Dev login: trades an asserted identity for a session JWT. Real
	// deployments would put an identity provider here.
	r.POST("/v1/sessions", func(c *gin.Context) {
		var req struct {
			Subject string `json:"subject" binding:"required"`
			Name    string `json:"name" binding:"required"`
			Role    string `json:"role" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Role != auth.RoleTeacher && req.Role != auth.RoleStudent {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role must be teacher or student"})
			return
		}
		tok, exp, err := auth.Issue(req.Subject, req.Name, req.Role, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.SessionTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"access_token": tok, "expires_at": exp.Unix()})
	})

	teacherGroup := r.Group("/v1", auth.Require(cfg.JWTSigningKey, cfg.JWTIssuer, auth.RoleTeacher))

	teacherGroup.POST("/tokens", func(c *gin.Context) {
		var req struct {
			LectureID   string `json:"lecture_id" binding:"required"`
			LectureName string `json:"lecture_name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		claims, _ := auth.FromContext(c)

		uri, payload, err := issuer.Issue(req.LectureID, req.LectureName, claims.Subject, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		metrics.TokensIssued.Inc()
		c.JSON(http.StatusCreated, gin.H{
			"data":       uri,
			"issued_at":  payload.IssuedAt,
			"expires_at": payload.ExpiresAt,
		})
	})

	studentGroup := r.Group("/v1", auth.Require(cfg.JWTSigningKey, cfg.JWTIssuer, auth.RoleStudent))

	studentGroup.POST("/scans", func(c *gin.Context) {
		var req struct {
			Data string `json:"data" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		claims, _ := auth.FromContext(c)

		if !scanLimiter.Allow(claims.Subject) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}

		// One in-flight scan per student session; rapid duplicate
		// submissions of the same presentation are turned away.
		gate := gates.get(claims.Subject)
		if err := gate.Start(); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "scan already in progress"})
			return
		}
		if err := gate.Capture(); err != nil {
			gate.Cancel()
			c.JSON(http.StatusConflict, gin.H{"error": "scan already in progress"})
			return
		}
		defer gate.Finish()

		now := time.Now()
		payload, err := validator.Validate(req.Data, now)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrExpired):
				metrics.Scans.WithLabelValues("expired").Inc()
				c.JSON(http.StatusGone, gin.H{"error": "QR code expired, ask for a new one"})
			default:
				metrics.Scans.WithLabelValues("malformed").Inc()
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid QR code"})
			}
			return
		}

		rec, err := att.Redeem(c.Request.Context(), payload, claims.Subject, claims.Name, now)
		if err != nil {
			log.Printf("redeem failed for %s: %v", claims.Subject, err)
			metrics.Scans.WithLabelValues("persistence_error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "attendance could not be recorded, try again"})
			return
		}
		metrics.Scans.WithLabelValues("ok").Inc()
		metrics.RecordsPersisted.Inc()

		if err := feed.Publish(c.Request.Context(), rec); err != nil {
			log.Printf("feed publish failed: %v", err)
		}

		c.JSON(http.StatusCreated, rec)
	})

	recordsGroup := r.Group("/v1", auth.Require(cfg.JWTSigningKey, cfg.JWTIssuer, ""))

	recordsGroup.GET("/records", func(c *gin.Context) {
		var (
			records []attendance.Record
			err     error
		)
		if lectureID := c.Query("lecture_id"); lectureID != "" {
			records, err = att.GetByLecture(c.Request.Context(), lectureID)
		} else {
			records, err = att.GetAll(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "records unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": records})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

func buildStore(cfg config.App, redisClient *store.Redis) (attendance.Store, *store.DB, error) {
	switch cfg.StoreBackend {
	case "redis":
		return store.NewRedisStore(redisClient.Client, "attendance_records"), nil, nil
	case "postgres":
		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		pg, err := store.NewPostgresStore(context.Background(), db.Client, "attendance_records")
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return pg, db, nil
	default:
		return store.NewFileStore(cfg.StorePath), nil, nil
	}
}

// gateSet lazily creates one scan gate per student session subject.
type gateSet struct {
	mu    sync.Mutex
	gates map[string]*scan.Gate
}

func newGateSet() *gateSet {
	return &gateSet{gates: make(map[string]*scan.Gate)}
}

func (g *gateSet) get(subject string) *scan.Gate {
	g.mu.Lock()
	defer g.mu.Unlock()
	gate, ok := g.gates[subject]
	if !ok {
		gate = scan.NewGate()
		g.gates[subject] = gate
	}
	return gate
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
