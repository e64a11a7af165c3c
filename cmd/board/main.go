package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classmark/internal/config"
	"classmark/internal/display"
	"classmark/internal/notify"
	"classmark/internal/store"
	"classmark/internal/token"
)

// Board is the teacher's console: it shows the active attendance code with
// a countdown, demands an explicit keypress to mint a new one after expiry,
// and tails the live check-in feed.
func main() {
	lectureID := flag.String("lecture", "", "lecture session id (required)")
	lectureName := flag.String("name", "", "lecture display name")
	teacherID := flag.String("teacher", "", "teacher id (required)")
	flag.Parse()

	if *lectureID == "" || *teacherID == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *lectureName == "" {
		*lectureName = *lectureID
	}

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	codec, err := token.NewCodec(cfg.QRSecret)
	if err != nil {
		log.Fatalf("codec init failed: %v", err)
	}
	issuer := token.NewIssuer(codec, cfg.TokenWindow)
	board := display.NewBoard(issuer, *lectureID, *lectureName, *teacherID)

	if cfg.FeedBackend == "redis" {
		redisClient := store.NewRedis(cfg.RedisAddr)
		feed := notify.NewRedisFeed(redisClient.Client, "classmark:checkins")
		go tailCheckins(ctx, feed)
	} else {
		// The in-memory feed lives inside the API process and cannot
		// reach a separate console.
		log.Printf("live check-ins disabled: FEED_BACKEND=%s (set FEED_BACKEND=redis to tail check-ins here)", cfg.FeedBackend)
	}

	// Keypresses arrive on their own channel so the tick loop stays free.
	keys := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case keys <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := generate(board); err != nil {
		log.Fatalf("token generation failed: %v", err)
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nboard stopped")
			return
		case now := <-ticker.C:
			wasActive := board.State() == display.StateActive
			board.Tick(now)
			switch board.State() {
			case display.StateActive:
				fmt.Printf("\rexpires in: %2.0fs ", board.Remaining(now).Seconds())
			case display.StateExpired:
				if wasActive {
					fmt.Println("\ncode expired, press Enter to generate a new one")
				}
			}
		case <-keys:
			// Regeneration is always explicit; while a code is still
			// active this replaces it and restarts the countdown.
			if err := generate(board); err != nil {
				log.Printf("token generation failed: %v", err)
			}
		}
	}
}

func generate(board *display.Board) error {
	uri, err := board.Generate(time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("\nattendance code:\n  %s\n", uri)
	return nil
}

func tailCheckins(ctx context.Context, feed notify.Feed) {
	records, err := feed.Subscribe(ctx)
	if err != nil {
		log.Printf("check-in feed unavailable: %v", err)
		return
	}
	for rec := range records {
		fmt.Printf("\n✔ %s (%s) marked present for %s\n", rec.StudentName, rec.StudentID, rec.LectureName)
	}
}
