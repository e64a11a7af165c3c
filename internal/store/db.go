package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"classmark/internal/attendance"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return &DB{Client: db}, db.PingContext(context.Background())
}

// Healthy verifies database connectivity.
func (d *DB) Healthy(ctx context.Context) bool {
	if d == nil || d.Client == nil {
		return false
	}
	return d.Client.PingContext(ctx) == nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

// PostgresStore keeps the record list as one JSON blob row, preserving the
// single-key read-modify-write contract rather than a row per record.
type PostgresStore struct {
	db  *sql.DB
	key string
}

// NewPostgresStore creates a store under the given blob key and ensures the
// backing table exists.
func NewPostgresStore(ctx context.Context, db *sql.DB, key string) (*PostgresStore, error) {
	if key == "" {
		key = "attendance_records"
	}
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS attendance_blobs (
			key        TEXT PRIMARY KEY,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{db: db, key: key}, nil
}

// Load reads the full record list; an absent row loads as an empty list.
func (s *PostgresStore) Load(ctx context.Context) ([]attendance.Record, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM attendance_blobs WHERE key = $1`, s.key,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []attendance.Record{}, nil
		}
		return nil, err
	}
	var records []attendance.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Save replaces the stored list.
func (s *PostgresStore) Save(ctx context.Context, records []attendance.Record) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO attendance_blobs (key, data)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, s.key, raw)
	return err
}
