// Package notify carries freshly redeemed records from the scan endpoint to
// whoever is presenting the code, so the teacher sees check-ins live.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"classmark/internal/attendance"
)

// Feed is the abstraction over delivery backends.
type Feed interface {
	Publish(ctx context.Context, rec attendance.Record) error
	Subscribe(ctx context.Context) (<-chan attendance.Record, error)
}

// InMemory is a channel-backed feed for a single-process setup.
type InMemory struct {
	ch chan attendance.Record
}

// NewInMemory creates a bounded in-memory feed.
func NewInMemory(size int) *InMemory {
	return &InMemory{ch: make(chan attendance.Record, size)}
}

// Publish delivers a record to the feed.
func (f *InMemory) Publish(ctx context.Context, rec attendance.Record) error {
	select {
	case f.ch <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns a channel of redeemed records.
func (f *InMemory) Subscribe(ctx context.Context) (<-chan attendance.Record, error) {
	out := make(chan attendance.Record)
	go func() {
		defer close(out)
		for {
			select {
			case rec := <-f.ch:
				// The forward itself must also honor cancellation,
				// or a subscriber that stops draining pins this
				// goroutine forever.
				select {
				case out <- rec:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// RedisFeed is a Redis list-backed feed using LPUSH/BRPOP, for when the API
// and the teacher console run as separate processes.
type RedisFeed struct {
	client *redis.Client
	key    string
}

// NewRedisFeed builds a feed on the given list key.
func NewRedisFeed(client *redis.Client, key string) *RedisFeed {
	if key == "" {
		key = "classmark:checkins"
	}
	return &RedisFeed{client: client, key: key}
}

// Publish delivers a record to the feed.
func (f *RedisFeed) Publish(ctx context.Context, rec attendance.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return f.client.LPush(ctx, f.key, raw).Err()
}

// Subscribe streams records using BRPOP.
func (f *RedisFeed) Subscribe(ctx context.Context) (<-chan attendance.Record, error) {
	out := make(chan attendance.Record)
	go func() {
		defer close(out)
		for {
			res, err := f.client.BRPop(ctx, 5*time.Second, f.key).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				continue
			}
			if len(res) == 2 {
				var rec attendance.Record
				if err := json.Unmarshal([]byte(res[1]), &rec); err == nil {
					out <- rec
				}
			}
		}
	}()
	return out, nil
}
