package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"classmark/internal/attendance"
)

// Redis wraps the redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// RedisStore keeps the record list as JSON under a single redis key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a store under the given key.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "attendance_records"
	}
	return &RedisStore{client: client, key: key}
}

// Load reads the full record list; an absent key loads as an empty list.
func (s *RedisStore) Load(ctx context.Context) ([]attendance.Record, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
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
func (s *RedisStore) Save(ctx context.Context, records []attendance.Record) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, raw, 0).Err()
}
