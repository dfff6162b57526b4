package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
)

// KeyPrefix namespaces mirrored documents in Redis.
const KeyPrefix = "flashcard:progress:"

// Redis mirrors documents as JSON strings with a TTL.
type Redis struct {
	rdb *goredis.Client
	ttl time.Duration
}

var (
	_ Subscriber = (*Redis)(nil)
	_ Loader     = (*Redis)(nil)
)

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr string, ttl time.Duration) (*Redis, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{rdb: rdb, ttl: ttl}, nil
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) Save(ctx context.Context, userID string, doc progress.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.rdb.Set(ctx, KeyPrefix+userID, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context, userID string) (progress.Document, bool, error) {
	raw, err := r.rdb.Get(ctx, KeyPrefix+userID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return progress.Document{}, false, nil
	}
	if err != nil {
		return progress.Document{}, false, fmt.Errorf("redis get: %w", err)
	}
	var doc progress.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return progress.Document{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return doc, true, nil
}

func (r *Redis) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}
