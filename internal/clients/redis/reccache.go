package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/screenpick/screenpick-backend/internal/logger"
	"github.com/screenpick/screenpick-backend/internal/recommender"
)

// RecCache holds the ranked recommendation list per user so repeat requests
// skip the scoring pass. Every preference mutation invalidates the user's
// entry and every retrain invalidates all of them, so a cached list is never
// stale relative to the edge state or the model.
type RecCache interface {
	Get(ctx context.Context, userID uuid.UUID) ([]recommender.ScoredRow, bool)
	Set(ctx context.Context, userID uuid.UUID, rows []recommender.ScoredRow)
	Invalidate(ctx context.Context, userID uuid.UUID)
	InvalidateAll(ctx context.Context)
	Close() error
}

type recCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	ttl    time.Duration
	prefix string
}

// NewRecCache connects to redis using REDIS_ADDR. An empty REDIS_ADDR is an
// error; callers treat the cache as optional and run without one.
//
// catalogFP scopes every key: cached rows are catalog row indexes, so an
// entry written against one artifact must never be read by a process serving
// another.
func NewRecCache(log *logger.Logger, ttl time.Duration, catalogFP string) (RecCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &recCache{
		log:    log.With("service", "RecCache"),
		rdb:    rdb,
		ttl:    ttl,
		prefix: "rec:" + catalogFP + ":",
	}, nil
}

func (c *recCache) key(userID uuid.UUID) string {
	return c.prefix + userID.String()
}

func (c *recCache) Get(ctx context.Context, userID uuid.UUID) ([]recommender.ScoredRow, bool) {
	raw, err := c.rdb.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("Cache read failed", "error", err)
		}
		return nil, false
	}
	var rows []recommender.ScoredRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		c.log.Warn("Cache entry corrupt, dropping", "error", err)
		_ = c.rdb.Del(ctx, c.key(userID)).Err()
		return nil, false
	}
	return rows, true
}

func (c *recCache) Set(ctx context.Context, userID uuid.UUID, rows []recommender.ScoredRow) {
	raw, err := json.Marshal(rows)
	if err != nil {
		c.log.Warn("Cache encode failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, c.key(userID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Cache write failed", "error", err)
	}
}

func (c *recCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.rdb.Del(ctx, c.key(userID)).Err(); err != nil {
		c.log.Warn("Cache invalidation failed", "error", err)
	}
}

// InvalidateAll drops every cached ranking for this catalog. Called after a
// retrain: entries scored by the previous model must not outlive it.
func (c *recCache) InvalidateAll(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("Cache scan failed during full invalidation", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("Cache full invalidation failed", "error", err)
	}
}

func (c *recCache) Close() error {
	return c.rdb.Close()
}
