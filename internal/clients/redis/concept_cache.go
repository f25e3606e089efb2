// Package redis holds the optional Redis-backed caches. The reasoning
// pipeline works without Redis; callers treat a nil cache as a miss on every
// read.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/praxis-backend/internal/platform/envutil"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

const conceptNamesKey = "praxis:concept_names"

// ConceptCache caches the full concept-name list the fuzzy resolver scans.
type ConceptCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewConceptCacheFromEnv returns nil with no error when REDIS_ADDR is unset;
// the cache is strictly optional.
func NewConceptCacheFromEnv(log *logger.Logger) (*ConceptCache, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := time.Duration(envutil.Int("CONCEPT_CACHE_TTL_SECONDS", 300)) * time.Second
	return &ConceptCache{
		log: log.With("service", "ConceptCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

// GetNames returns the cached name list, or (nil, false) on miss or when the
// cache is absent.
func (c *ConceptCache) GetNames(ctx context.Context) ([]string, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, conceptNamesKey).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("concept cache read failed", "error", err)
		}
		return nil, false
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		c.log.Warn("concept cache entry corrupt, dropping", "error", err)
		_ = c.rdb.Del(ctx, conceptNamesKey).Err()
		return nil, false
	}
	return names, true
}

// SetNames stores the name list. Failures are logged and swallowed; the
// cache never fails a request.
func (c *ConceptCache) SetNames(ctx context.Context, names []string) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, conceptNamesKey, raw, c.ttl).Err(); err != nil {
		c.log.Warn("concept cache write failed", "error", err)
	}
}

// Invalidate drops the cached list; called after concept acquisition or
// curriculum seeding changes the catalog.
func (c *ConceptCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, conceptNamesKey).Err(); err != nil {
		c.log.Warn("concept cache invalidate failed", "error", err)
	}
}

func (c *ConceptCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
