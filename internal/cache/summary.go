// Package cache keeps the rendered catalogue summary in Redis so assistant
// replies do not re-read the projects table on every prompt.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"agency-portfolio-backend/internal/catalog"
)

const summaryKey = "portfolio:catalog:summary"

type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewSummaryCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl, log: log}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// GetSummary reports a miss on any Redis error; the caller rebuilds.
func (c *SummaryCache) GetSummary(ctx context.Context) (string, bool) {
	val, err := c.client.Get(ctx, summaryKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Msg("summary cache read failed")
		}
		return "", false
	}
	return val, true
}

func (c *SummaryCache) SetSummary(ctx context.Context, summary string) {
	if err := c.client.Set(ctx, summaryKey, summary, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("summary cache write failed")
	}
}

func (c *SummaryCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, summaryKey).Err(); err != nil {
		c.log.Warn().Err(err).Msg("summary cache invalidate failed")
	}
}

var _ catalog.SummaryCache = (*SummaryCache)(nil)
