package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/fixora/assetdash/internal/logger"
	"github.com/fixora/assetdash/internal/ports"
)

const keyPrefix = "assetdash:ratelimit:"

// RedisRateLimiter implements fixed-window rate limiting with Redis counters
type RedisRateLimiter struct {
	client *redis.Client
	logger logger.Logger
}

// Config holds rate limiter settings
type Config struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// New returns a Redis-backed limiter, or a limiter that allows everything when disabled
func New(ctx context.Context, cfg Config, log logger.Logger) (ports.RateLimiter, error) {
	if !cfg.Enabled {
		log.Info(ctx, "Rate limiting disabled", nil)
		return NoopRateLimiter{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info(ctx, "Rate limiting service initialized", map[string]interface{}{
		"addr": cfg.Addr,
	})
	return NewRedisRateLimiter(client, log), nil
}

// NewRedisRateLimiter wraps an existing Redis client
func NewRedisRateLimiter(client *redis.Client, log logger.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, logger: log}
}

// Allow increments the caller's counter for the current window and reports
// whether it is still within limit.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := keyPrefix + key

	pipeline := l.client.TxPipeline()
	incrCmd := pipeline.Incr(ctx, redisKey)
	ttlCmd := pipeline.PTTL(ctx, redisKey)
	if _, err := pipeline.Exec(ctx); err != nil {
		l.logger.Error(ctx, "Failed to increment rate limit counter", err, map[string]interface{}{
			"key": key,
		})
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// a counter without expiry would never reset
	if ttlCmd.Val() < 0 {
		if err := l.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	count := incrCmd.Val()
	allowed := count <= int64(limit)

	l.logger.Debug(ctx, "Rate limit check", map[string]interface{}{
		"key":     key,
		"current": count,
		"limit":   limit,
		"allowed": allowed,
	})
	return allowed, nil
}

// Close releases the Redis connection pool
func (l *RedisRateLimiter) Close() error {
	return l.client.Close()
}

// NoopRateLimiter allows every request
type NoopRateLimiter struct{}

// Allow always reports true
func (NoopRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return true, nil
}
