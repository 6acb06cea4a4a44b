package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/salvioris-journal/pkg/clientip"
	"github.com/AnshRaj112/salvioris-journal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	// RateLimitWindow is 120 seconds
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 300
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked
	BlockedIPDuration = time.Hour
)

// RedisRateLimiter is a fixed-window per-IP counter shared by every
// instance of the service. An IP that exceeds the window budget is blocked
// for BlockDuration.
type RedisRateLimiter struct {
	client        *redis.Client
	log           logger.Logger
	Window        time.Duration
	MaxRequests   int
	BlockDuration time.Duration
}

// NewRedisRateLimiter uses the package defaults.
func NewRedisRateLimiter(client *redis.Client, log logger.Logger) *RedisRateLimiter {
	if log == nil {
		log = logger.NewNop()
	}
	return &RedisRateLimiter{
		client:        client,
		log:           log,
		Window:        RateLimitWindow,
		MaxRequests:   RateLimitMaxRequests,
		BlockDuration: BlockedIPDuration,
	}
}

// Middleware fails open when Redis is unavailable.
func (l *RedisRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := clientip.RealClientIP(r)

		blocked, err := l.IsBlocked(ctx, ip)
		if err == nil && blocked {
			http.Error(w, "Your IP has been temporarily blocked due to excessive requests. Please try again later.", http.StatusTooManyRequests)
			return
		}

		count, err := l.hit(ctx, ip)
		if err != nil {
			l.log.Warn(ctx, "rate limit unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(l.MaxRequests) {
			if err := l.client.Set(ctx, BlockedIPKeyPrefix+ip, "1", l.BlockDuration).Err(); err != nil {
				l.log.Warn(ctx, "could not block ip", "error", err)
			}
			l.log.Info(ctx, "ip blocked", "ip", ip, "count", count)
			w.Header().Set("Retry-After", strconv.Itoa(int(l.BlockDuration.Seconds())))
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.MaxRequests))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(l.MaxRequests)-count, 10))
		next.ServeHTTP(w, r)
	})
}

// hit counts one request in the current window. The first hit of a window
// starts its expiry.
func (l *RedisRateLimiter) hit(ctx context.Context, ip string) (int64, error) {
	key := RateLimitKeyPrefix + ip

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.Window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// Unblock removes an IP from the blocked list.
func (l *RedisRateLimiter) Unblock(ctx context.Context, ip string) error {
	return l.client.Del(ctx, BlockedIPKeyPrefix+ip).Err()
}

// IsBlocked checks if an IP is currently blocked
func (l *RedisRateLimiter) IsBlocked(ctx context.Context, ip string) (bool, error) {
	n, err := l.client.Exists(ctx, BlockedIPKeyPrefix+ip).Result()
	return n > 0, err
}
