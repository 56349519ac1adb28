package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	// MaxRequests allowed per Window
	MaxRequests int
	Window      time.Duration
	KeyPrefix   string
}

// RegistrationRateLimitConfig limits confirmation email requests
func RegistrationRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 5,
		Window:      1 * time.Minute,
		KeyPrefix:   "rl:register",
	}
}

// SignInRateLimitConfig protects password sign in from brute force
func SignInRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 10,
		Window:      1 * time.Minute,
		KeyPrefix:   "rl:signin",
	}
}

// RequestLimiter builds rate limiting middleware
type RequestLimiter interface {
	Limit(cfg RateLimitConfig) gin.HandlerFunc
}

// RateLimiter counts requests per IP and route in Redis
type RateLimiter struct {
	redisClient redis.UniversalClient
	logger      *zap.Logger
}

func NewRateLimiter(redisClient redis.UniversalClient, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{redisClient: redisClient, logger: logger}
}

// Limit returns middleware keyed by client IP and route pattern.
// Redis errors let the request through.
func (rl *RateLimiter) Limit(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s:%s", cfg.KeyPrefix, c.ClientIP(), routeOf(c))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := rl.redisClient.Incr(ctx, key).Result()
		if err != nil {
			rl.logger.Warn("Rate limiter redis error, allowing request", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := rl.redisClient.Expire(ctx, key, cfg.Window).Err(); err != nil {
				rl.logger.Warn("Failed to set rate limit TTL", zap.String("key", key), zap.Error(err))
			}
		}

		ttl, _ := rl.redisClient.TTL(ctx, key).Result()
		retryAfter := int(ttl.Seconds())
		if retryAfter < 0 {
			retryAfter = int(cfg.Window.Seconds())
		}

		remaining := cfg.MaxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}
		setRateHeaders(c, cfg.MaxRequests, remaining, retryAfter)

		if int(count) > cfg.MaxRequests {
			rl.logger.Warn("Rate limit exceeded",
				zap.String("ip", c.ClientIP()), zap.String("path", routeOf(c)), zap.Int64("count", count))
			rejectRateLimited(c, retryAfter)
			return
		}
		c.Next()
	}
}

// MemoryRateLimiter is a token bucket per IP and route kept in process
// memory. Used when Redis is not configured.
type MemoryRateLimiter struct {
	logger *zap.Logger
}

func NewMemoryRateLimiter(logger *zap.Logger) *MemoryRateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryRateLimiter{logger: logger}
}

// Limit returns middleware allowing cfg.MaxRequests per cfg.Window with a
// burst of cfg.MaxRequests. Idle buckets are dropped after three windows.
func (ml *MemoryRateLimiter) Limit(cfg RateLimitConfig) gin.HandlerFunc {
	idle := 3 * cfg.Window
	if idle < time.Minute {
		idle = time.Minute
	}
	buckets := expirable.NewLRU[string, *rate.Limiter](10000, nil, idle)
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 1
	}
	every := rate.Every(cfg.Window / time.Duration(cfg.MaxRequests))

	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + routeOf(c)
		limiter, ok := buckets.Get(key)
		if !ok {
			limiter = rate.NewLimiter(every, cfg.MaxRequests)
			buckets.Add(key, limiter)
		}

		if !limiter.Allow() {
			r := limiter.Reserve()
			retryAfter := int(r.Delay().Seconds()) + 1
			r.Cancel()
			setRateHeaders(c, cfg.MaxRequests, 0, retryAfter)
			ml.logger.Warn("Rate limit exceeded", zap.String("ip", c.ClientIP()), zap.String("path", routeOf(c)))
			rejectRateLimited(c, retryAfter)
			return
		}
		setRateHeaders(c, cfg.MaxRequests, int(limiter.Tokens()), int(cfg.Window.Seconds()))
		c.Next()
	}
}

func routeOf(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return c.Request.URL.Path
}

func setRateHeaders(c *gin.Context, limit, remaining, reset int) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Header("X-RateLimit-Reset", strconv.Itoa(reset))
}

func rejectRateLimited(c *gin.Context, retryAfter int) {
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":       "Too many requests. Please try again later.",
		"error_type":  "rate_limited",
		"retry_after": retryAfter,
	})
}
