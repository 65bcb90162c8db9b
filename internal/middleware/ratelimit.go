package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/summarizer/internal/pkg/response"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitOptions configures the fixed-window limiter.
type RateLimitOptions struct {
	Max    int
	Window time.Duration
	Prefix string
	Logger *zap.Logger
	now    func() time.Time
}

// RateLimit returns a middleware that allows Max requests per client IP per window.
// Authenticated requests and Redis failures are let through.
func RateLimit(rdb *redis.Client, opts RateLimitOptions) gin.HandlerFunc {
	if opts.Max <= 0 {
		opts.Max = 50
	}
	if opts.Window <= 0 {
		opts.Window = time.Second
	}
	if opts.Prefix == "" {
		opts.Prefix = "summarizer:rate_limit"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	retryAfter := strconv.Itoa(int((opts.Window + time.Second - 1) / time.Second))

	return func(c *gin.Context) {
		if IsAuthenticated(c) {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		windowKey := opts.now().UnixNano() / int64(opts.Window)
		key := fmt.Sprintf("%s:%s:%d", opts.Prefix, ip, windowKey)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			opts.Logger.Warn("rate limit check failed", zap.Error(err))
			c.Next()
			return
		}

		if count == 1 {
			rdb.PExpire(ctx, key, opts.Window+time.Second)
		}

		if count > int64(opts.Max) {
			c.Header("Retry-After", retryAfter)
			response.TooManyRequests(c)
			return
		}

		c.Next()
	}
}
