package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"leadtrail/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// tokenBucketScript implements the Token Bucket algorithm.
// Input: ARGV[1]=rate, ARGV[2]=capacity, ARGV[3]=now, ARGV[4]=requested
// Output: { allowed, remaining, reset_after }
var tokenBucketScript = redis.NewScript(`
local tokens_key = KEYS[1]
local ts_key = KEYS[2]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local fill_time = capacity / rate
local ttl = math.ceil(fill_time * 2)

-- Load state
local last_tokens = tonumber(redis.call("get", tokens_key))
if last_tokens == nil then last_tokens = capacity end

local last_ts = tonumber(redis.call("get", ts_key))
if last_ts == nil then last_ts = now end

-- Refill
local delta = math.max(0, now - last_ts)
local filled_tokens = math.min(capacity, last_tokens + (delta * rate))
local allowed = 0
local remaining = filled_tokens
local reset_after = 0

if filled_tokens >= requested then
    allowed = 1
    filled_tokens = filled_tokens - requested
    remaining = filled_tokens
else
    allowed = 0
    remaining = filled_tokens
    reset_after = (requested - filled_tokens) / rate
end

if allowed == 1 then
    redis.call("set", tokens_key, filled_tokens, "EX", ttl)
    redis.call("set", ts_key, now, "EX", ttl)
end

return { allowed, remaining, reset_after }
`)

type localLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter is a per-client token bucket kept in Redis. When Redis is
// unreachable it fails open to an in-process bucket per client.
type Limiter struct {
	rdb   redis.Cmdable
	rps   int
	burst int

	mu    sync.Mutex
	local map[string]*localLimiter
}

func NewLimiter(rdb redis.Cmdable, requestsPerSecond, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	if burst < requestsPerSecond {
		burst = requestsPerSecond
	}
	return &Limiter{rdb: rdb, rps: requestsPerSecond, burst: burst, local: make(map[string]*localLimiter)}
}

// Sweep drops idle local buckets until ctx is done.
func (l *Limiter) Sweep(ctx context.Context, idle time.Duration) {
	ticker := time.NewTicker(idle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for key, ll := range l.local {
				if now.Sub(ll.lastSeen) > idle {
					delete(l.local, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

func (l *Limiter) localFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ll, ok := l.local[ip]; ok {
		ll.lastSeen = time.Now()
		return ll.limiter
	}
	ll := &localLimiter{limiter: rate.NewLimiter(rate.Limit(l.rps), l.burst), lastSeen: time.Now()}
	l.local[ip] = ll
	return ll.limiter
}

// Middleware enforces the limit per client IP.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", l.rps))

		if l.rdb == nil {
			l.allowLocal(c, clientIP)
			return
		}

		keyPrefix := "leadtrail:ratelimit:" + clientIP
		keys := []string{keyPrefix + ":tokens", keyPrefix + ":ts"}
		args := []any{
			float64(l.rps),
			float64(l.burst),
			float64(time.Now().UnixMicro()) / 1e6,
			1,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 100*time.Millisecond)
		defer cancel()

		result, err := tokenBucketScript.Run(ctx, l.rdb, keys, args...).Result()
		if err != nil {
			logger.Warn("Redis rate limit failed, switching to local fallback",
				zap.Error(err),
				zap.String("ip", clientIP))
			l.allowLocal(c, clientIP)
			return
		}

		resSlice, ok := result.([]any)
		if !ok || len(resSlice) != 3 {
			logger.Error("Invalid Redis rate limit response", zap.Any("response", result))
			c.Next()
			return
		}

		allowed := helperInt(resSlice[0]) == 1
		remaining := helperFloat(resSlice[1])
		resetAfter := helperFloat(resSlice[2])

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", int(remaining)))
		resetTime := time.Now().Add(time.Duration(resetAfter * float64(time.Second)))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", resetTime.Unix()))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too Many Requests"})
			return
		}
		c.Next()
	}
}

func (l *Limiter) allowLocal(c *gin.Context, clientIP string) {
	limiter := l.localFor(clientIP)
	if !limiter.Allow() {
		c.Header("X-RateLimit-Remaining", "0")
		c.Header("X-RateLimit-Reset", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too Many Requests"})
		return
	}
	c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", int(limiter.Tokens())))
	c.Next()
}

func helperInt(v any) int64 {
	if val, ok := v.(int64); ok {
		return val
	}
	if val, ok := v.(float64); ok {
		return int64(val)
	}
	return 0
}

func helperFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	default:
		return 0
	}
}
