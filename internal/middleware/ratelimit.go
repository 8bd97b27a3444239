package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/cinema/internal/utils"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按客户端（IP 哈希）限流
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

// NewRateLimiter perMinute 为每分钟允许的请求数，<=0 时不限流
func NewRateLimiter(perMinute int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		now:      time.Now,
	}
	if perMinute <= 0 {
		rl.rate = rate.Inf
		return rl
	}
	rl.rate = rate.Every(time.Minute / time.Duration(perMinute))
	rl.burst = max(perMinute/4, 1)
	return rl
}

// Allow key 是否还有配额
func (rl *RateLimiter) Allow(key string) bool {
	if rl.rate == rate.Inf {
		return true
	}

	rl.mu.Lock()
	entry, ok := rl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = rl.now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

// Sweep 删除 idle 时间内没有请求的客户端，返回删除数量
func (rl *RateLimiter) Sweep(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	cutoff := rl.now().Add(-idle)
	for key, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// Start 定时清理，ctx 取消后退出
func (rl *RateLimiter) Start(ctx context.Context, interval, idle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Sweep(idle)
			}
		}
	}()
}

// Middleware 超出配额返回 429
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(utils.HashIP(c.ClientIP())) {
			c.Header("Retry-After", "60")
			utils.TooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
