// Package limiter 提供基于令牌桶的本地限流器.
package limiter

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter 接口定义了限流器的通用行为。
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error) // 检查是否允许请求通过。
}

// LocalLimiter 是进程内的全局令牌桶，忽略 key。
type LocalLimiter struct {
	limiter *rate.Limiter
}

// NewLocalLimiter 创建全局令牌桶。r 为每秒令牌数，b 为桶容量。
func NewLocalLimiter(r rate.Limit, b int) *LocalLimiter {
	return &LocalLimiter{
		limiter: rate.NewLimiter(r, b),
	}
}

// Allow 尝试获取一个令牌。
func (l *LocalLimiter) Allow(_ context.Context, _ string) (bool, error) {
	return l.limiter.Allow(), nil
}

// KeyedLimiter 为每个 key（通常是客户端 IP）维护独立的令牌桶。
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	b        int
	maxKeys  int
}

// NewKeyedLimiter 创建按 key 限流的限流器。key 数量超过 maxKeys 时清空重建，防止内存无限增长。
func NewKeyedLimiter(r rate.Limit, b, maxKeys int) *KeyedLimiter {
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	return &KeyedLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
		maxKeys:  maxKeys,
	}
}

// Allow 尝试从 key 对应的令牌桶获取一个令牌。
func (l *KeyedLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= l.maxKeys {
			clear(l.limiters)
		}
		lim = rate.NewLimiter(l.r, l.b)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	return lim.Allow(), nil
}
