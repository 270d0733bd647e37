package alert

import (
	"sync"
	"time"
)

// Cooldown 记录每类告警最近一次实际派发的时间
// 窗口对所有类型统一生效；被抑制的评估不会刷新计时
type Cooldown struct {
	mu     sync.RWMutex
	window time.Duration
	last   map[Kind]time.Time
}

// NewCooldown 创建冷却跟踪器
func NewCooldown(window time.Duration) *Cooldown {
	if window < 0 {
		window = 0
	}
	return &Cooldown{
		window: window,
		last:   make(map[Kind]time.Time),
	}
}

// MayFire 从未触发过，或距上次触发已满一个窗口时返回 true
func (c *Cooldown) MayFire(kind Kind, now time.Time) bool {
	c.mu.RLock()
	last, ok := c.last[kind]
	c.mu.RUnlock()
	if !ok {
		return true
	}
	return now.Sub(last) >= c.window
}

// MarkFired 由调用方在告警派发后记录触发时间
func (c *Cooldown) MarkFired(kind Kind, now time.Time) {
	c.mu.Lock()
	c.last[kind] = now
	c.mu.Unlock()
}

// LastFired 返回上次触发时间
func (c *Cooldown) LastFired(kind Kind) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	last, ok := c.last[kind]
	return last, ok
}

// Window 返回冷却窗口
func (c *Cooldown) Window() time.Duration {
	return c.window
}

// Snapshot 返回全部触发时间的副本
func (c *Cooldown) Snapshot() map[Kind]time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[Kind]time.Time, len(c.last))
	for kind, at := range c.last {
		out[kind] = at
	}
	return out
}
