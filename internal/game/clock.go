package game

import (
	"math/rand"
	"sync"
	"time"
)

// Clock 时间来源（可替换，便于测试）
type Clock interface {
	NowMilli() int64
}

// SystemClock 系统时钟
type SystemClock struct{}

// NowMilli 返回当前 Unix 毫秒
func (SystemClock) NowMilli() int64 {
	return time.Now().UnixMilli()
}

// ManualClock 手动推进的时钟，模拟和离线补算使用
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

// NewManualClock 创建手动时钟
func NewManualClock(startMilli int64) *ManualClock {
	return &ManualClock{now: startMilli}
}

func (c *ManualClock) NowMilli() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance 前进指定毫秒
func (c *ManualClock) Advance(ms int64) {
	c.mu.Lock()
	c.now += ms
	c.mu.Unlock()
}

// Set 设置为指定时间
func (c *ManualClock) Set(ms int64) {
	c.mu.Lock()
	c.now = ms
	c.mu.Unlock()
}

// RNG 随机源，只需要 [0,1) 浮点
type RNG interface {
	Float64() float64
}

// NewRNG 按种子创建随机源；seed 为 0 时使用当前时间
func NewRNG(seed int64) RNG {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
