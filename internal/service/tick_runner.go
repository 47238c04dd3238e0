package service

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// MinTickInterval tick 间隔下限
const MinTickInterval = 16 * time.Millisecond

// ErrRunnerStopped 循环已退出
var ErrRunnerStopped = errors.New("tick runner stopped")

type request struct {
	fn   func(*GameService)
	done chan struct{}
}

// TickRunner 单 goroutine 固定频率驱动 GameService，外部请求也在该 goroutine 上执行
type TickRunner struct {
	game     *GameService
	interval time.Duration
	reqs     chan request
	stopped  chan struct{}
	onTick   func(TickReport)
}

// NewTickRunner 创建 tick 循环
func NewTickRunner(game *GameService, interval time.Duration) *TickRunner {
	if interval < MinTickInterval {
		interval = MinTickInterval
	}
	return &TickRunner{
		game:     game,
		interval: interval,
		reqs:     make(chan request),
		stopped:  make(chan struct{}),
	}
}

// OnTick 设置每个 tick 后的回调（在 tick goroutine 上执行），需在 Run 前调用
func (r *TickRunner) OnTick(fn func(TickReport)) {
	r.onTick = fn
}

// Interval 实际使用的间隔
func (r *TickRunner) Interval() time.Duration {
	return r.interval
}

// Run 阻塞运行直到 ctx 取消
func (r *TickRunner) Run(ctx context.Context) error {
	defer close(r.stopped)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	last := time.Now()
	slog.Info("tick 循环启动", "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("tick 循环退出")
			return nil
		case req := <-r.reqs:
			req.fn(r.game)
			close(req.done)
		case now := <-ticker.C:
			delta := float64(now.Sub(last).Microseconds()) / 1000
			last = now
			report := r.game.Tick(delta)
			if r.onTick != nil {
				r.onTick(report)
			}
		}
	}
}

// Do 在 tick goroutine 上执行 fn 并等待完成
func (r *TickRunner) Do(ctx context.Context, fn func(*GameService)) error {
	req := request{fn: fn, done: make(chan struct{})}
	select {
	case r.reqs <- req:
	case <-r.stopped:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
