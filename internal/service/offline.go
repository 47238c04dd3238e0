package service

import (
	"time"

	"github.com/yuqie6/IdleForge/internal/eventbus"
	"github.com/yuqie6/IdleForge/internal/game"
)

// DefaultOfflineStep 离线补算默认步长
const DefaultOfflineStep = time.Second

// SimulationReport 批量补算汇总
type SimulationReport struct {
	ElapsedMs   int64          `json:"elapsedMs"`
	Steps       int            `json:"steps"`
	Capped      bool           `json:"capped"`
	Completions map[string]int `json:"completions,omitempty"`
	LevelUps    []LevelUp      `json:"levelUps,omitempty"`
	Unlocked    []string       `json:"unlocked,omitempty"`
	Failures    int            `json:"failures"`
}

// Simulate 把 [now-elapsed, now] 按固定步长回放；期间不发布逐 tick 事件，结束后发布一条汇总
func (s *GameService) Simulate(elapsed, step, limit time.Duration) SimulationReport {
	if step <= 0 {
		step = DefaultOfflineStep
	}
	rep := SimulationReport{}
	if limit > 0 && elapsed > limit {
		elapsed = limit
		rep.Capped = true
	}
	if elapsed <= 0 {
		return rep
	}

	realClock, realPub := s.clock, s.pub
	end := realClock.NowMilli()
	mc := game.NewManualClock(end - elapsed.Milliseconds())
	s.clock, s.pub = mc, nopPublisher{}
	s.ch.SetClock(mc)
	defer func() {
		s.clock, s.pub = realClock, realPub
		s.ch.SetClock(realClock)
		s.ch.LastTickAt = realClock.NowMilli()
	}()

	stepMs := step.Milliseconds()
	remaining := elapsed.Milliseconds()
	for remaining > 0 {
		d := min(stepMs, remaining)
		mc.Advance(d)
		tr := s.Tick(float64(d))
		remaining -= d
		rep.Steps++

		if tr.Action != nil {
			if tr.Action.Completed {
				if rep.Completions == nil {
					rep.Completions = make(map[string]int)
				}
				rep.Completions[tr.Action.ActionID]++
			}
			if tr.Action.Failed() {
				rep.Failures++
			}
		}
		rep.LevelUps = append(rep.LevelUps, tr.LevelUps...)
		rep.Unlocked = append(rep.Unlocked, tr.Unlocked...)
	}
	rep.ElapsedMs = elapsed.Milliseconds()

	realPub.Publish(eventbus.Event{
		Type:      eventbus.GameOfflineReplay,
		Timestamp: realClock.NowMilli(),
		Data: map[string]any{
			"elapsedMs":   rep.ElapsedMs,
			"steps":       rep.Steps,
			"capped":      rep.Capped,
			"completions": rep.Completions,
		},
	})
	return rep
}

// CatchUp 补算自上次 tick 以来离线的时间
func (s *GameService) CatchUp(step, limit time.Duration) SimulationReport {
	last := s.ch.LastTickAt
	if last <= 0 {
		s.ch.LastTickAt = s.clock.NowMilli()
		return SimulationReport{}
	}
	elapsed := time.Duration(s.clock.NowMilli()-last) * time.Millisecond
	return s.Simulate(elapsed, step, limit)
}
