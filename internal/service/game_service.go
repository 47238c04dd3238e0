package service

import (
	"log/slog"
	"slices"

	"github.com/yuqie6/IdleForge/internal/eventbus"
	"github.com/yuqie6/IdleForge/internal/game"
)

const (
	// RestResumeRatio 休息循环完成时恢复原行动所需的 health/stamina 比例
	RestResumeRatio = 0.5
	// maxCommandsPerTick 单个 tick 内最多处理的命令数，超出部分丢弃
	maxCommandsPerTick = 64
)

// LevelUp 技能升级记录
type LevelUp struct {
	SkillID string `json:"skillId"`
	From    int    `json:"from"`
	To      int    `json:"to"`
}

// TickReport 一个 tick 的汇总
type TickReport struct {
	DeltaMs     float64            `json:"deltaMs"`
	Action      *game.UpdateResult `json:"action,omitempty"`
	LevelUps    []LevelUp          `json:"levelUps,omitempty"`
	Unlocked    []string           `json:"unlocked,omitempty"`
	RestStarted bool               `json:"restStarted,omitempty"`
	Resumed     string             `json:"resumed,omitempty"`
}

// Options GameService 可替换依赖
type Options struct {
	Clock     game.Clock
	RNG       game.RNG
	Publisher EventPublisher
}

// GameService 编排层：唯一修改角色状态的地方，非并发安全，由 TickRunner 串行驱动
type GameService struct {
	ch    *game.Character
	clock game.Clock
	pub   EventPublisher

	queue  []command
	report *TickReport
}

// NewGameService 创建编排服务
func NewGameService(ch *game.Character, opts Options) *GameService {
	if opts.Clock == nil {
		opts.Clock = game.SystemClock{}
	}
	if opts.Publisher == nil {
		opts.Publisher = nopPublisher{}
	}
	ch.SetClock(opts.Clock)
	if opts.RNG != nil {
		ch.SetRNG(opts.RNG)
	}
	return &GameService{
		ch:    ch,
		clock: opts.Clock,
		pub:   opts.Publisher,
	}
}

// Character 当前角色
func (s *GameService) Character() *game.Character {
	return s.ch
}

// ActiveAction 当前行动，没有则返回 nil
func (s *GameService) ActiveAction() *game.Action {
	return s.ch.ActiveAction()
}

// Tick 推进 deltaMs：资源衰减/回复 → 行动更新 → 扣除消耗 → 发放奖励 → 处理命令队列
func (s *GameService) Tick(deltaMs float64) TickReport {
	report := TickReport{DeltaMs: deltaMs}
	s.report = &report
	defer func() { s.report = nil }()

	if deltaMs > 0 {
		s.updateResources(deltaMs)
	}

	if active := s.ch.ActiveAction(); active != nil {
		if res := active.Update(deltaMs, s.ch.Snapshot()); res != nil {
			report.Action = res
			s.handleResult(active, res)
		}
	} else if s.ch.ActiveActionID != "" {
		s.ch.ActiveActionID = ""
	}

	s.drain()
	s.ch.LastTickAt = s.clock.NowMilli()
	return report
}

func (s *GameService) updateResources(deltaMs float64) {
	for _, id := range sortedIDs(s.ch.Stats) {
		s.ch.Stats[id].Update(deltaMs)
	}
	for _, id := range sortedIDs(s.ch.Currencies) {
		s.ch.Currencies[id].Update(deltaMs)
	}
}

func (s *GameService) handleResult(a *game.Action, res *game.UpdateResult) {
	if res.Failed() {
		s.ch.ActiveActionID = ""
		s.publish(eventbus.ActionFailed, map[string]any{
			"actionId":  a.ID,
			"message":   res.Message,
			"shortfall": res.InsufficientResources,
		})
		if rest := s.ch.RestAction(); rest != nil && rest.ID != a.ID {
			s.enqueue(command{kind: cmdStartRest, actionID: a.ID})
		}
		return
	}

	s.publish(eventbus.ActionProgress, map[string]any{
		"actionId": a.ID,
		"progress": res.Progress,
		"delta":    res.ProgressDelta,
	})
	s.applyCosts(a.ID, res.Costs)
	s.applyRewards(a.ID, res.Rewards)

	if res.Completed {
		s.publish(eventbus.ActionCompleted, map[string]any{
			"actionId":        a.ID,
			"completionCount": res.CompletionCount,
			"message":         res.Message,
			"randomRewards":   res.RandomRewards,
		})
		if a.IsUpgrade {
			s.enqueue(command{kind: cmdApplyUpgrade, actionID: a.ID})
		}
		if a.IsRestAction && s.ch.PendingResumeID != "" {
			if res.Stopped || game.VitalsAtLeast(s.ch.Snapshot(), RestResumeRatio) {
				s.enqueue(command{kind: cmdResume, actionID: s.ch.PendingResumeID})
			}
		}
		s.enqueue(command{kind: cmdCheckUnlocks})
	}

	if res.Stopped && s.ch.ActiveActionID == a.ID {
		s.ch.ActiveActionID = ""
		s.publish(eventbus.ActionStopped, map[string]any{"actionId": a.ID, "completed": res.Completed})
	}
}

// applyCosts 扣除消耗，最多扣到 0
func (s *GameService) applyCosts(actionID string, costs game.Costs) {
	if costs.IsEmpty() {
		return
	}
	for _, id := range sortedIDs(costs.Stats) {
		subtractClamped(s.ch.Stats[id], costs.Stats[id])
	}
	for _, id := range sortedIDs(costs.Currencies) {
		subtractClamped(s.ch.Currencies[id], costs.Currencies[id])
	}
	s.publish(eventbus.ResourceCost, map[string]any{"actionId": actionID, "costs": costs})
}

func subtractClamped(r *game.Resource, amount float64) {
	if r == nil || amount <= 0 {
		return
	}
	r.Subtract(min(amount, r.Current))
}

// applyRewards 发放奖励：资源走 Add（受上限约束），技能经验走 AddXP
func (s *GameService) applyRewards(actionID string, rewards game.Rewards) {
	if rewards.IsEmpty() {
		return
	}
	for _, id := range sortedIDs(rewards.Stats) {
		if r := s.ch.Stats[id]; r != nil {
			r.Add(rewards.Stats[id])
		}
	}
	for _, id := range sortedIDs(rewards.Currencies) {
		if r := s.ch.Currencies[id]; r != nil {
			r.Add(rewards.Currencies[id])
		}
	}
	if len(rewards.Stats) > 0 || len(rewards.Currencies) > 0 {
		s.publish(eventbus.ResourceReward, map[string]any{"actionId": actionID, "rewards": rewards})
	}

	for _, id := range sortedIDs(rewards.SkillXP) {
		sk := s.ch.Skills[id]
		if sk == nil {
			slog.Debug("奖励指向不存在的技能", "action", actionID, "skill", id)
			continue
		}
		from := sk.CurrentLevel
		sk.AddXP(rewards.SkillXP[id])
		s.publish(eventbus.SkillExpGained, map[string]any{
			"skillId": id,
			"amount":  rewards.SkillXP[id],
			"xp":      sk.XP,
			"level":   sk.CurrentLevel,
		})
		if sk.CurrentLevel > from {
			s.publish(eventbus.SkillLeveledUp, map[string]any{"skillId": id, "from": from, "to": sk.CurrentLevel})
			if s.report != nil {
				s.report.LevelUps = append(s.report.LevelUps, LevelUp{SkillID: id, From: from, To: sk.CurrentLevel})
			}
			s.enqueue(command{kind: cmdApplySkillBonuses, skillID: id, from: from, to: sk.CurrentLevel})
		}
	}
}

// StartAction 玩家主动开始行动：清除待恢复、停止当前行动、升级类支付购买费用
func (s *GameService) StartAction(id string) bool {
	if !s.startAction(id, true) {
		return false
	}
	s.ch.PendingResumeID = ""
	return true
}

// startAction pay 为 false 时不收升级购买费用（休息后恢复已购买过的升级）
func (s *GameService) startAction(id string, pay bool) bool {
	a := s.ch.Action(id)
	if a == nil || a.IsActive || !a.CanStart() {
		return false
	}
	pay = pay && a.IsUpgrade
	if pay && !s.canAfford(a.PurchaseCost) {
		slog.Info("升级费用不足", "action", id)
		return false
	}

	if cur := s.ch.ActiveAction(); cur != nil {
		cur.Stop(false)
		s.publish(eventbus.ActionStopped, map[string]any{"actionId": cur.ID, "completed": false})
	}
	s.ch.ActiveActionID = ""

	if pay {
		s.payCosts(a.PurchaseCost)
	}
	if !a.Start() {
		return false
	}
	s.ch.ActiveActionID = a.ID
	s.publish(eventbus.ActionStarted, map[string]any{"actionId": a.ID, "message": a.StartMessage()})
	return true
}

// StopAction 停止当前行动
func (s *GameService) StopAction() bool {
	s.ch.PendingResumeID = ""
	a := s.ch.ActiveAction()
	if a == nil {
		return false
	}
	a.Stop(false)
	s.ch.ActiveActionID = ""
	s.publish(eventbus.ActionStopped, map[string]any{"actionId": a.ID, "completed": false})
	return true
}

func (s *GameService) canAfford(c game.Costs) bool {
	for id, amount := range c.Stats {
		if s.ch.StatCurrent(id) < amount {
			return false
		}
	}
	for id, amount := range c.Currencies {
		if s.ch.CurrencyCurrent(id) < amount {
			return false
		}
	}
	return true
}

func (s *GameService) payCosts(c game.Costs) {
	for id, amount := range c.Stats {
		subtractClamped(s.ch.Stats[id], amount)
	}
	for id, amount := range c.Currencies {
		subtractClamped(s.ch.Currencies[id], amount)
	}
}

// CheckUnlocks 解锁条件已满足的行动，返回新解锁的 ID
func (s *GameService) CheckUnlocks() []string {
	snap := s.ch.Snapshot()
	var unlocked []string
	for _, id := range sortedIDs(s.ch.Actions) {
		a := s.ch.Actions[id]
		if a.Unlocked || !a.MeetsRequirements(snap) {
			continue
		}
		if a.Unlock() {
			unlocked = append(unlocked, id)
			s.publish(eventbus.ActionUnlocked, map[string]any{"actionId": id, "name": a.Name})
		}
	}
	if s.report != nil {
		s.report.Unlocked = append(s.report.Unlocked, unlocked...)
	}
	return unlocked
}

// Upgrades 可购买或已购买的升级
func (s *GameService) Upgrades() []*game.Action {
	var out []*game.Action
	for _, id := range sortedIDs(s.ch.Actions) {
		if a := s.ch.Actions[id]; a.IsUpgrade {
			out = append(out, a)
		}
	}
	return out
}

// PurchaseUpgrade 开始升级类行动
func (s *GameService) PurchaseUpgrade(id string) bool {
	a := s.ch.Action(id)
	if a == nil || !a.IsUpgrade {
		return false
	}
	return s.StartAction(id)
}

func (s *GameService) publish(typ string, data map[string]any) {
	s.pub.Publish(eventbus.Event{Type: typ, Timestamp: s.clock.NowMilli(), Data: data})
}

func sortedIDs[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
