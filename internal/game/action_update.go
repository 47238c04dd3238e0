package game

import (
	"fmt"
	"sort"
	"strconv"
)

// RestCompleteRatio 休息行动结束所需的 health/stamina 比例
const RestCompleteRatio = 0.95

// Shortfall 资源不足明细
type Shortfall struct {
	Type     Kind    `json:"type"`
	ID       string  `json:"id"`
	Required float64 `json:"required"`
	Current  float64 `json:"current"`
}

// UpdateResult 一次 Update 的产出，由编排层负责落地
type UpdateResult struct {
	ActionID              string      `json:"actionId"`
	ActionName            string      `json:"actionName"`
	Progress              float64     `json:"progress"`
	ProgressDelta         float64     `json:"progressDelta"`
	Completed             bool        `json:"completed"`
	Stopped               bool        `json:"stopped"` // 本次更新后行动已停止
	CompletionCount       int         `json:"completionCount"`
	Costs                 Costs       `json:"costs"`
	Rewards               Rewards     `json:"rewards"`
	RandomRewards         []string    `json:"randomRewards,omitempty"`
	ThresholdsCrossed     []string    `json:"thresholdsCrossed,omitempty"`
	InsufficientResources []Shortfall `json:"insufficientResources,omitempty"`
	Message               string      `json:"message,omitempty"`
}

// Failed 是否因资源不足被强制停止
func (r *UpdateResult) Failed() bool {
	return r != nil && len(r.InsufficientResources) > 0
}

// Update 推进 deltaMs 毫秒
// 激活后的第一次调用只记录时间不推进，返回 nil
func (a *Action) Update(deltaMs float64, s Snapshot) *UpdateResult {
	if !a.IsActive {
		return nil
	}
	now := a.now()
	if !a.primed {
		a.primed = true
		a.lastUpdateTime = now
		return nil
	}
	a.lastUpdateTime = now
	if deltaMs <= 0 {
		return nil
	}

	res := &UpdateResult{
		ActionID:   a.ID,
		ActionName: a.Name,
	}

	if short := a.CheckCosts(deltaMs, s); len(short) > 0 {
		a.Stop(false)
		res.Progress = a.CurrentProgress
		res.CompletionCount = a.CompletionCount
		res.Stopped = true
		res.InsufficientResources = short
		res.Message = a.failMessage(short)
		return res
	}

	res.Costs = a.costsFor(deltaMs)
	old := a.CurrentProgress
	next := old + deltaMs/a.ModifiedDuration()*100
	a.TotalTimeSpent += deltaMs

	if next < 100 {
		a.CurrentProgress = next
		res.Progress = next
		res.ProgressDelta = next - old
		res.CompletionCount = a.CompletionCount
		res.Rewards, res.ThresholdsCrossed = a.thresholdRewards(old, next)
		if len(res.ThresholdsCrossed) > 0 {
			res.Message = fmt.Sprintf("%s reached %s%%", a.Name, res.ThresholdsCrossed[len(res.ThresholdsCrossed)-1])
		}
		return res
	}

	// 完成：完成奖励取代本 tick 的进度阈值奖励，越过的阈值仍记录在结果里
	_, crossed := a.thresholdRewards(old, 100)
	rewards := a.CalculateRewards()
	bonus, messages := a.RollRandomRewards()
	rewards.Merge(bonus)

	a.CurrentProgress = 0
	a.CompletionCount++
	if a.CooldownMs > 0 {
		a.CooldownEndTime = now + a.CooldownMs
	}

	res.Completed = true
	res.Progress = 0
	res.ProgressDelta = 100 - old
	res.CompletionCount = a.CompletionCount
	res.Rewards = rewards
	res.ThresholdsCrossed = crossed
	res.RandomRewards = messages
	res.Message = a.completeMessage()

	switch {
	case a.IsRestAction:
		// 休息一直循环到角色基本回满，不看 AutoRestart
		if VitalsAtLeast(s, RestCompleteRatio) {
			a.Stop(true)
			res.Stopped = true
		}
	case a.AutoRestart && a.CanStart():
	default:
		a.Stop(true)
		res.Stopped = true
	}
	return res
}

// CheckCosts 本 tick 所需消耗是否足够，返回不足项
func (a *Action) CheckCosts(deltaMs float64, s Snapshot) []Shortfall {
	if !a.HasCosts() {
		return nil
	}
	sec := deltaMs / 1000
	var out []Shortfall
	for _, id := range sortedKeys(a.StatCosts) {
		rate := a.StatCosts[id]
		if rate <= 0 {
			continue
		}
		required := rate * sec
		current := 0.0
		if s != nil {
			current = s.StatCurrent(id)
		}
		if current < required {
			out = append(out, Shortfall{Type: KindStat, ID: id, Required: required, Current: current})
		}
	}
	for _, id := range sortedKeys(a.CurrencyCosts) {
		rate := a.CurrencyCosts[id]
		if rate <= 0 {
			continue
		}
		required := rate * sec
		current := 0.0
		if s != nil {
			current = s.CurrencyCurrent(id)
		}
		if current < required {
			out = append(out, Shortfall{Type: KindCurrency, ID: id, Required: required, Current: current})
		}
	}
	return out
}

func (a *Action) costsFor(deltaMs float64) Costs {
	sec := deltaMs / 1000
	var c Costs
	for id, rate := range a.StatCosts {
		if rate > 0 {
			c.Stats = mergeAmounts(c.Stats, map[string]float64{id: rate * sec})
		}
	}
	for id, rate := range a.CurrencyCosts {
		if rate > 0 {
			c.Currencies = mergeAmounts(c.Currencies, map[string]float64{id: rate * sec})
		}
	}
	return c
}

type threshold struct {
	key   string
	value float64
}

// thresholdRewards 收集 (old, next] 区间内的阈值奖励
func (a *Action) thresholdRewards(old, next float64) (Rewards, []string) {
	if len(a.ProgressRewards) == 0 {
		return Rewards{}, nil
	}
	list := make([]threshold, 0, len(a.ProgressRewards))
	for key := range a.ProgressRewards {
		v, err := strconv.ParseFloat(key, 64)
		if err != nil {
			continue
		}
		list = append(list, threshold{key: key, value: v})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].value < list[j].value })

	var out Rewards
	var crossed []string
	for _, t := range list {
		if t.value > old && t.value <= next {
			out.Merge(a.ProgressRewards[t.key])
			crossed = append(crossed, t.key)
		}
	}
	return out, crossed
}

// CalculateRewards 完成奖励（已套用修正），不消耗随机数
func (a *Action) CalculateRewards() Rewards {
	a.purgeModifiers()

	var out Rewards
	for id, base := range a.StatRewards {
		out.Stats = mergeAmounts(out.Stats, map[string]float64{id: a.applyRewardModifiers(base, id, TargetAllStats)})
	}
	for id, base := range a.CurrencyRewards {
		out.Currencies = mergeAmounts(out.Currencies, map[string]float64{id: a.applyRewardModifiers(base, id, TargetAllCurrencies)})
	}
	for id, base := range a.SkillExperience {
		out.SkillXP = mergeAmounts(out.SkillXP, map[string]float64{id: a.applyRewardModifiers(base, id, TargetAllSkills)})
	}
	return out
}

// applyRewardModifiers 先加匹配的加法修正，再乘匹配的乘法修正
func (a *Action) applyRewardModifiers(base float64, id, wildcard string) float64 {
	flat := 0.0
	mult := 1.0
	for _, m := range a.modifiers {
		if m.Type != ModReward {
			continue
		}
		if m.Target != "" && m.Target != id && m.Target != wildcard {
			continue
		}
		if m.IsMultiplier {
			mult *= m.Value
		} else {
			flat += m.Value
		}
	}
	return (base + flat) * mult
}

// RollRandomRewards 每项独立掷骰，命中条件 roll(0-100) <= chance
func (a *Action) RollRandomRewards() (Rewards, []string) {
	var out Rewards
	var messages []string
	for _, rr := range a.RandomRewards {
		if rr.Chance <= 0 {
			continue
		}
		if a.random()*100 <= rr.Chance {
			out.Merge(rr.Rewards)
			if rr.Message != "" {
				messages = append(messages, rr.Message)
			}
		}
	}
	return out, messages
}

func (a *Action) completeMessage() string {
	if a.Messages.Complete != "" {
		return a.Messages.Complete
	}
	return fmt.Sprintf("Completed %s", a.Name)
}

func (a *Action) failMessage(short []Shortfall) string {
	if a.Messages.Fail != "" {
		return a.Messages.Fail
	}
	if len(short) == 0 {
		return fmt.Sprintf("Stopped %s", a.Name)
	}
	return fmt.Sprintf("Not enough %s to continue %s", short[0].ID, a.Name)
}

// StartMessage 开始提示
func (a *Action) StartMessage() string {
	if a.Messages.Start != "" {
		return a.Messages.Start
	}
	return fmt.Sprintf("Started %s", a.Name)
}
