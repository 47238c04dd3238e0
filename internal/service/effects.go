package service

import (
	"fmt"
	"log/slog"

	"github.com/yuqie6/IdleForge/internal/eventbus"
	"github.com/yuqie6/IdleForge/internal/game"
)

// 技能加成类型
const (
	BonusGainRate         = "gain_rate"
	BonusGainMultiplier   = "gain_multiplier"
	BonusActionSpeed      = "action_speed"
	BonusActionReward     = "action_reward"
	BonusActionRewardFlat = "action_reward_flat"
)

// 升级效果
const (
	UpgradeTargetStat     = "stat"
	UpgradeTargetCurrency = "currency"
	UpgradeTargetAction   = "action"

	UpgradeTypeMax            = "max"
	UpgradeTypeGainRate       = "gain_rate"
	UpgradeTypeGainMultiplier = "gain_multiplier"
	UpgradeTypeDuration       = "duration"
	UpgradeTypeReward         = "reward"
)

// ApplyAllSkillBonuses 载入后重放所有已达成的技能加成；修正按固定 ID 覆盖，可重复调用
func (s *GameService) ApplyAllSkillBonuses() {
	for _, id := range sortedIDs(s.ch.Skills) {
		s.applySkillBonuses(s.ch.Skills[id], -1, s.ch.Skills[id].CurrentLevel)
	}
}

// applySkillBonuses 应用等级在 (from, to] 内的加成
func (s *GameService) applySkillBonuses(sk *game.Skill, from, to int) {
	for i, b := range sk.Bonuses {
		if b.Level <= from || b.Level > to {
			continue
		}
		id := fmt.Sprintf("skill:%s:%d:%d", sk.ID, b.Level, i)
		if !s.applyBonus(sk, id, b) {
			slog.Warn("技能加成无法应用", "skill", sk.ID, "type", b.Type, "target", b.Target)
		}
	}
}

func (s *GameService) applyBonus(sk *game.Skill, id string, b game.Bonus) bool {
	switch b.Type {
	case BonusGainRate, BonusGainMultiplier:
		op := game.OpAdd
		if b.Type == BonusGainMultiplier {
			op = game.OpMultiply
		}
		targets := s.resourceTargets(b.Target)
		for _, r := range targets {
			r.AddModifier(game.Modifier{ID: id, Operation: op, Value: b.Value})
		}
		return len(targets) > 0

	case BonusActionSpeed, BonusActionReward, BonusActionRewardFlat:
		m := game.ActionModifier{ID: id, Value: b.Value, Source: "skill:" + sk.ID, IsMultiplier: true}
		actions := s.skillActions(sk.ID, b.Target)
		switch b.Type {
		case BonusActionSpeed:
			m.Type = game.ModDuration
		case BonusActionReward:
			m.Type = game.ModReward
		default:
			m.Type = game.ModReward
			m.IsMultiplier = false
		}
		if b.Type != BonusActionSpeed && !s.isActionTarget(b.Target) {
			m.Target = b.Target
		}
		for _, a := range actions {
			a.AddModifier(m, 0)
		}
		return len(actions) > 0
	}
	return false
}

// resourceTargets 目标可以是资源 ID 或 all_stats / all_currencies
func (s *GameService) resourceTargets(target string) []*game.Resource {
	switch target {
	case game.TargetAllStats:
		return resources(s.ch.Stats)
	case game.TargetAllCurrencies:
		return resources(s.ch.Currencies)
	}
	if r := s.ch.Stats[target]; r != nil {
		return []*game.Resource{r}
	}
	if r := s.ch.Currencies[target]; r != nil {
		return []*game.Resource{r}
	}
	return nil
}

func resources(m map[string]*game.Resource) []*game.Resource {
	out := make([]*game.Resource, 0, len(m))
	for _, id := range sortedIDs(m) {
		out = append(out, m[id])
	}
	return out
}

func (s *GameService) isActionTarget(target string) bool {
	if target == "" {
		return false
	}
	if s.ch.Action(target) != nil {
		return true
	}
	for _, a := range s.ch.Actions {
		if a.Category == target {
			return true
		}
	}
	return false
}

// skillActions 加成作用的行动：目标为行动 ID 或分类时按目标匹配，否则取奖励该技能经验的行动
func (s *GameService) skillActions(skillID, target string) []*game.Action {
	byTarget := s.isActionTarget(target)
	var out []*game.Action
	for _, id := range sortedIDs(s.ch.Actions) {
		a := s.ch.Actions[id]
		if byTarget {
			if a.ID == target || a.Category == target {
				out = append(out, a)
			}
			continue
		}
		if _, ok := a.SkillExperience[skillID]; ok {
			out = append(out, a)
		}
	}
	return out
}

// ApplyUpgrade 应用升级效果；配置缺失时只记录警告
func (s *GameService) ApplyUpgrade(actionID string) bool {
	a := s.ch.Action(actionID)
	if a == nil || !a.IsUpgrade {
		return false
	}
	u := a.Upgrade
	if !u.Valid() {
		slog.Warn("升级缺少效果配置", "upgrade", actionID)
		return false
	}
	id := fmt.Sprintf("upgrade:%s:%d", a.ID, a.CompletionCount)

	switch u.Target {
	case UpgradeTargetStat, UpgradeTargetCurrency:
		kind := game.KindStat
		if u.Target == UpgradeTargetCurrency {
			kind = game.KindCurrency
		}
		r := s.ch.Resource(kind, u.TargetID)
		if r == nil {
			slog.Warn("升级目标资源不存在", "upgrade", actionID, "target", u.TargetID)
			return false
		}
		switch u.Type {
		case UpgradeTypeMax:
			r.SetMax(r.Max+u.Value, false)
		case UpgradeTypeGainRate:
			r.AddModifier(game.Modifier{ID: id, Operation: game.OpAdd, Value: u.Value})
		case UpgradeTypeGainMultiplier:
			r.AddModifier(game.Modifier{ID: id, Operation: game.OpMultiply, Value: u.Value})
		default:
			slog.Warn("未知升级类型", "upgrade", actionID, "type", u.Type)
			return false
		}

	case UpgradeTargetAction:
		target := s.ch.Action(u.TargetID)
		if target == nil {
			slog.Warn("升级目标行动不存在", "upgrade", actionID, "target", u.TargetID)
			return false
		}
		m := game.ActionModifier{ID: id, Value: u.Value, Source: "upgrade", IsMultiplier: true}
		switch u.Type {
		case UpgradeTypeDuration:
			m.Type = game.ModDuration
		case UpgradeTypeReward:
			m.Type = game.ModReward
		default:
			slog.Warn("未知升级类型", "upgrade", actionID, "type", u.Type)
			return false
		}
		target.AddModifier(m, 0)

	default:
		slog.Warn("未知升级目标", "upgrade", actionID, "target", u.Target)
		return false
	}

	s.publish(eventbus.ResourceUpgrade, map[string]any{
		"upgradeId": a.ID,
		"target":    u.Target,
		"type":      u.Type,
		"targetId":  u.TargetID,
		"value":     u.Value,
	})
	return true
}
