package content

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
)

// Validate 结构性错误返回 error；升级与引用类问题只记录警告
func (d *Definitions) Validate() error {
	var errs []error
	stats := make(map[string]bool)
	currencies := make(map[string]bool)
	skills := make(map[string]bool)
	actions := make(map[string]bool)

	for _, r := range d.Stats {
		errs = append(errs, checkResource("stat", r, stats)...)
	}
	for _, r := range d.Currencies {
		errs = append(errs, checkResource("currency", r, currencies)...)
	}
	for _, s := range d.Skills {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("skill 缺少 id"))
			continue
		}
		if skills[s.ID] {
			errs = append(errs, fmt.Errorf("skill %s 重复", s.ID))
		}
		skills[s.ID] = true
	}

	rest := 0
	check := func(kind string, a ActionDef) {
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("%s 缺少 id", kind))
			return
		}
		if actions[a.ID] {
			errs = append(errs, fmt.Errorf("%s %s 重复", kind, a.ID))
		}
		actions[a.ID] = true
		if a.DurationMs < 0 || (kind == "action" && a.DurationMs == 0) {
			errs = append(errs, fmt.Errorf("%s %s 的 duration_ms 必须为正数", kind, a.ID))
		}
		if a.MaxCompletions < 0 {
			errs = append(errs, fmt.Errorf("%s %s 的 max_completions 不能为负", kind, a.ID))
		}
		for key := range a.ProgressRewards {
			v, err := strconv.ParseFloat(key, 64)
			if err != nil || v <= 0 || v >= 100 {
				errs = append(errs, fmt.Errorf("%s %s 的进度阈值 %q 必须在 (0,100) 内", kind, a.ID, key))
			}
		}
		warnUnknown(a.ID, "stat", a.StatCosts, stats)
		warnUnknown(a.ID, "stat", a.StatRewards, stats)
		warnUnknown(a.ID, "currency", a.CurrencyCosts, currencies)
		warnUnknown(a.ID, "currency", a.CurrencyRewards, currencies)
		warnUnknown(a.ID, "skill", a.SkillExperience, skills)
	}
	for _, a := range d.Actions {
		check("action", a)
		if a.Rest {
			rest++
		}
	}
	for _, u := range d.Upgrades {
		check("upgrade", u.ActionDef)
		if !u.Effect.Valid() {
			slog.Warn("升级缺少效果配置，购买后不会生效", "upgrade", u.ID)
		}
	}
	if len(d.Actions) > 0 && rest == 0 {
		errs = append(errs, errors.New("至少需要一个 rest: true 的休息行动"))
	}
	if rest > 1 {
		slog.Warn("存在多个休息行动，只使用第一个", "count", rest)
	}

	seenClass := make(map[string]bool)
	for _, c := range d.Classes {
		if c.ID == "" || seenClass[c.ID] {
			errs = append(errs, fmt.Errorf("class %q 缺少 id 或重复", c.ID))
		}
		seenClass[c.ID] = true
	}
	seenHome := make(map[string]bool)
	for _, h := range d.Homes {
		if h.ID == "" || seenHome[h.ID] {
			errs = append(errs, fmt.Errorf("home %q 缺少 id 或重复", h.ID))
		}
		seenHome[h.ID] = true
	}

	return errors.Join(errs...)
}

func checkResource(kind string, r ResourceDef, seen map[string]bool) []error {
	var errs []error
	if r.ID == "" {
		return []error{fmt.Errorf("%s 缺少 id", kind)}
	}
	if seen[r.ID] {
		errs = append(errs, fmt.Errorf("%s %s 重复", kind, r.ID))
	}
	seen[r.ID] = true
	if r.Max <= 0 {
		errs = append(errs, fmt.Errorf("%s %s 的 max 必须为正数", kind, r.ID))
	}
	if r.Initial < 0 || r.Initial > r.Max {
		errs = append(errs, fmt.Errorf("%s %s 的 initial 超出 [0,max]", kind, r.ID))
	}
	return errs
}

func warnUnknown(actionID, kind string, amounts map[string]float64, known map[string]bool) {
	for id := range amounts {
		if !known[id] {
			slog.Warn("行动引用了未定义的条目", "action", actionID, "kind", kind, "id", id)
		}
	}
}
