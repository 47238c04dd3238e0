package game

import (
	"fmt"
	"slices"
)

// Snapshot 行动更新时读取的角色只读视图
// 缺失的条目一律按 0/空值处理，不报错
type Snapshot interface {
	StatCurrent(id string) float64
	StatMax(id string) float64
	CurrencyCurrent(id string) float64
	SkillLevel(id string) int
	ActionCompletions(id string) int
	Class() string
	HomeID() string
}

// 休息行动判断用的属性 ID
const (
	StatHealth  = "health"
	StatStamina = "stamina"
)

// statRatio 属性当前值/上限，上限缺失时为 0
func statRatio(s Snapshot, id string) float64 {
	if s == nil {
		return 0
	}
	max := s.StatMax(id)
	if max <= 0 {
		return 0
	}
	return s.StatCurrent(id) / max
}

// VitalsAtLeast health 与 stamina 是否都达到上限的 ratio
func VitalsAtLeast(s Snapshot, ratio float64) bool {
	return statRatio(s, StatHealth) >= ratio && statRatio(s, StatStamina) >= ratio
}

// Requirements 解锁条件
type Requirements struct {
	Skills     map[string]int     `json:"skills,omitempty" yaml:"skills"`         // 技能最低等级
	Actions    map[string]int     `json:"actions,omitempty" yaml:"actions"`       // 行动最少完成次数
	Classes    []string           `json:"classes,omitempty" yaml:"classes"`       // 允许的职业
	Currencies map[string]float64 `json:"currencies,omitempty" yaml:"currencies"` // 货币持有量
	Stats      map[string]float64 `json:"stats,omitempty" yaml:"stats"`           // 属性当前值
	Upgrades   []string           `json:"upgrades,omitempty" yaml:"upgrades"`     // 已购买的升级
	Homes      []string           `json:"homes,omitempty" yaml:"homes"`           // 所在住所
}

// IsEmpty 无任何条件
func (r Requirements) IsEmpty() bool {
	return len(r.Skills) == 0 && len(r.Actions) == 0 && len(r.Classes) == 0 &&
		len(r.Currencies) == 0 && len(r.Stats) == 0 && len(r.Upgrades) == 0 && len(r.Homes) == 0
}

// Missing 返回未满足的条件描述，空切片表示全部满足
func (r Requirements) Missing(s Snapshot) []string {
	var out []string
	for _, id := range sortedKeys(r.Skills) {
		if s.SkillLevel(id) < r.Skills[id] {
			out = append(out, fmt.Sprintf("skill %s >= %d", id, r.Skills[id]))
		}
	}
	for _, id := range sortedKeys(r.Actions) {
		if s.ActionCompletions(id) < r.Actions[id] {
			out = append(out, fmt.Sprintf("action %s completed %d times", id, r.Actions[id]))
		}
	}
	if len(r.Classes) > 0 && !slices.Contains(r.Classes, s.Class()) {
		out = append(out, fmt.Sprintf("class in %v", r.Classes))
	}
	for _, id := range sortedKeys(r.Currencies) {
		if s.CurrencyCurrent(id) < r.Currencies[id] {
			out = append(out, fmt.Sprintf("currency %s >= %g", id, r.Currencies[id]))
		}
	}
	for _, id := range sortedKeys(r.Stats) {
		if s.StatCurrent(id) < r.Stats[id] {
			out = append(out, fmt.Sprintf("stat %s >= %g", id, r.Stats[id]))
		}
	}
	for _, id := range r.Upgrades {
		if s.ActionCompletions(id) <= 0 {
			out = append(out, fmt.Sprintf("upgrade %s", id))
		}
	}
	if len(r.Homes) > 0 && !slices.Contains(r.Homes, s.HomeID()) {
		out = append(out, fmt.Sprintf("home in %v", r.Homes))
	}
	return out
}

// Met 是否全部满足
func (r Requirements) Met(s Snapshot) bool {
	if s == nil {
		return r.IsEmpty()
	}
	return len(r.Missing(s)) == 0
}
