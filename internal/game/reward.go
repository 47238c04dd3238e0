package game

import "sort"

// Rewards 一组奖励（属性、货币、技能经验）
type Rewards struct {
	Stats      map[string]float64 `json:"stats,omitempty" yaml:"stats"`
	Currencies map[string]float64 `json:"currencies,omitempty" yaml:"currencies"`
	SkillXP    map[string]float64 `json:"skillExperience,omitempty" yaml:"skill_experience"`
}

// IsEmpty 是否没有任何奖励
func (r Rewards) IsEmpty() bool {
	return len(r.Stats) == 0 && len(r.Currencies) == 0 && len(r.SkillXP) == 0
}

// Merge 按键累加另一组奖励
func (r *Rewards) Merge(other Rewards) {
	r.Stats = mergeAmounts(r.Stats, other.Stats)
	r.Currencies = mergeAmounts(r.Currencies, other.Currencies)
	r.SkillXP = mergeAmounts(r.SkillXP, other.SkillXP)
}

// Clone 深拷贝
func (r Rewards) Clone() Rewards {
	var out Rewards
	out.Merge(r)
	return out
}

// Costs 每 tick 计算出的消耗
type Costs struct {
	Stats      map[string]float64 `json:"stats,omitempty" yaml:"stats"`
	Currencies map[string]float64 `json:"currencies,omitempty" yaml:"currencies"`
}

func (c Costs) IsEmpty() bool {
	return len(c.Stats) == 0 && len(c.Currencies) == 0
}

// RandomReward 完成时独立掷骰的额外奖励，Chance 为 0-100
type RandomReward struct {
	Chance  float64 `json:"chance" yaml:"chance"`
	Rewards Rewards `json:"rewards" yaml:"rewards"`
	Message string  `json:"message,omitempty" yaml:"message"`
}

func mergeAmounts(dst, src map[string]float64) map[string]float64 {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]float64, len(src))
	}
	for k, v := range src {
		dst[k] += v
	}
	return dst
}

func cloneAmounts(src map[string]float64) map[string]float64 {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// sortedKeys map 键排序，保证遍历顺序稳定
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
