package game

// Operation 资源修正的运算方式
type Operation string

const (
	OpAdd      Operation = "add"
	OpMultiply Operation = "multiply"
)

// Modifier 资源增长率修正
// ExpiresAt 为 Unix 毫秒，0 表示永不过期
type Modifier struct {
	ID        string    `json:"id" yaml:"id"`
	Operation Operation `json:"operation" yaml:"operation"`
	Value     float64   `json:"value" yaml:"value"`
	ExpiresAt int64     `json:"expiresAt" yaml:"expires_at"`
}

// Expired 判断在 now 时刻是否已过期
func (m Modifier) Expired(now int64) bool {
	return m.ExpiresAt > 0 && m.ExpiresAt <= now
}

// ModifierType 行动修正作用的维度
type ModifierType string

const (
	ModDuration ModifierType = "duration"
	ModReward   ModifierType = "reward"
)

// 奖励修正的通配目标
const (
	TargetAllStats      = "all_stats"
	TargetAllCurrencies = "all_currencies"
	TargetAllSkills     = "all_skills"
)

// ActionModifier 行动的时长/奖励修正
type ActionModifier struct {
	ID           string       `json:"id" yaml:"id"`
	Type         ModifierType `json:"type" yaml:"type"`
	Target       string       `json:"target,omitempty" yaml:"target"`
	Value        float64      `json:"value" yaml:"value"`
	Source       string       `json:"source,omitempty" yaml:"source"`
	IsMultiplier bool         `json:"isMultiplier" yaml:"is_multiplier"`
	ExpiresAt    int64        `json:"expiresAt" yaml:"expires_at"`
}

func (m ActionModifier) Expired(now int64) bool {
	return m.ExpiresAt > 0 && m.ExpiresAt <= now
}

// upsertByID 按 ID 替换（保持原位置）或追加
func upsertByID[T any](list []T, item T, id func(T) string) []T {
	key := id(item)
	for i := range list {
		if id(list[i]) == key {
			list[i] = item
			return list
		}
	}
	return append(list, item)
}

// removeByID 删除指定 ID，返回是否删除
func removeByID[T any](list []T, key string, id func(T) string) ([]T, bool) {
	for i := range list {
		if id(list[i]) == key {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}

// purgeExpired 原地过滤过期修正
func purgeExpired[T interface{ Expired(int64) bool }](list []T, now int64) []T {
	kept := list[:0]
	for _, m := range list {
		if !m.Expired(now) {
			kept = append(kept, m)
		}
	}
	// 清掉尾部残留引用
	for i := len(kept); i < len(list); i++ {
		var zero T
		list[i] = zero
	}
	return kept
}

func modifierID(m Modifier) string             { return m.ID }
func actionModifierID(m ActionModifier) string { return m.ID }
