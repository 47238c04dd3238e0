package game

// Kind 资源种类
type Kind string

const (
	KindStat     Kind = "stat"
	KindCurrency Kind = "currency"
)

// Resource 有上限、可自然增减的数值（属性或货币）
type Resource struct {
	ID             string
	Name           string
	Kind           Kind
	Current        float64
	Max            float64
	GainRate       float64 // 每秒，可为负
	Unlocked       bool
	Visible        bool
	LifetimeGained float64

	modifiers []Modifier
	clock     Clock
}

// NewResource 创建资源，max 非正时取 1
func NewResource(id, name string, kind Kind, initial, max, gainRate float64) *Resource {
	if max <= 0 {
		max = 1
	}
	r := &Resource{
		ID:       id,
		Name:     name,
		Kind:     kind,
		Max:      max,
		GainRate: gainRate,
		clock:    SystemClock{},
	}
	if initial > max {
		initial = max
	}
	if initial > 0 {
		r.Current = initial
		r.Unlocked = true
		r.Visible = true
	}
	return r
}

// SetClock 替换时钟
func (r *Resource) SetClock(c Clock) {
	if c != nil {
		r.clock = c
	}
}

func (r *Resource) now() int64 {
	if r.clock == nil {
		return SystemClock{}.NowMilli()
	}
	return r.clock.NowMilli()
}

// Add 增加数量（受上限约束），返回实际增加量
func (r *Resource) Add(amount float64) float64 {
	return r.add(amount, true)
}

// AddUncapped 增加数量，允许超过上限
func (r *Resource) AddUncapped(amount float64) float64 {
	return r.add(amount, false)
}

func (r *Resource) add(amount float64, respectMax bool) float64 {
	if amount <= 0 {
		return 0
	}
	old := r.Current
	r.Current += amount
	if respectMax && r.Current > r.Max {
		r.Current = r.Max
	}
	delta := r.Current - old
	if delta > 0 {
		r.LifetimeGained += delta
	}
	if r.Current > 0 && !r.Unlocked {
		r.Unlocked = true
		r.Visible = true
	}
	return delta
}

// Subtract 扣除数量，不足时返回 false 且不修改状态
func (r *Resource) Subtract(amount float64) bool {
	return r.subtract(amount, false)
}

// SubtractAllowNegative 扣除数量，允许变为负数
func (r *Resource) SubtractAllowNegative(amount float64) bool {
	return r.subtract(amount, true)
}

func (r *Resource) subtract(amount float64, allowNegative bool) bool {
	if amount <= 0 {
		return true
	}
	if !allowNegative && r.Current < amount {
		return false
	}
	r.Current -= amount
	if !allowNegative && r.Current < 0 {
		r.Current = 0
	}
	return true
}

// HasEnough 是否足够
func (r *Resource) HasEnough(amount float64) bool {
	return r.Current >= amount
}

// SetMax 修改上限；adjustCurrent 为 true 时按比例缩放当前值
func (r *Resource) SetMax(newMax float64, adjustCurrent bool) {
	if newMax <= 0 {
		return
	}
	if adjustCurrent && r.Max > 0 {
		r.Current = r.Current / r.Max * newMax
	}
	r.Max = newMax
	if r.Current > r.Max {
		r.Current = r.Max
	}
}

// Ratio 当前值占上限的比例
func (r *Resource) Ratio() float64 {
	if r.Max <= 0 {
		return 0
	}
	return r.Current / r.Max
}

// EffectiveGainRate (基础增长 + Σ加法修正) × Π乘法修正
func (r *Resource) EffectiveGainRate() float64 {
	r.modifiers = purgeExpired(r.modifiers, r.now())

	flat := 0.0
	mult := 1.0
	for _, m := range r.modifiers {
		switch m.Operation {
		case OpAdd:
			flat += m.Value
		case OpMultiply:
			mult *= m.Value
		}
	}
	return (r.GainRate + flat) * mult
}

// Update 按经过的毫秒推进自然增减，返回实际变化量（可为负）
func (r *Resource) Update(deltaMs float64) float64 {
	if deltaMs <= 0 {
		return 0
	}
	delta := r.EffectiveGainRate() * deltaMs / 1000
	switch {
	case delta > 0:
		return r.Add(delta)
	case delta < 0:
		drain := -delta
		if drain > r.Current {
			drain = r.Current
		}
		if drain <= 0 {
			return 0
		}
		r.Current -= drain
		return -drain
	}
	return 0
}

// AddModifier 添加修正，同 ID 覆盖
func (r *Resource) AddModifier(m Modifier) {
	if m.ID == "" {
		return
	}
	r.modifiers = upsertByID(r.modifiers, m, modifierID)
}

// RemoveModifier 按 ID 删除修正
func (r *Resource) RemoveModifier(id string) bool {
	var ok bool
	r.modifiers, ok = removeByID(r.modifiers, id, modifierID)
	return ok
}

// Modifiers 返回修正副本（不做过期清理）
func (r *Resource) Modifiers() []Modifier {
	return append([]Modifier(nil), r.modifiers...)
}

// ResourceRecord 资源持久化记录
type ResourceRecord struct {
	ID             string     `json:"id"`
	Kind           Kind       `json:"kind"`
	Current        float64    `json:"current"`
	Max            float64    `json:"max"`
	GainRate       float64    `json:"gainRate"`
	Unlocked       bool       `json:"unlocked"`
	Visible        bool       `json:"visible"`
	LifetimeGained float64    `json:"lifetimeGained"`
	Modifiers      []Modifier `json:"modifiers"`
}

// Serialize 导出记录
func (r *Resource) Serialize() ResourceRecord {
	return ResourceRecord{
		ID:             r.ID,
		Kind:           r.Kind,
		Current:        r.Current,
		Max:            r.Max,
		GainRate:       r.GainRate,
		Unlocked:       r.Unlocked,
		Visible:        r.Visible,
		LifetimeGained: r.LifetimeGained,
		Modifiers:      r.Modifiers(),
	}
}

// Deserialize 从记录恢复；非法的 max 保留原值
func (r *Resource) Deserialize(rec ResourceRecord) {
	if rec.Kind != "" {
		r.Kind = rec.Kind
	}
	if rec.Max > 0 {
		r.Max = rec.Max
	}
	r.Current = rec.Current
	r.GainRate = rec.GainRate
	r.Unlocked = rec.Unlocked
	r.Visible = rec.Visible
	r.LifetimeGained = rec.LifetimeGained
	r.modifiers = r.modifiers[:0]
	for _, m := range rec.Modifiers {
		r.AddModifier(m)
	}
}
