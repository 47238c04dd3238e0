package game

const (
	// DefaultUpgradeDurationMs 升级类行动的默认时长
	DefaultUpgradeDurationMs = 100
	// minDurationMs 修正后时长下限
	minDurationMs = 1
)

// Messages 行动提示文本
type Messages struct {
	Start    string `json:"start,omitempty" yaml:"start"`
	Complete string `json:"complete,omitempty" yaml:"complete"`
	Fail     string `json:"fail,omitempty" yaml:"fail"`
}

// UpgradeEffect 升级购买后的效果
type UpgradeEffect struct {
	Target   string  `json:"upgradeTarget" yaml:"target"`      // stat / currency / action
	Type     string  `json:"upgradeType" yaml:"type"`          // max / gain_rate / gain_multiplier / duration / reward
	TargetID string  `json:"upgradeTargetId" yaml:"target_id"` // 目标 ID
	Value    float64 `json:"value" yaml:"value"`
}

// Valid 三个必填字段均存在
func (u *UpgradeEffect) Valid() bool {
	return u != nil && u.Target != "" && u.Type != "" && u.TargetID != ""
}

// ActionConfig 行动的静态配置（来自内容表，构造时只读一次）
type ActionConfig struct {
	ID              string
	Name            string
	Description     string
	Category        string
	BaseDuration    float64 // 毫秒
	MaxCompletions  int     // 0 表示不限
	CooldownMs      int64
	Unlocked        bool
	AutoRestart     bool
	IsRestAction    bool
	IsUpgrade       bool
	StatCosts       map[string]float64 // 每秒
	CurrencyCosts   map[string]float64 // 每秒
	StatRewards     map[string]float64
	CurrencyRewards map[string]float64
	SkillExperience map[string]float64
	ProgressRewards map[string]Rewards
	RandomRewards   []RandomReward
	Requirements    Requirements
	Messages        Messages
	Upgrade         *UpgradeEffect
	PurchaseCost    Costs
}

// Action 随时间推进的行动
type Action struct {
	ID              string
	Name            string
	Description     string
	Category        string
	BaseDuration    float64
	CurrentProgress float64
	IsActive        bool
	CompletionCount int
	MaxCompletions  int
	CooldownMs      int64
	CooldownEndTime int64
	Unlocked        bool
	AutoRestart     bool
	IsRestAction    bool
	IsUpgrade       bool
	TotalTimeSpent  float64

	StatCosts       map[string]float64
	CurrencyCosts   map[string]float64
	StatRewards     map[string]float64
	CurrencyRewards map[string]float64
	SkillExperience map[string]float64
	ProgressRewards map[string]Rewards
	RandomRewards   []RandomReward
	Requirements    Requirements
	Messages        Messages
	Upgrade         *UpgradeEffect
	PurchaseCost    Costs

	modifiers      []ActionModifier
	lastUpdateTime int64
	primed         bool // 激活后已记录过首次 Update 时间
	clock          Clock
	rng            RNG
}

// NewAction 按配置创建行动
func NewAction(cfg ActionConfig) *Action {
	a := &Action{
		ID:              cfg.ID,
		Name:            cfg.Name,
		Description:     cfg.Description,
		Category:        cfg.Category,
		BaseDuration:    cfg.BaseDuration,
		MaxCompletions:  cfg.MaxCompletions,
		CooldownMs:      cfg.CooldownMs,
		Unlocked:        cfg.Unlocked,
		AutoRestart:     cfg.AutoRestart,
		IsRestAction:    cfg.IsRestAction,
		IsUpgrade:       cfg.IsUpgrade,
		StatCosts:       cloneAmounts(cfg.StatCosts),
		CurrencyCosts:   cloneAmounts(cfg.CurrencyCosts),
		StatRewards:     cloneAmounts(cfg.StatRewards),
		CurrencyRewards: cloneAmounts(cfg.CurrencyRewards),
		SkillExperience: cloneAmounts(cfg.SkillExperience),
		RandomRewards:   append([]RandomReward(nil), cfg.RandomRewards...),
		Requirements:    cfg.Requirements,
		Messages:        cfg.Messages,
		PurchaseCost: Costs{
			Stats:      cloneAmounts(cfg.PurchaseCost.Stats),
			Currencies: cloneAmounts(cfg.PurchaseCost.Currencies),
		},
		clock: SystemClock{},
	}
	if len(cfg.ProgressRewards) > 0 {
		a.ProgressRewards = make(map[string]Rewards, len(cfg.ProgressRewards))
		for k, v := range cfg.ProgressRewards {
			a.ProgressRewards[k] = v.Clone()
		}
	}
	if cfg.Upgrade != nil {
		u := *cfg.Upgrade
		a.Upgrade = &u
	}

	if a.IsUpgrade {
		if a.BaseDuration <= 0 {
			a.BaseDuration = DefaultUpgradeDurationMs
		}
		if a.MaxCompletions <= 0 {
			a.MaxCompletions = 1
		}
		a.AutoRestart = false
	}
	if a.BaseDuration <= 0 {
		a.BaseDuration = minDurationMs
	}
	return a
}

// SetClock 替换时钟
func (a *Action) SetClock(c Clock) {
	if c != nil {
		a.clock = c
	}
}

// SetRNG 替换随机源；nil 表示恢复默认
func (a *Action) SetRNG(r RNG) {
	a.rng = r
}

func (a *Action) now() int64 {
	if a.clock == nil {
		return SystemClock{}.NowMilli()
	}
	return a.clock.NowMilli()
}

func (a *Action) random() float64 {
	if a.rng == nil {
		a.rng = NewRNG(0)
	}
	return a.rng.Float64()
}

func (a *Action) hasCapacity() bool {
	return a.MaxCompletions <= 0 || a.CompletionCount < a.MaxCompletions
}

// CanStart 已解锁、冷却结束、未达完成上限
func (a *Action) CanStart() bool {
	return a.Unlocked && a.now() >= a.CooldownEndTime && a.hasCapacity()
}

// Start 开始行动；已在进行或不可开始时返回 false
func (a *Action) Start() bool {
	if a.IsActive || !a.CanStart() {
		return false
	}
	a.IsActive = true
	a.lastUpdateTime = 0
	a.primed = false
	return true
}

// Stop 停止行动；completed 表示正常完成
func (a *Action) Stop(completed bool) {
	a.IsActive = false
	a.lastUpdateTime = 0
	a.primed = false
	if completed {
		a.CurrentProgress = 0
	}
}

// Unlock 解锁，返回状态是否变化
func (a *Action) Unlock() bool {
	if a.Unlocked {
		return false
	}
	a.Unlocked = true
	return true
}

// MeetsRequirements 解锁条件是否满足
func (a *Action) MeetsRequirements(s Snapshot) bool {
	return a.Requirements.Met(s)
}

// MissingRequirements 未满足的条件
func (a *Action) MissingRequirements(s Snapshot) []string {
	if s == nil {
		return nil
	}
	return a.Requirements.Missing(s)
}

// HasCosts 是否有持续消耗
func (a *Action) HasCosts() bool {
	return len(a.StatCosts) > 0 || len(a.CurrencyCosts) > 0
}

// AddModifier 添加修正，同 ID 覆盖；durationMs <= 0 表示永久
func (a *Action) AddModifier(m ActionModifier, durationMs int64) {
	if m.ID == "" {
		return
	}
	if durationMs > 0 {
		m.ExpiresAt = a.now() + durationMs
	}
	a.modifiers = upsertByID(a.modifiers, m, actionModifierID)
}

// RemoveModifier 按 ID 删除
func (a *Action) RemoveModifier(id string) bool {
	var ok bool
	a.modifiers, ok = removeByID(a.modifiers, id, actionModifierID)
	return ok
}

// Modifiers 修正副本
func (a *Action) Modifiers() []ActionModifier {
	return append([]ActionModifier(nil), a.modifiers...)
}

func (a *Action) purgeModifiers() {
	a.modifiers = purgeExpired(a.modifiers, a.now())
}

// ModifiedDuration 先减加法修正再乘乘法修正，两步都保底 1ms
func (a *Action) ModifiedDuration() float64 {
	a.purgeModifiers()

	flat := 0.0
	mult := 1.0
	for _, m := range a.modifiers {
		if m.Type != ModDuration {
			continue
		}
		if m.IsMultiplier {
			mult *= m.Value
		} else {
			flat += m.Value
		}
	}

	d := a.BaseDuration - flat
	if d < minDurationMs {
		d = minDurationMs
	}
	d *= mult
	if d < minDurationMs {
		d = minDurationMs
	}
	return d
}

// ActionRecord 行动持久化记录
type ActionRecord struct {
	ID              string           `json:"id"`
	CurrentProgress float64          `json:"currentProgress"`
	CompletionCount int              `json:"completionCount"`
	TotalTimeSpent  float64          `json:"totalTimeSpent"`
	Unlocked        bool             `json:"unlocked"`
	CooldownEndTime int64            `json:"cooldownEndTime"`
	Modifiers       []ActionModifier `json:"modifiers"`
	IsActive        bool             `json:"isActive"`
	LastUpdateTime  int64            `json:"lastUpdateTime"`
}

func (a *Action) Serialize() ActionRecord {
	return ActionRecord{
		ID:              a.ID,
		CurrentProgress: a.CurrentProgress,
		CompletionCount: a.CompletionCount,
		TotalTimeSpent:  a.TotalTimeSpent,
		Unlocked:        a.Unlocked,
		CooldownEndTime: a.CooldownEndTime,
		Modifiers:       a.Modifiers(),
		IsActive:        a.IsActive,
		LastUpdateTime:  a.lastUpdateTime,
	}
}

// Deserialize 原地恢复运行状态，静态配置不变
func (a *Action) Deserialize(rec ActionRecord) {
	p := rec.CurrentProgress
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	a.CurrentProgress = p
	a.CompletionCount = max(rec.CompletionCount, 0)
	a.TotalTimeSpent = rec.TotalTimeSpent
	a.Unlocked = rec.Unlocked
	a.CooldownEndTime = rec.CooldownEndTime
	a.IsActive = rec.IsActive
	a.lastUpdateTime = rec.LastUpdateTime
	a.primed = rec.IsActive && rec.LastUpdateTime > 0
	a.modifiers = a.modifiers[:0]
	for _, m := range rec.Modifiers {
		a.modifiers = upsertByID(a.modifiers, m, actionModifierID)
	}
}
