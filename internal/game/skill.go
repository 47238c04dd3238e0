package game

import "math"

const (
	// DefaultMaxLevel 技能默认等级上限
	DefaultMaxLevel = 99
	// xpBase、xpExponent 升级曲线：floor(100 × (level+1)^1.5)
	xpBase     = 100.0
	xpExponent = 1.5
)

// Bonus 技能等级奖励
type Bonus struct {
	Level  int     `json:"level" yaml:"level"`
	Type   string  `json:"type" yaml:"type"`
	Target string  `json:"target" yaml:"target"`
	Value  float64 `json:"value" yaml:"value"`
}

// Skill 技能成长轨道
type Skill struct {
	ID            string
	Name          string
	CurrentLevel  int
	MaxLevel      int
	XP            float64
	XPToNextLevel float64
	Bonuses       []Bonus
}

// XPForLevel 从 level 升到 level+1 所需经验
func XPForLevel(level int) float64 {
	return math.Floor(xpBase * math.Pow(float64(level+1), xpExponent))
}

// NewSkill 创建 0 级技能
func NewSkill(id, name string, maxLevel int, bonuses []Bonus) *Skill {
	if maxLevel <= 0 {
		maxLevel = DefaultMaxLevel
	}
	return &Skill{
		ID:            id,
		Name:          name,
		MaxLevel:      maxLevel,
		XPToNextLevel: XPForLevel(0),
		Bonuses:       append([]Bonus(nil), bonuses...),
	}
}

// AddXP 增加经验，可能连续升级；返回是否升级
func (s *Skill) AddXP(amount float64) bool {
	if amount <= 0 || s.CurrentLevel >= s.MaxLevel {
		return false
	}

	s.XP += amount
	leveled := false
	for s.XP >= s.XPToNextLevel && s.CurrentLevel < s.MaxLevel {
		s.XP -= s.XPToNextLevel
		s.CurrentLevel++
		s.XPToNextLevel = XPForLevel(s.CurrentLevel)
		leveled = true
	}
	if s.CurrentLevel >= s.MaxLevel {
		s.XP = 0
	}
	return leveled
}

// LevelProgress 当前等级进度百分比
func (s *Skill) LevelProgress() float64 {
	if s.CurrentLevel >= s.MaxLevel {
		return 100
	}
	if s.XPToNextLevel <= 0 {
		return 0
	}
	return s.XP / s.XPToNextLevel * 100
}

// ActiveBonuses 已解锁的全部奖励
func (s *Skill) ActiveBonuses() []Bonus {
	return s.BonusesBetween(-1, s.CurrentLevel)
}

// BonusesBetween 等级落在 (from, to] 的奖励，用于只应用新跨过的等级
func (s *Skill) BonusesBetween(from, to int) []Bonus {
	var out []Bonus
	for _, b := range s.Bonuses {
		if b.Level > from && b.Level <= to {
			out = append(out, b)
		}
	}
	return out
}

// SkillRecord 技能持久化记录
type SkillRecord struct {
	ID            string  `json:"id"`
	CurrentLevel  int     `json:"currentLevel"`
	XP            float64 `json:"xp"`
	XPToNextLevel float64 `json:"xpToNextLevel"`
}

func (s *Skill) Serialize() SkillRecord {
	return SkillRecord{
		ID:            s.ID,
		CurrentLevel:  s.CurrentLevel,
		XP:            s.XP,
		XPToNextLevel: s.XPToNextLevel,
	}
}

// Deserialize 恢复等级与经验；缺失的阈值按公式重算
func (s *Skill) Deserialize(rec SkillRecord) {
	level := rec.CurrentLevel
	if level < 0 {
		level = 0
	}
	if level > s.MaxLevel {
		level = s.MaxLevel
	}
	s.CurrentLevel = level
	s.XP = rec.XP
	if s.XP < 0 {
		s.XP = 0
	}
	s.XPToNextLevel = rec.XPToNextLevel
	if s.XPToNextLevel <= 0 {
		s.XPToNextLevel = XPForLevel(level)
	}
}
