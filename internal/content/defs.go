package content

import "github.com/yuqie6/IdleForge/internal/game"

// ResourceDef 属性/货币定义
type ResourceDef struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Initial  float64 `yaml:"initial"`
	Max      float64 `yaml:"max"`
	GainRate float64 `yaml:"gain_rate"` // 每秒
}

// SkillDef 技能定义
type SkillDef struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	MaxLevel int          `yaml:"max_level"`
	Bonuses  []game.Bonus `yaml:"bonuses"`
}

// ActionDef 行动定义
type ActionDef struct {
	ID              string                  `yaml:"id"`
	Name            string                  `yaml:"name"`
	Description     string                  `yaml:"description"`
	Category        string                  `yaml:"category"`
	DurationMs      float64                 `yaml:"duration_ms"`
	MaxCompletions  int                     `yaml:"max_completions"`
	CooldownMs      int64                   `yaml:"cooldown_ms"`
	Unlocked        bool                    `yaml:"unlocked"`
	AutoRestart     bool                    `yaml:"auto_restart"`
	Rest            bool                    `yaml:"rest"`
	StatCosts       map[string]float64      `yaml:"stat_costs"`
	CurrencyCosts   map[string]float64      `yaml:"currency_costs"`
	StatRewards     map[string]float64      `yaml:"stat_rewards"`
	CurrencyRewards map[string]float64      `yaml:"currency_rewards"`
	SkillExperience map[string]float64      `yaml:"skill_experience"`
	ProgressRewards map[string]game.Rewards `yaml:"progress_rewards"`
	RandomRewards   []game.RandomReward     `yaml:"random_rewards"`
	Requirements    game.Requirements       `yaml:"requirements"`
	Messages        game.Messages           `yaml:"messages"`
}

// UpgradeDef 升级定义：一次性购买的行动
type UpgradeDef struct {
	ActionDef `yaml:",inline"`
	Cost      game.Costs          `yaml:"cost"`
	Effect    *game.UpgradeEffect `yaml:"effect"`
}

// ClassDef 职业定义
type ClassDef struct {
	ID                 string             `yaml:"id"`
	Name               string             `yaml:"name"`
	Description        string             `yaml:"description"`
	StartingSkills     map[string]int     `yaml:"starting_skills"`
	StartingCurrencies map[string]float64 `yaml:"starting_currencies"`
	StatMax            map[string]float64 `yaml:"stat_max"`
}

// HomeDef 住所定义：提供属性回复
type HomeDef struct {
	ID      string             `yaml:"id"`
	Name    string             `yaml:"name"`
	Default bool               `yaml:"default"`
	Regen   map[string]float64 `yaml:"regen"` // 属性 ID -> 每秒额外回复
}

// Definitions 一份完整的内容表，只在构建角色时读取
type Definitions struct {
	Stats      []ResourceDef `yaml:"stats"`
	Currencies []ResourceDef `yaml:"currencies"`
	Skills     []SkillDef    `yaml:"skills"`
	Actions    []ActionDef   `yaml:"actions"`
	Upgrades   []UpgradeDef  `yaml:"upgrades"`
	Classes    []ClassDef    `yaml:"classes"`
	Homes      []HomeDef     `yaml:"homes"`
}

// Class 按 ID 查找职业
func (d *Definitions) Class(id string) *ClassDef {
	for i := range d.Classes {
		if d.Classes[i].ID == id {
			return &d.Classes[i]
		}
	}
	return nil
}

// DefaultHome 默认住所，没有则返回 nil
func (d *Definitions) DefaultHome() *HomeDef {
	for i := range d.Homes {
		if d.Homes[i].Default {
			return &d.Homes[i]
		}
	}
	return nil
}

func (a ActionDef) config() game.ActionConfig {
	return game.ActionConfig{
		ID:              a.ID,
		Name:            a.Name,
		Description:     a.Description,
		Category:        a.Category,
		BaseDuration:    a.DurationMs,
		MaxCompletions:  a.MaxCompletions,
		CooldownMs:      a.CooldownMs,
		Unlocked:        a.Unlocked,
		AutoRestart:     a.AutoRestart,
		IsRestAction:    a.Rest,
		StatCosts:       a.StatCosts,
		CurrencyCosts:   a.CurrencyCosts,
		StatRewards:     a.StatRewards,
		CurrencyRewards: a.CurrencyRewards,
		SkillExperience: a.SkillExperience,
		ProgressRewards: a.ProgressRewards,
		RandomRewards:   a.RandomRewards,
		Requirements:    a.Requirements,
		Messages:        a.Messages,
	}
}

func (u UpgradeDef) config() game.ActionConfig {
	cfg := u.ActionDef.config()
	cfg.IsUpgrade = true
	cfg.IsRestAction = false
	cfg.PurchaseCost = u.Cost
	cfg.Upgrade = u.Effect
	return cfg
}
