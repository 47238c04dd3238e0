package dto

// 注意：本包承载对外契约（HTTP/CLI 输出），字段保持稳定；游戏内部状态见 internal/game。

import (
	"slices"
	"strings"

	"github.com/yuqie6/IdleForge/internal/game"
	"github.com/yuqie6/IdleForge/internal/schema"
)

type ResourceDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Current  float64 `json:"current"`
	Max      float64 `json:"max"`
	GainRate float64 `json:"gain_rate"` // 含修正，每秒
	Ratio    float64 `json:"ratio"`
}

type SkillDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Level    int     `json:"level"`
	MaxLevel int     `json:"max_level"`
	XP       float64 `json:"xp"`
	XPToNext float64 `json:"xp_to_next"`
	Progress float64 `json:"progress"`
}

type ActionDTO struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category,omitempty"`
	Unlocked        bool     `json:"unlocked"`
	Active          bool     `json:"active"`
	Progress        float64  `json:"progress"`
	DurationMs      float64  `json:"duration_ms"`
	Completions     int      `json:"completions"`
	MaxCompletions  int      `json:"max_completions,omitempty"`
	CooldownEndTime int64    `json:"cooldown_end_time,omitempty"`
	Rest            bool     `json:"rest,omitempty"`
	Upgrade         bool     `json:"upgrade,omitempty"`
	Purchased       bool     `json:"purchased,omitempty"`
	Missing         []string `json:"missing,omitempty"`
}

type CharacterDTO struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Class        string        `json:"class"`
	Home         string        `json:"home,omitempty"`
	ActiveAction string        `json:"active_action,omitempty"`
	Stats        []ResourceDTO `json:"stats"`
	Currencies   []ResourceDTO `json:"currencies"`
	Skills       []SkillDTO    `json:"skills"`
}

type SaveSlotDTO struct {
	ID            string `json:"id"`
	CharacterName string `json:"character_name"`
	Class         string `json:"class"`
	TotalLevel    int    `json:"total_level"`
	ActiveAction  string `json:"active_action,omitempty"`
	SavedAt       int64  `json:"saved_at"`
}

func NewResourceDTO(r *game.Resource) ResourceDTO {
	return ResourceDTO{
		ID:       r.ID,
		Name:     r.Name,
		Current:  r.Current,
		Max:      r.Max,
		GainRate: r.EffectiveGainRate(),
		Ratio:    r.Ratio(),
	}
}

func NewSkillDTO(s *game.Skill) SkillDTO {
	return SkillDTO{
		ID:       s.ID,
		Name:     s.Name,
		Level:    s.CurrentLevel,
		MaxLevel: s.MaxLevel,
		XP:       s.XP,
		XPToNext: s.XPToNextLevel,
		Progress: s.LevelProgress(),
	}
}

// NewActionDTO 未解锁的行动附带缺失条件
func NewActionDTO(a *game.Action, snap game.Snapshot) ActionDTO {
	out := ActionDTO{
		ID:              a.ID,
		Name:            a.Name,
		Category:        a.Category,
		Unlocked:        a.Unlocked,
		Active:          a.IsActive,
		Progress:        a.CurrentProgress,
		DurationMs:      a.ModifiedDuration(),
		Completions:     a.CompletionCount,
		MaxCompletions:  a.MaxCompletions,
		CooldownEndTime: a.CooldownEndTime,
		Rest:            a.IsRestAction,
		Upgrade:         a.IsUpgrade,
		Purchased:       a.IsUpgrade && a.CompletionCount > 0,
	}
	if !a.Unlocked && snap != nil {
		out.Missing = a.MissingRequirements(snap)
	}
	return out
}

func NewCharacterDTO(ch *game.Character) CharacterDTO {
	out := CharacterDTO{
		ID:           ch.ID,
		Name:         ch.Name,
		Class:        ch.Class,
		Home:         ch.HomeID,
		ActiveAction: ch.ActiveActionID,
		Stats:        []ResourceDTO{},
		Currencies:   []ResourceDTO{},
		Skills:       []SkillDTO{},
	}
	for _, r := range ch.Stats {
		out.Stats = append(out.Stats, NewResourceDTO(r))
	}
	for _, r := range ch.Currencies {
		out.Currencies = append(out.Currencies, NewResourceDTO(r))
	}
	for _, s := range ch.Skills {
		out.Skills = append(out.Skills, NewSkillDTO(s))
	}
	sortByID(out.Stats, func(r ResourceDTO) string { return r.ID })
	sortByID(out.Currencies, func(r ResourceDTO) string { return r.ID })
	sortByID(out.Skills, func(s SkillDTO) string { return s.ID })
	return out
}

// NewActionDTOs upgrades 为 true 时只返回升级，否则只返回普通行动
func NewActionDTOs(ch *game.Character, upgrades bool) []ActionDTO {
	snap := ch.Snapshot()
	out := []ActionDTO{}
	for _, a := range ch.Actions {
		if a.IsUpgrade == upgrades {
			out = append(out, NewActionDTO(a, snap))
		}
	}
	sortByID(out, func(a ActionDTO) string { return a.ID })
	return out
}

func NewSaveSlotDTO(s schema.SaveSlot) SaveSlotDTO {
	return SaveSlotDTO{
		ID:            s.ID,
		CharacterName: s.CharacterName,
		Class:         s.Class,
		TotalLevel:    schema.GetInt(s.Summary, "totalLevel"),
		ActiveAction:  schema.GetString(s.Summary, "active"),
		SavedAt:       s.SavedAt,
	}
}

func sortByID[T any](items []T, id func(T) string) {
	slices.SortFunc(items, func(a, b T) int { return strings.Compare(id(a), id(b)) })
}
