package game

import (
	"encoding/json"
	"fmt"
)

// Character 角色：按 ID 持有资源、技能与行动，互不持有指针
type Character struct {
	ID     string
	Name   string
	Class  string
	HomeID string

	Stats      map[string]*Resource
	Currencies map[string]*Resource
	Skills     map[string]*Skill
	Actions    map[string]*Action

	// 编排层维护的运行槽位
	ActiveActionID  string
	PendingResumeID string
	RestActionID    string
	LastTickAt      int64
}

// NewCharacter 创建空角色
func NewCharacter(id, name, class string) *Character {
	return &Character{
		ID:         id,
		Name:       name,
		Class:      class,
		Stats:      make(map[string]*Resource),
		Currencies: make(map[string]*Resource),
		Skills:     make(map[string]*Skill),
		Actions:    make(map[string]*Action),
	}
}

// AddResource 按种类登记资源
func (c *Character) AddResource(r *Resource) {
	if r == nil || r.ID == "" {
		return
	}
	if r.Kind == KindCurrency {
		c.Currencies[r.ID] = r
		return
	}
	r.Kind = KindStat
	c.Stats[r.ID] = r
}

// AddSkill 登记技能
func (c *Character) AddSkill(s *Skill) {
	if s != nil && s.ID != "" {
		c.Skills[s.ID] = s
	}
}

// AddAction 登记行动；休息行动只保留第一个
func (c *Character) AddAction(a *Action) {
	if a == nil || a.ID == "" {
		return
	}
	c.Actions[a.ID] = a
	if a.IsRestAction && c.RestActionID == "" {
		c.RestActionID = a.ID
	}
}

// Resource 按种类查找资源
func (c *Character) Resource(kind Kind, id string) *Resource {
	if kind == KindCurrency {
		return c.Currencies[id]
	}
	return c.Stats[id]
}

// Action 按 ID 查找行动，不存在返回 nil
func (c *Character) Action(id string) *Action {
	if id == "" {
		return nil
	}
	return c.Actions[id]
}

// ActiveAction 当前行动
func (c *Character) ActiveAction() *Action {
	return c.Action(c.ActiveActionID)
}

// RestAction 指定的休息行动
func (c *Character) RestAction() *Action {
	return c.Action(c.RestActionID)
}

// SetClock 为所有成员设置时钟
func (c *Character) SetClock(clock Clock) {
	for _, r := range c.Stats {
		r.SetClock(clock)
	}
	for _, r := range c.Currencies {
		r.SetClock(clock)
	}
	for _, a := range c.Actions {
		a.SetClock(clock)
	}
}

// SetRNG 为所有行动设置随机源
func (c *Character) SetRNG(rng RNG) {
	for _, a := range c.Actions {
		a.SetRNG(rng)
	}
}

// ===== Snapshot =====

func (c *Character) StatCurrent(id string) float64 {
	if r := c.Stats[id]; r != nil {
		return r.Current
	}
	return 0
}

func (c *Character) StatMax(id string) float64 {
	if r := c.Stats[id]; r != nil {
		return r.Max
	}
	return 0
}

func (c *Character) CurrencyCurrent(id string) float64 {
	if r := c.Currencies[id]; r != nil {
		return r.Current
	}
	return 0
}

func (c *Character) SkillLevel(id string) int {
	if s := c.Skills[id]; s != nil {
		return s.CurrentLevel
	}
	return 0
}

func (c *Character) ActionCompletions(id string) int {
	if a := c.Actions[id]; a != nil {
		return a.CompletionCount
	}
	return 0
}

// Snapshot 返回只读视图
func (c *Character) Snapshot() Snapshot {
	return characterView{c}
}

type characterView struct{ c *Character }

func (v characterView) StatCurrent(id string) float64     { return v.c.StatCurrent(id) }
func (v characterView) StatMax(id string) float64         { return v.c.StatMax(id) }
func (v characterView) CurrencyCurrent(id string) float64 { return v.c.CurrencyCurrent(id) }
func (v characterView) SkillLevel(id string) int          { return v.c.SkillLevel(id) }
func (v characterView) ActionCompletions(id string) int   { return v.c.ActionCompletions(id) }
func (v characterView) Class() string                     { return v.c.Class }
func (v characterView) HomeID() string                    { return v.c.HomeID }

// ===== 持久化 =====

// CharacterRecord 角色持久化记录（扁平树，无循环引用）
type CharacterRecord struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Class           string           `json:"class"`
	HomeID          string           `json:"homeId"`
	Stats           []ResourceRecord `json:"stats"`
	Currencies      []ResourceRecord `json:"currencies"`
	Skills          []SkillRecord    `json:"skills"`
	Actions         []ActionRecord   `json:"actions"`
	ActiveActionID  string           `json:"activeActionId"`
	PendingResumeID string           `json:"pendingResumeId"`
	LastTickAt      int64            `json:"lastTickAt"`
}

// Serialize 导出记录，切片按 ID 排序
func (c *Character) Serialize() CharacterRecord {
	rec := CharacterRecord{
		ID:              c.ID,
		Name:            c.Name,
		Class:           c.Class,
		HomeID:          c.HomeID,
		ActiveActionID:  c.ActiveActionID,
		PendingResumeID: c.PendingResumeID,
		LastTickAt:      c.LastTickAt,
	}
	for _, id := range sortedKeys(c.Stats) {
		rec.Stats = append(rec.Stats, c.Stats[id].Serialize())
	}
	for _, id := range sortedKeys(c.Currencies) {
		rec.Currencies = append(rec.Currencies, c.Currencies[id].Serialize())
	}
	for _, id := range sortedKeys(c.Skills) {
		rec.Skills = append(rec.Skills, c.Skills[id].Serialize())
	}
	for _, id := range sortedKeys(c.Actions) {
		rec.Actions = append(rec.Actions, c.Actions[id].Serialize())
	}
	return rec
}

// Deserialize 把记录应用到已按内容表构建好的角色上
// 未知 ID 的记录忽略；记录里缺失的条目保留构建时的默认值
func (c *Character) Deserialize(rec CharacterRecord) {
	if rec.ID != "" {
		c.ID = rec.ID
	}
	if rec.Name != "" {
		c.Name = rec.Name
	}
	if rec.Class != "" {
		c.Class = rec.Class
	}
	c.HomeID = rec.HomeID
	for _, r := range rec.Stats {
		if res := c.Stats[r.ID]; res != nil {
			r.Kind = KindStat
			res.Deserialize(r)
		}
	}
	for _, r := range rec.Currencies {
		if res := c.Currencies[r.ID]; res != nil {
			r.Kind = KindCurrency
			res.Deserialize(r)
		}
	}
	for _, r := range rec.Skills {
		if s := c.Skills[r.ID]; s != nil {
			s.Deserialize(r)
		}
	}
	for _, r := range rec.Actions {
		if a := c.Actions[r.ID]; a != nil {
			a.Deserialize(r)
		}
	}

	c.ActiveActionID = ""
	if a := c.Action(rec.ActiveActionID); a != nil && a.IsActive {
		c.ActiveActionID = a.ID
	}
	// 只允许一个激活行动
	for id, a := range c.Actions {
		if a.IsActive && id != c.ActiveActionID {
			a.Stop(false)
		}
	}
	c.PendingResumeID = ""
	if c.Action(rec.PendingResumeID) != nil {
		c.PendingResumeID = rec.PendingResumeID
	}
	c.LastTickAt = rec.LastTickAt
}

// Encode JSON 编码
func (c *Character) Encode() ([]byte, error) {
	b, err := json.Marshal(c.Serialize())
	if err != nil {
		return nil, fmt.Errorf("编码角色失败: %w", err)
	}
	return b, nil
}

// DecodeCharacter 在当前状态之上解码 JSON，缺失字段沿用当前值
// 数组按 id 对齐，存档里没有的条目保持不变，未知 id 被忽略
func DecodeCharacter(data []byte, c *Character) error {
	var raw struct {
		Stats      []json.RawMessage `json:"stats"`
		Currencies []json.RawMessage `json:"currencies"`
		Skills     []json.RawMessage `json:"skills"`
		Actions    []json.RawMessage `json:"actions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("解析存档失败: %w", err)
	}

	base := c.Serialize()
	rec := base
	rec.Stats, rec.Currencies, rec.Skills, rec.Actions = nil, nil, nil, nil
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("解析存档失败: %w", err)
	}

	var err error
	if rec.Stats, err = overlayRecords(base.Stats, raw.Stats, func(r ResourceRecord) string { return r.ID }); err != nil {
		return fmt.Errorf("解析属性失败: %w", err)
	}
	if rec.Currencies, err = overlayRecords(base.Currencies, raw.Currencies, func(r ResourceRecord) string { return r.ID }); err != nil {
		return fmt.Errorf("解析货币失败: %w", err)
	}
	if rec.Skills, err = overlayRecords(base.Skills, raw.Skills, func(r SkillRecord) string { return r.ID }); err != nil {
		return fmt.Errorf("解析技能失败: %w", err)
	}
	if rec.Actions, err = overlayRecords(base.Actions, raw.Actions, func(r ActionRecord) string { return r.ID }); err != nil {
		return fmt.Errorf("解析行动失败: %w", err)
	}

	c.Deserialize(rec)
	return nil
}

func overlayRecords[T any](base []T, raws []json.RawMessage, id func(T) string) ([]T, error) {
	if raws == nil {
		return base, nil
	}
	index := make(map[string]T, len(base))
	for _, b := range base {
		index[id(b)] = b
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var probe struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, err
		}
		item := index[probe.ID]
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
