package content

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/yuqie6/IdleForge/internal/game"
)

// Builder 按当前内容表构建角色；内容可被 Watcher 原子替换
type Builder struct {
	defs atomic.Pointer[Definitions]
}

// NewBuilder 创建构建器
func NewBuilder(defs *Definitions) *Builder {
	b := &Builder{}
	b.defs.Store(defs)
	return b
}

// Definitions 当前内容表
func (b *Builder) Definitions() *Definitions {
	return b.defs.Load()
}

// Swap 替换内容表，已构建的角色不受影响
func (b *Builder) Swap(defs *Definitions) {
	if defs != nil {
		b.defs.Store(defs)
	}
}

// NewCharacter 构建新角色；class 为空时取第一个职业
func (b *Builder) NewCharacter(name, class string) (*game.Character, error) {
	defs := b.defs.Load()
	if defs == nil {
		return nil, fmt.Errorf("内容表未加载")
	}

	var cls *ClassDef
	switch {
	case class != "":
		cls = defs.Class(class)
		if cls == nil && len(defs.Classes) > 0 {
			return nil, fmt.Errorf("未知职业: %s", class)
		}
	case len(defs.Classes) > 0:
		cls = &defs.Classes[0]
		class = cls.ID
	}

	ch := game.NewCharacter(uuid.NewString(), name, class)
	for _, r := range defs.Stats {
		ch.AddResource(game.NewResource(r.ID, r.Name, game.KindStat, r.Initial, r.Max, r.GainRate))
	}
	for _, r := range defs.Currencies {
		ch.AddResource(game.NewResource(r.ID, r.Name, game.KindCurrency, r.Initial, r.Max, r.GainRate))
	}
	for _, s := range defs.Skills {
		ch.AddSkill(game.NewSkill(s.ID, s.Name, s.MaxLevel, s.Bonuses))
	}
	for _, a := range defs.Actions {
		ch.AddAction(game.NewAction(a.config()))
	}
	for _, u := range defs.Upgrades {
		ch.AddAction(game.NewAction(u.config()))
	}

	if cls != nil {
		applyClass(ch, cls)
	}
	if home := defs.DefaultHome(); home != nil {
		applyHome(ch, home)
	}
	return ch, nil
}

// applyClass 职业起始加成
func applyClass(ch *game.Character, cls *ClassDef) {
	for id, limit := range cls.StatMax {
		if r := ch.Stats[id]; r != nil {
			r.SetMax(limit, true)
		}
	}
	for id, amount := range cls.StartingCurrencies {
		if r := ch.Currencies[id]; r != nil {
			r.Add(amount)
		}
	}
	for id, level := range cls.StartingSkills {
		sk := ch.Skills[id]
		if sk == nil {
			continue
		}
		sk.CurrentLevel = min(max(level, 0), sk.MaxLevel)
		sk.XP = 0
		sk.XPToNextLevel = game.XPForLevel(sk.CurrentLevel)
	}
}

// applyHome 住所回复以固定 ID 的加法修正挂到属性上
func applyHome(ch *game.Character, home *HomeDef) {
	ch.HomeID = home.ID
	for id, rate := range home.Regen {
		if r := ch.Stats[id]; r != nil {
			r.AddModifier(game.Modifier{ID: "home:" + home.ID, Operation: game.OpAdd, Value: rate})
		}
	}
}
