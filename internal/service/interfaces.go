package service

import (
	"context"

	"github.com/yuqie6/IdleForge/internal/eventbus"
	"github.com/yuqie6/IdleForge/internal/game"
	"github.com/yuqie6/IdleForge/internal/schema"
)

// 仓储/外部依赖的最小接口集合（ISP）

// EventPublisher 事件出口，返回值不影响状态
type EventPublisher interface {
	Publish(evt eventbus.Event)
}

type SaveRepository interface {
	Upsert(ctx context.Context, slot *schema.SaveSlot) error
	GetByID(ctx context.Context, id string) (*schema.SaveSlot, error)
	List(ctx context.Context) ([]schema.SaveSlot, error)
	Delete(ctx context.Context, id string) error
}

// CharacterFactory 按内容表构建新角色
type CharacterFactory interface {
	NewCharacter(name, class string) (*game.Character, error)
}

type nopPublisher struct{}

func (nopPublisher) Publish(eventbus.Event) {}
