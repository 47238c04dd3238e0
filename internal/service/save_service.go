package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/yuqie6/IdleForge/internal/game"
	"github.com/yuqie6/IdleForge/internal/schema"
)

// ErrSaveNotFound 存档不存在
var ErrSaveNotFound = errors.New("save not found")

// SaveService 存档读写：核心只产出记录，这里负责落库
type SaveService struct {
	repo  SaveRepository
	clock game.Clock
}

// NewSaveService 创建存档服务
func NewSaveService(repo SaveRepository, clock game.Clock) *SaveService {
	if clock == nil {
		clock = game.SystemClock{}
	}
	return &SaveService{repo: repo, clock: clock}
}

// NewCharacterID 生成角色/存档 ID
func NewCharacterID() string {
	return uuid.NewString()
}

// Save 序列化角色并写入与角色 ID 同名的槽位
func (s *SaveService) Save(ctx context.Context, ch *game.Character) (*schema.SaveSlot, error) {
	if ch == nil {
		return nil, fmt.Errorf("角色不能为空")
	}
	if ch.ID == "" {
		ch.ID = NewCharacterID()
	}
	payload, err := ch.Encode()
	if err != nil {
		return nil, err
	}
	slot := &schema.SaveSlot{
		ID:            ch.ID,
		CharacterName: ch.Name,
		Class:         ch.Class,
		Payload:       string(payload),
		FormatVersion: schema.SaveFormatVersion,
		Summary:       summarize(ch),
		SavedAt:       s.clock.NowMilli(),
	}
	if err := s.repo.Upsert(ctx, slot); err != nil {
		return nil, err
	}
	slog.Debug("存档已保存", "id", slot.ID, "bytes", len(payload))
	return slot, nil
}

// Load 按内容表构建新角色，再把存档覆盖上去；缺失字段沿用构建默认值
func (s *SaveService) Load(ctx context.Context, id string, factory CharacterFactory) (*game.Character, error) {
	slot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrSaveNotFound
	}
	if slot.FormatVersion > schema.SaveFormatVersion {
		return nil, fmt.Errorf("存档格式版本 %d 高于当前支持的 %d", slot.FormatVersion, schema.SaveFormatVersion)
	}

	ch, err := factory.NewCharacter(slot.CharacterName, slot.Class)
	if err != nil {
		return nil, fmt.Errorf("构建角色失败: %w", err)
	}
	if err := game.DecodeCharacter([]byte(slot.Payload), ch); err != nil {
		return nil, err
	}
	ch.ID = slot.ID
	return ch, nil
}

// List 存档列表
func (s *SaveService) List(ctx context.Context) ([]schema.SaveSlot, error) {
	return s.repo.List(ctx)
}

// Delete 删除存档
func (s *SaveService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func summarize(ch *game.Character) schema.JSONMap {
	total := 0
	for _, sk := range ch.Skills {
		total += sk.CurrentLevel
	}
	out := schema.JSONMap{"totalLevel": total}
	if a := ch.ActiveAction(); a != nil {
		out["active"] = a.ID
	}
	return out
}
