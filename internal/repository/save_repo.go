package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/IdleForge/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaveRepository 存档仓储
type SaveRepository struct {
	db *gorm.DB
}

// NewSaveRepository 创建仓储
func NewSaveRepository(db *gorm.DB) *SaveRepository {
	return &SaveRepository{db: db}
}

// Upsert 插入或覆盖存档
func (r *SaveRepository) Upsert(ctx context.Context, slot *schema.SaveSlot) error {
	if slot == nil || slot.ID == "" {
		return fmt.Errorf("存档 ID 不能为空")
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"character_name", "class", "payload", "format_version", "summary", "saved_at", "updated_at"}),
	}).Create(slot).Error
	if err != nil {
		return fmt.Errorf("写入存档失败: %w", err)
	}
	return nil
}

// GetByID 按 ID 读取，不存在返回 nil, nil
func (r *SaveRepository) GetByID(ctx context.Context, id string) (*schema.SaveSlot, error) {
	var slot schema.SaveSlot
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询存档失败: %w", err)
	}
	return &slot, nil
}

// List 按保存时间倒序列出，不加载 Payload
func (r *SaveRepository) List(ctx context.Context) ([]schema.SaveSlot, error) {
	var slots []schema.SaveSlot
	err := r.db.WithContext(ctx).
		Omit("payload").
		Order("saved_at DESC").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("查询存档失败: %w", err)
	}
	return slots, nil
}

// Latest 最近一次保存的存档，没有返回 nil, nil
func (r *SaveRepository) Latest(ctx context.Context) (*schema.SaveSlot, error) {
	var slot schema.SaveSlot
	err := r.db.WithContext(ctx).Order("saved_at DESC").First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询存档失败: %w", err)
	}
	return &slot, nil
}

// Delete 删除存档，不存在不报错
func (r *SaveRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&schema.SaveSlot{}).Error; err != nil {
		return fmt.Errorf("删除存档失败: %w", err)
	}
	return nil
}
