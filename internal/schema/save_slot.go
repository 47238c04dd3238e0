package schema

import "time"

// SaveFormatVersion 当前存档负载格式版本
const SaveFormatVersion = 1

// SaveSlot 存档槽位，Payload 为角色序列化后的 JSON
// 数据量级：个位数
type SaveSlot struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"` // uuid，与角色 ID 一致
	CharacterName string    `gorm:"size:100" json:"characterName"`
	Class         string    `gorm:"size:50;index" json:"class"`
	Payload       string    `gorm:"type:text" json:"-"`
	FormatVersion int       `gorm:"default:1" json:"formatVersion"`
	Summary       JSONMap   `gorm:"type:text" json:"summary"` // 列表展示用的摘要
	SavedAt       int64     `gorm:"index" json:"savedAt"`     // Unix 毫秒
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (SaveSlot) TableName() string {
	return "save_slots"
}
