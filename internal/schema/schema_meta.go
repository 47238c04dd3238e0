package schema

import "time"

// SchemaMeta 单行表（ID=1），记录已应用到的迁移
type SchemaMeta struct {
	ID            int       `gorm:"primaryKey"`
	SchemaVersion int       `gorm:"not null;default:0"`
	LastMigration string    `gorm:"size:100"`
	AppVersion    string    `gorm:"size:50"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (SchemaMeta) TableName() string {
	return "schema_meta"
}
