package testutil

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/yuqie6/IdleForge/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB 在临时目录打开 SQLite 并迁移存档表，测试结束自动关闭
// 用文件而非 :memory:，避免连接池中每个连接各自一份空库
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&schema.SchemaMeta{}, &schema.SaveSlot{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// SaveSlotFixture 最小可用的存档行，角色名与 ID 相同
func SaveSlotFixture(id string, savedAt int64) *schema.SaveSlot {
	return &schema.SaveSlot{
		ID:            id,
		CharacterName: id,
		Class:         "wanderer",
		Payload:       `{"id":"` + id + `"}`,
		FormatVersion: schema.SaveFormatVersion,
		Summary:       schema.JSONMap{"totalLevel": 0},
		SavedAt:       savedAt,
	}
}
