package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动
	"github.com/yuqie6/IdleForge/internal/pkg/buildinfo"
	"github.com/yuqie6/IdleForge/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database 数据库管理器
type Database struct {
	DB             *gorm.DB
	SafeMode       bool
	SchemaVersion  int
	MigrationError string
}

// NewDatabase 创建数据库连接
func NewDatabase(dbPath string) (*Database, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建数据目录失败: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	if err := configureDB(db); err != nil {
		return nil, fmt.Errorf("配置数据库失败: %w", err)
	}

	d := &Database{DB: db}
	if err := migrateWithVersion(db, d); err != nil {
		// 迁移失败进入安全模式：仍可读取配置与内容，但不写存档
		d.SafeMode = true
		d.MigrationError = err.Error()
		slog.Error("数据库迁移失败，进入安全模式", "error", err)
	}

	slog.Info("数据库初始化成功", "path", dbPath, "schema_version", d.SchemaVersion)

	return d, nil
}

// configureDB 配置 SQLite 参数
func configureDB(db *gorm.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",   // autosave 与读取并发
		"PRAGMA synchronous=NORMAL", // 平衡性能与安全
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return fmt.Errorf("执行 %s 失败: %w", pragma, err)
		}
	}

	return nil
}

// migration 单步迁移，version 严格递增
type migration struct {
	version int
	name    string
	up      func(tx *gorm.DB) error
}

var migrations = []migration{
	{version: 1, name: "create_save_slots", up: func(tx *gorm.DB) error {
		return tx.AutoMigrate(&schema.SaveSlot{})
	}},
	{version: 2, name: "backfill_format_version", up: func(tx *gorm.DB) error {
		return tx.Model(&schema.SaveSlot{}).
			Where("format_version IS NULL OR format_version = 0").
			Update("format_version", 1).Error
	}},
}

func latestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// migrateWithVersion 按 schema_meta 记录的版本逐步执行未应用的迁移，每步一个事务
func migrateWithVersion(db *gorm.DB, out *Database) error {
	if db == nil || out == nil {
		return fmt.Errorf("db 与 out 不能为空")
	}

	// schema_meta 先于一切迁移存在，失败时也能记录版本
	if err := db.AutoMigrate(&schema.SchemaMeta{}); err != nil {
		return fmt.Errorf("创建 schema_meta 失败: %w", err)
	}

	var meta schema.SchemaMeta
	if err := db.First(&meta, 1).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("读取 schema_meta 失败: %w", err)
		}
		meta = schema.SchemaMeta{ID: 1}
		if err := db.Create(&meta).Error; err != nil {
			return fmt.Errorf("初始化 schema_meta 失败: %w", err)
		}
	}
	out.SchemaVersion = meta.SchemaVersion

	if latest := latestSchemaVersion(); meta.SchemaVersion > latest {
		return fmt.Errorf("数据库 schema_version=%d 高于当前程序支持的版本=%d", meta.SchemaVersion, latest)
	}

	for _, m := range migrations {
		if m.version <= meta.SchemaVersion {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.up(tx); err != nil {
				return err
			}
			meta.SchemaVersion = m.version
			meta.LastMigration = m.name
			meta.AppVersion = buildinfo.Version
			return tx.Save(&meta).Error
		})
		if err != nil {
			return fmt.Errorf("迁移 %d(%s) 失败: %w", m.version, m.name, err)
		}
		out.SchemaVersion = m.version
		slog.Info("数据库迁移完成", "version", m.version, "name", m.name)
	}
	return nil
}

// Close 关闭数据库连接
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
