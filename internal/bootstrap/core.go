package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yuqie6/IdleForge/internal/content"
	"github.com/yuqie6/IdleForge/internal/eventbus"
	"github.com/yuqie6/IdleForge/internal/pkg/config"
	"github.com/yuqie6/IdleForge/internal/repository"
	"github.com/yuqie6/IdleForge/internal/service"
)

// Core 持有跨二进制共享的核心依赖
type Core struct {
	Cfg       *config.Config
	DB        *repository.Database
	LogCloser io.Closer
	Hub       *eventbus.Hub
	Builder   *content.Builder

	Repos struct {
		Saves *repository.SaveRepository
	}

	Services struct {
		Saves *service.SaveService
	}
}

// NewCore 读取配置并构建核心依赖（不启动 tick 循环）
func NewCore(cfgPath string) (*Core, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	logCloser, _ := config.SetupLogger(config.LoggerOptions{
		Level:     cfg.App.LogLevel,
		Path:      cfg.App.LogPath,
		Component: filepath.Base(os.Args[0]),
	})

	c, err := NewCoreWithConfig(cfg)
	if err != nil {
		if logCloser != nil {
			_ = logCloser.Close()
		}
		return nil, err
	}
	c.LogCloser = logCloser
	return c, nil
}

// NewCoreWithConfig 使用已加载的配置构建核心依赖，不改动全局 logger
func NewCoreWithConfig(cfg *config.Config) (*Core, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg 不能为空")
	}

	defs, err := content.Load(cfg.Content.Path)
	if err != nil {
		return nil, fmt.Errorf("加载内容失败: %w", err)
	}

	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	c := &Core{
		Cfg:     cfg,
		DB:      db,
		Hub:     eventbus.NewHub(),
		Builder: content.NewBuilder(defs),
	}
	c.Repos.Saves = repository.NewSaveRepository(db.DB)
	c.Services.Saves = service.NewSaveService(c.Repos.Saves, nil)

	slog.Debug("核心依赖就绪",
		"content", contentSource(cfg.Content.Path),
		"actions", len(defs.Actions),
		"upgrades", len(defs.Upgrades),
	)
	return c, nil
}

// Close 关闭核心依赖资源
func (c *Core) Close() error {
	if c == nil {
		return nil
	}
	var dbErr error
	if c.DB != nil {
		dbErr = c.DB.Close()
	}
	if c.LogCloser != nil {
		_ = c.LogCloser.Close()
	}
	return dbErr
}

// RequireWritable 安全模式下拒绝写存档
func (c *Core) RequireWritable() error {
	if c.DB != nil && c.DB.SafeMode {
		return fmt.Errorf("数据库处于安全模式，无法写入存档: %s", c.DB.MigrationError)
	}
	return nil
}

func contentSource(path string) string {
	if path == "" {
		return "builtin"
	}
	return path
}
