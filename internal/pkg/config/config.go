package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App     AppConfig     `mapstructure:"app" yaml:"app"`
	Sim     SimConfig     `mapstructure:"sim" yaml:"sim"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Content ContentConfig `mapstructure:"content" yaml:"content"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Version  string `mapstructure:"version" yaml:"version"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogPath  string `mapstructure:"log_path" yaml:"log_path"`
}

// SimConfig 模拟参数
type SimConfig struct {
	TickIntervalMs      int   `mapstructure:"tick_interval_ms" yaml:"tick_interval_ms"`
	OfflineStepMs       int   `mapstructure:"offline_step_ms" yaml:"offline_step_ms"`
	MaxOfflineHours     int   `mapstructure:"max_offline_hours" yaml:"max_offline_hours"`
	AutosaveIntervalSec int   `mapstructure:"autosave_interval_sec" yaml:"autosave_interval_sec"`
	Seed                int64 `mapstructure:"seed" yaml:"seed"` // 0 表示按时间播种
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// ContentConfig 内容表配置
type ContentConfig struct {
	Path  string `mapstructure:"path" yaml:"path"` // 为空时使用内置内容
	Watch bool   `mapstructure:"watch" yaml:"watch"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量，如 IDLE_SIM_TICK_INTERVAL_MS
	v.SetEnvPrefix("IDLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)
	if cfg.Content.Path != "" {
		cfg.Content.Path = resolvePath(cfg.Content.Path)
	}
	if cfg.App.LogPath != "" {
		cfg.App.LogPath = resolvePath(cfg.App.LogPath)
	}

	return &cfg, nil
}

// Default 仅含默认值的配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "idleforge")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_path", "")

	// Sim
	v.SetDefault("sim.tick_interval_ms", 100)
	v.SetDefault("sim.offline_step_ms", 1000)
	v.SetDefault("sim.max_offline_hours", 12)
	v.SetDefault("sim.autosave_interval_sec", 30)
	v.SetDefault("sim.seed", 0)

	// Storage
	v.SetDefault("storage.db_path", "./data/idleforge.db")

	// Content
	v.SetDefault("content.path", "")
	v.SetDefault("content.watch", false)

	// Server
	v.SetDefault("server.listen_addr", "127.0.0.1:8710")
}

// resolvePath 相对路径按可执行文件目录解析
func resolvePath(path string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}

	exe, err := os.Executable()
	if err != nil {
		return path
	}

	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, path)
}

// LoggerOptions 日志配置
type LoggerOptions struct {
	Level     string
	Path      string // 非空时同时写入文件
	Component string // cli / server
}

// ParseLevel 解析日志级别，未知值按 info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger 设置默认 logger，返回的 closer 用于关闭日志文件
func SetupLogger(opts LoggerOptions) (io.Closer, error) {
	var w io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("创建日志目录失败: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		w = io.MultiWriter(os.Stdout, f)
		closer = f
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	})
	logger := slog.New(handler)
	if opts.Component != "" {
		logger = logger.With("component", opts.Component)
	}
	slog.SetDefault(logger)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
