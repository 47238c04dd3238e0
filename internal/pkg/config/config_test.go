package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Sim.TickIntervalMs != 100 || cfg.Sim.OfflineStepMs != 1000 || cfg.Sim.MaxOfflineHours != 12 {
		t.Fatalf("sim=%+v", cfg.Sim)
	}
	if cfg.Server.ListenAddr == "" || cfg.Storage.DBPath == "" {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestWriteFileThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.yaml")
	cfg := Default()
	cfg.Sim.TickIntervalMs = 250
	cfg.Sim.Seed = 7
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "idle.db")
	cfg.Content.Watch = true

	if err := WriteFile(path, cfg); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Sim.TickIntervalMs != 250 || got.Sim.Seed != 7 || !got.Content.Watch {
		t.Fatalf("sim=%+v content=%+v", got.Sim, got.Content)
	}
	if got.Storage.DBPath != cfg.Storage.DBPath {
		t.Fatalf("db path=%q, want absolute path kept", got.Storage.DBPath)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("IDLE_SIM_TICK_INTERVAL_MS", "40")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteFile(path, Default()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Sim.TickIntervalMs != 40 {
		t.Fatalf("tick=%d, want env override 40", got.Sim.TickIntervalMs)
	}
}

func TestWriteFileValidation(t *testing.T) {
	if err := WriteFile("", Default()); err == nil {
		t.Fatalf("empty path should fail")
	}
	if err := WriteFile("x.yaml", nil); err == nil {
		t.Fatalf("nil cfg should fail")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q)=%v, want %v", in, got, want)
		}
	}
}

func TestSetupLoggerWithFile(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	path := filepath.Join(t.TempDir(), "logs", "idle.log")
	closer, err := SetupLogger(LoggerOptions{Level: "debug", Path: path, Component: "test"})
	if err != nil {
		t.Fatalf("SetupLogger: %v", err)
	}
	defer closer.Close()
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("debug level not enabled")
	}
}
