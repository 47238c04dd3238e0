package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yuqie6/IdleForge/internal/bootstrap"
	"github.com/yuqie6/IdleForge/internal/httpapi"
	"github.com/yuqie6/IdleForge/internal/pkg/config"
	"github.com/yuqie6/IdleForge/internal/service"
)

func main() {
	cfgPath := flag.String("config", "", "配置文件路径")
	saveID := flag.String("save", "", "存档 ID（默认最近一次）")
	name := flag.String("name", "Adventurer", "没有存档时新角色的名字")
	class := flag.String("class", "", "没有存档时新角色的职业")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *cfgPath == "" {
		if p, err := config.DefaultConfigPath(); err == nil {
			if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
				_ = config.WriteFile(p, config.Default())
			}
			*cfgPath = p
		}
	}

	core, err := bootstrap.NewCore(*cfgPath)
	if err != nil {
		slog.Error("初始化失败", "error", err)
		os.Exit(1)
	}
	defer core.Close()

	rt, err := core.OpenGame(ctx, bootstrap.OpenOptions{SaveID: *saveID, Name: *name, Class: *class})
	if err != nil {
		slog.Error("载入存档失败", "error", err)
		os.Exit(1)
	}
	slog.Info("IdleForge 启动中...", "name", rt.Cfg.App.Name, "version", rt.Cfg.App.Version, "character", rt.Game.Character().Name)

	if w, err := core.WatchContent(); err != nil {
		slog.Warn("内容热加载未启用", "error", err)
	} else if w != nil {
		go w.Run(ctx)
	}

	rt.Runner.OnTick(logMilestones)
	runnerDone := make(chan struct{})
	go func() {
		defer close(runnerDone)
		_ = rt.Runner.Run(ctx)
	}()

	if interval := rt.AutosaveInterval(); interval > 0 {
		go autosave(ctx, rt, interval)
	}

	srv, err := httpapi.Start(ctx, rt, httpapi.Options{ListenAddr: rt.Cfg.Server.ListenAddr})
	if err != nil {
		slog.Error("启动 HTTP API 失败", "error", err)
		cancel()
	}

	<-ctx.Done()
	slog.Info("正在关闭...")

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		shutdownCancel()
	}
	<-runnerDone

	// 循环已退出，直接在当前 goroutine 上保存
	saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rt.Save(saveCtx); err != nil {
		slog.Error("退出前保存失败", "error", err)
	}
	saveCancel()
	slog.Info("IdleForge 已退出")
}

// autosave 定期在 tick goroutine 上保存
func autosave(ctx context.Context, rt *bootstrap.Runtime, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var saveErr error
			err := rt.Runner.Do(ctx, func(*service.GameService) { saveErr = rt.Save(ctx) })
			if err != nil {
				return
			}
			if saveErr != nil {
				slog.Warn("自动保存失败", "error", saveErr)
			}
		}
	}
}

// logMilestones 升级与解锁写入日志
func logMilestones(rep service.TickReport) {
	for _, lu := range rep.LevelUps {
		slog.Info("技能升级", "skill", lu.SkillID, "level", lu.To)
	}
	for _, id := range rep.Unlocked {
		slog.Info("行动解锁", "action", id)
	}
	if rep.RestStarted {
		slog.Info("体力不足，自动休息")
	}
	if rep.Resumed != "" {
		slog.Info("休息结束，恢复行动", "action", rep.Resumed)
	}
}
