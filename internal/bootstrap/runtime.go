package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuqie6/IdleForge/internal/content"
	"github.com/yuqie6/IdleForge/internal/eventbus"
	"github.com/yuqie6/IdleForge/internal/game"
	"github.com/yuqie6/IdleForge/internal/service"
)

// OpenOptions 打开存档的参数；SaveID 为空时取最近的存档，没有存档则按 Name/Class 新建
type OpenOptions struct {
	SaveID string
	Name   string
	Class  string
	// Fresh 忽略已有存档，直接新建角色
	Fresh bool
}

// Runtime 一局正在运行的游戏
type Runtime struct {
	*Core
	Game    *service.GameService
	Runner  *service.TickRunner
	Offline service.SimulationReport
}

// OpenGame 载入或新建角色，补算离线时间，并准备好 tick 循环（不启动）
func (c *Core) OpenGame(ctx context.Context, opts OpenOptions) (*Runtime, error) {
	ch, err := c.loadCharacter(ctx, opts)
	if err != nil {
		return nil, err
	}

	seed := c.Cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := service.NewGameService(ch, service.Options{
		RNG:       game.NewRNG(seed),
		Publisher: c.Hub,
	})
	g.ApplyAllSkillBonuses()

	rt := &Runtime{
		Core:   c,
		Game:   g,
		Runner: service.NewTickRunner(g, c.TickInterval()),
	}
	rt.Offline = g.CatchUp(c.OfflineStep(), c.MaxOffline())
	if rt.Offline.Steps > 0 {
		slog.Info("离线补算完成",
			"elapsed_ms", rt.Offline.ElapsedMs,
			"steps", rt.Offline.Steps,
			"capped", rt.Offline.Capped,
		)
	}
	g.CheckUnlocks()
	c.Hub.Publish(eventbus.Event{
		Type: eventbus.GameLoaded,
		Data: map[string]any{"characterId": ch.ID, "name": ch.Name, "class": ch.Class},
	})
	return rt, nil
}

func (c *Core) loadCharacter(ctx context.Context, opts OpenOptions) (*game.Character, error) {
	if opts.Fresh {
		return c.Builder.NewCharacter(opts.Name, opts.Class)
	}

	id := opts.SaveID
	if id == "" {
		latest, err := c.Repos.Saves.Latest(ctx)
		if err != nil {
			return nil, fmt.Errorf("查询最近存档失败: %w", err)
		}
		if latest == nil {
			slog.Info("没有存档，创建新角色", "name", opts.Name, "class", opts.Class)
			return c.Builder.NewCharacter(opts.Name, opts.Class)
		}
		id = latest.ID
	}

	ch, err := c.Services.Saves.Load(ctx, id, c.Builder)
	if err != nil {
		return nil, err
	}
	slog.Info("存档已载入", "id", ch.ID, "name", ch.Name)
	return ch, nil
}

// Save 把当前角色写入存档；调用方需保证不与 tick 并发（通常在 Runner.Do 内调用）
func (rt *Runtime) Save(ctx context.Context) error {
	if err := rt.RequireWritable(); err != nil {
		return err
	}
	slot, err := rt.Services.Saves.Save(ctx, rt.Game.Character())
	if err != nil {
		return err
	}
	rt.Hub.Publish(eventbus.Event{
		Type:      eventbus.GameSaved,
		Timestamp: slot.SavedAt,
		Data:      map[string]any{"saveId": slot.ID},
	})
	return nil
}

// TickInterval 配置的 tick 间隔
func (c *Core) TickInterval() time.Duration {
	return time.Duration(c.Cfg.Sim.TickIntervalMs) * time.Millisecond
}

// OfflineStep 离线补算步长
func (c *Core) OfflineStep() time.Duration {
	if c.Cfg.Sim.OfflineStepMs <= 0 {
		return service.DefaultOfflineStep
	}
	return time.Duration(c.Cfg.Sim.OfflineStepMs) * time.Millisecond
}

// MaxOffline 离线补算上限，0 表示不限
func (c *Core) MaxOffline() time.Duration {
	return time.Duration(c.Cfg.Sim.MaxOfflineHours) * time.Hour
}

// AutosaveInterval 自动存档间隔，0 表示关闭
func (c *Core) AutosaveInterval() time.Duration {
	return time.Duration(c.Cfg.Sim.AutosaveIntervalSec) * time.Second
}

// WatchContent 内容文件热加载；新内容只影响之后构建的角色。未配置文件或未开启时返回 nil
func (c *Core) WatchContent() (*content.Watcher, error) {
	if !c.Cfg.Content.Watch || c.Cfg.Content.Path == "" {
		return nil, nil
	}
	return content.NewWatcher(c.Cfg.Content.Path, c.Builder, func(defs *content.Definitions) {
		c.Hub.Publish(eventbus.Event{
			Type: eventbus.ContentReloaded,
			Data: map[string]any{
				"path":     c.Cfg.Content.Path,
				"actions":  len(defs.Actions),
				"upgrades": len(defs.Upgrades),
			},
		})
	})
}
