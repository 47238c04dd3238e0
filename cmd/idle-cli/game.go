package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuqie6/IdleForge/internal/bootstrap"
	"github.com/yuqie6/IdleForge/internal/dto"
)

// newCmd 新建角色
func newCmd() *cobra.Command {
	var name, class string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "创建新角色并保存",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			rt, err := core.OpenGame(ctx, bootstrap.OpenOptions{Name: name, Class: class, Fresh: true})
			if err != nil {
				fmt.Printf("❌ 创建角色失败: %v\n", err)
				os.Exit(1)
			}
			mustSave(ctx, rt)
			ch := rt.Game.Character()
			fmt.Printf("✅ 已创建 %s（%s），存档 ID: %s\n", ch.Name, ch.Class, ch.ID)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "Adventurer", "角色名")
	cmd.Flags().StringVar(&class, "class", "", "职业（默认第一个）")
	return cmd
}

// statusCmd 角色概况
func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "查看角色状态（会先补算离线时间）",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			rt := openGame(ctx)
			printCharacter(dto.NewCharacterDTO(rt.Game.Character()))
			mustSave(ctx, rt)
		},
	}
}

// actionsCmd 行动与升级列表
func actionsCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "列出行动与升级",
		Run: func(cmd *cobra.Command, args []string) {
			rt := openGame(context.Background())
			ch := rt.Game.Character()

			fmt.Println("🛠  行动")
			printActions(dto.NewActionDTOs(ch, false), all)
			fmt.Println("\n🏗  升级")
			printActions(dto.NewActionDTOs(ch, true), all)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "包含未解锁的条目")
	return cmd
}

// skillsCmd 技能列表
func skillsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skills",
		Short: "查看技能等级",
		Run: func(cmd *cobra.Command, args []string) {
			rt := openGame(context.Background())
			skills := dto.NewCharacterDTO(rt.Game.Character()).Skills
			fmt.Println("🎯 技能")
			for _, s := range skills {
				fmt.Printf("  • %-12s Lv.%-3d %s %.0f/%.0f\n", s.Name, s.Level, progressBar(s.Progress, 20), s.XP, s.XPToNext)
			}
		},
	}
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <action>",
		Short: "开始行动",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			rt := openGame(ctx)
			a := rt.Game.Character().Action(args[0])
			if a == nil || a.IsUpgrade {
				fmt.Printf("❌ 行动不存在: %s\n", args[0])
				os.Exit(1)
			}
			if !rt.Game.StartAction(a.ID) {
				fmt.Printf("❌ 无法开始 %s\n", a.Name)
				if missing := a.MissingRequirements(rt.Game.Character().Snapshot()); len(missing) > 0 && !a.Unlocked {
					fmt.Printf("   未满足: %s\n", strings.Join(missing, ", "))
				}
				os.Exit(1)
			}
			mustSave(ctx, rt)
			fmt.Printf("▶️  %s\n", a.StartMessage())
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "停止当前行动",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			rt := openGame(ctx)
			if !rt.Game.StopAction() {
				fmt.Println("ℹ️  当前没有进行中的行动")
				return
			}
			mustSave(ctx, rt)
			fmt.Println("⏹  已停止")
		},
	}
}

func purchaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purchase <upgrade>",
		Short: "购买升级",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			rt := openGame(ctx)
			if !rt.Game.PurchaseUpgrade(args[0]) {
				fmt.Printf("❌ 无法购买升级 %s（不存在、未解锁、已购买或费用不足）\n", args[0])
				os.Exit(1)
			}
			mustSave(ctx, rt)
			fmt.Printf("🏗  开始建造 %s\n", args[0])
		},
	}
}

// simulateCmd 快进
func simulateCmd() *cobra.Command {
	var duration, step time.Duration

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "快进指定时长并保存",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			rt := openGame(ctx)
			if step <= 0 {
				step = rt.OfflineStep()
			}

			rep := rt.Game.Simulate(duration, step, 0)
			fmt.Printf("⏩ 模拟 %s，共 %d 步\n", formatMs(rep.ElapsedMs), rep.Steps)
			for id, n := range rep.Completions {
				fmt.Printf("  • %s 完成 %d 次\n", id, n)
			}
			for _, lu := range rep.LevelUps {
				fmt.Printf("  🎉 %s 升到 %d 级\n", lu.SkillID, lu.To)
			}
			for _, id := range rep.Unlocked {
				fmt.Printf("  🔓 解锁 %s\n", id)
			}
			if rep.Failures > 0 {
				fmt.Printf("  ⚠️  %d 次因资源不足中断\n", rep.Failures)
			}
			mustSave(ctx, rt)
			fmt.Println()
			printCharacter(dto.NewCharacterDTO(rt.Game.Character()))
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", time.Hour, "快进时长")
	cmd.Flags().DurationVar(&step, "step", 0, "步长（默认取配置）")
	return cmd
}

// savesCmd 存档管理
func savesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saves",
		Short: "存档管理",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "列出存档",
		Run: func(cmd *cobra.Command, args []string) {
			slots, err := core.Services.Saves.List(context.Background())
			if err != nil {
				fmt.Printf("❌ 查询存档失败: %v\n", err)
				os.Exit(1)
			}
			if len(slots) == 0 {
				fmt.Println("📚 还没有存档，使用 'idle new' 创建角色")
				return
			}
			for _, s := range slots {
				d := dto.NewSaveSlotDTO(s)
				fmt.Printf("  • %s  %-12s %-10s 总等级 %-4d %s\n",
					d.ID, d.CharacterName, d.Class, d.TotalLevel, time.UnixMilli(d.SavedAt).Format("2006-01-02 15:04"))
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "删除存档",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := core.Services.Saves.Delete(context.Background(), args[0]); err != nil {
				fmt.Printf("❌ 删除失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("🗑  已删除 %s\n", args[0])
		},
	})
	return cmd
}

func printCharacter(ch dto.CharacterDTO) {
	fmt.Printf("🧙 %s（%s）\n", ch.Name, ch.Class)
	fmt.Println("═══════════════════════════════════════")
	if ch.ActiveAction != "" {
		fmt.Printf("▶️  进行中: %s\n", ch.ActiveAction)
	}
	fmt.Println("\n❤️  属性")
	for _, r := range ch.Stats {
		fmt.Printf("  • %-10s %s %.1f/%.0f (%+.2f/s)\n", r.Name, progressBar(r.Ratio*100, 20), r.Current, r.Max, r.GainRate)
	}
	fmt.Println("\n💰 货币")
	for _, r := range ch.Currencies {
		fmt.Printf("  • %-10s %.1f/%.0f\n", r.Name, r.Current, r.Max)
	}
	fmt.Println("\n🎯 技能")
	for _, s := range ch.Skills {
		fmt.Printf("  • %-12s Lv.%d\n", s.Name, s.Level)
	}
	fmt.Println("═══════════════════════════════════════")
}

func printActions(actions []dto.ActionDTO, all bool) {
	for _, a := range actions {
		if !a.Unlocked && !all {
			continue
		}
		mark := "  "
		switch {
		case a.Active:
			mark = "▶️"
		case a.Purchased:
			mark = "✅"
		case !a.Unlocked:
			mark = "🔒"
		}
		fmt.Printf("  %s %-14s %-10s %5.1fs  完成 %d 次\n", mark, a.ID, a.Category, a.DurationMs/1000, a.Completions)
		if len(a.Missing) > 0 {
			fmt.Printf("       需要: %s\n", strings.Join(a.Missing, ", "))
		}
	}
}

func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func formatMs(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Second).String()
}
