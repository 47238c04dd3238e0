package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/yuqie6/IdleForge/internal/bootstrap"
	"github.com/yuqie6/IdleForge/internal/pkg/buildinfo"
	"github.com/yuqie6/IdleForge/internal/pkg/config"
)

// noCore 标记不需要数据库与内容表的命令
const noCore = "no-core"

var (
	cfgFile string
	saveID  string
	core    *bootstrap.Core
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "idle",
		Short: "IdleForge - 放置游戏模拟器",
		Long:  `IdleForge 在本地模拟放置游戏的行动、资源与技能成长，存档保存在 SQLite 中。`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Annotations[noCore] != "" {
				return
			}
			var err error
			core, err = bootstrap.NewCore(cfgFile)
			if err != nil {
				slog.Error("初始化失败", "error", err)
				os.Exit(1)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if core != nil {
				_ = core.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().StringVarP(&saveID, "save", "s", "", "存档 ID（默认最近一次）")

	rootCmd.AddCommand(newCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(actionsCmd())
	rootCmd.AddCommand(skillsCmd())
	rootCmd.AddCommand(startCmd())
	rootCmd.AddCommand(stopCmd())
	rootCmd.AddCommand(purchaseCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(savesCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openGame 载入存档并补算离线时间
func openGame(ctx context.Context) *bootstrap.Runtime {
	rt, err := core.OpenGame(ctx, bootstrap.OpenOptions{SaveID: saveID})
	if err != nil {
		fmt.Printf("❌ 载入存档失败: %v\n", err)
		os.Exit(1)
	}
	if rt.Offline.Steps > 0 {
		fmt.Printf("⏩ 离线补算 %s（%d 步）\n", formatMs(rt.Offline.ElapsedMs), rt.Offline.Steps)
	}
	return rt
}

func mustSave(ctx context.Context, rt *bootstrap.Runtime) {
	if err := rt.Save(ctx); err != nil {
		fmt.Printf("❌ 保存失败: %v\n", err)
		os.Exit(1)
	}
}

// configCmd 配置文件
func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "配置文件管理",
	}

	var path string
	var force bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "写出默认配置",
		Annotations: map[string]string{noCore: "1"},
		Run: func(cmd *cobra.Command, args []string) {
			if path == "" {
				p, err := config.DefaultConfigPath()
				if err != nil {
					fmt.Printf("❌ %v\n", err)
					os.Exit(1)
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				fmt.Printf("⚠️  %s 已存在，使用 --force 覆盖\n", path)
				return
			}
			if err := config.WriteFile(path, config.Default()); err != nil {
				fmt.Printf("❌ 写入配置失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ 已写入 %s\n", path)
		},
	}
	initCmd.Flags().StringVar(&path, "path", "", "输出路径（默认可执行文件旁的 config/config.yaml）")
	initCmd.Flags().BoolVar(&force, "force", false, "覆盖已有文件")

	cmd.AddCommand(initCmd)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "显示版本",
		Annotations: map[string]string{noCore: "1"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(buildinfo.String())
		},
	}
}
