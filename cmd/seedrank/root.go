// seedrank 对模糊测试候选输入做特征抽取、打标签、训练排序模型并输出排序结果。
//
// Usage:
//
//	seedrank featurize --candidates <dir> [--exec <csv>] --out <csv> [--cands-out <csv>]
//	seedrank train --input <csv> [--model-out <path>] [--trees N] [--folds K] [--seed S]
//	seedrank score --model <path> --candidates <csv> --out <csv>
//	seedrank rank --input <csv> --candidates <csv> --out <csv> [--model-out <path>]
//	seedrank publish --ranked <csv> --redis <addr> --key <key> [--top N]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rushteam/seedrank/config"
	_ "github.com/rushteam/seedrank/config/builders"
	"github.com/rushteam/seedrank/pkg/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

// globalOptions 根命令的持久化参数，PersistentPreRunE 之后 cfg 可用
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "seedrank",
		Short: "Rank fuzzing seed candidates by how likely they are to be interesting",
		Long: "seedrank extracts byte-level features from candidate inputs, labels them from\n" +
			"execution metadata, trains a random forest and ranks new candidates by score.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Config file (YAML or JSON)")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	pf.StringVar(&g.logFormat, "log-format", "", "Log format: text or json (overrides config)")

	rootCmd.AddCommand(newFeaturizeCmd(g))
	rootCmd.AddCommand(newTrainCmd(g))
	rootCmd.AddCommand(newScoreCmd(g))
	rootCmd.AddCommand(newRankCmd(g))
	rootCmd.AddCommand(newPublishCmd(g))
	return rootCmd
}

// setup 加载配置并初始化日志，命令行参数优先于配置文件
func (g *globalOptions) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if g.configPath != "" {
		var err error
		if cfg, err = config.Load(g.configPath); err != nil {
			return err
		}
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	if f := cfg.Log.Format; f != "" && f != "text" && f != "json" {
		return fmt.Errorf("--log-format must be text or json, got %q", f)
	}
	logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())

	g.cfg = cfg
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
