// 本文件用于终端实时资源面板的启动入口
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"host-monitor/internal/config"
	"host-monitor/internal/dashboard"
	"host-monitor/internal/sysinfo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var interval int
	cmd := &cobra.Command{
		Use:           "monitor",
		Short:         "终端实时资源监控",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), interval)
		},
	}
	bindFlags(cmd.Flags(), &interval)
	return cmd
}

func bindFlags(fs *pflag.FlagSet, interval *int) {
	fs.IntVarP(interval, "interval", "i", 3, "刷新间隔（秒）")
}

func run(ctx context.Context, out io.Writer, interval int) error {
	if interval <= 0 {
		return fmt.Errorf("刷新间隔必须大于 0: %d", interval)
	}
	probe := sysinfo.NewProbe()
	if err := probe.CheckAvailable(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n🚀 启动监控（刷新间隔: %ds）\n", interval)
	fmt.Fprintf(out, "💡 按 Ctrl+C 停止\n\n")

	screen := dashboard.NewScreen(out)
	opts := dashboard.Options{
		Color:      screen.IsTerminal(),
		Thresholds: config.Default().Thresholds,
	}
	if err := dashboard.Run(ctx, sysinfo.NewCollector(probe), screen, time.Duration(interval)*time.Second, opts); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n\n✋ 监控已停止\n👋 再见!\n\n")
	return nil
}
