// 本文件用于批量检查 systemd 服务状态
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"host-monitor/internal/systemd"
)

var errMissingServices = errors.New("缺少服务名，或使用 --all")

// Summary 汇总一次批量检查的结果
type Summary struct {
	Active   int
	Inactive int
}

func main() {
	if err := newRootCommand(systemd.NewProber()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(prober *systemd.Prober) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "check-multiple <service>... | --all",
		Short: "批量检查 systemd 服务状态",
		Example: "  check-multiple nginx ssh mysql\n" +
			"  check-multiple --all",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			services := args
			switch {
			case all:
				services = systemd.DefaultServices
				fmt.Fprintln(out, "🔍 正在检查全部默认服务...")
			case len(args) == 0:
				fmt.Fprintln(out, cmd.UsageString())
				return errMissingServices
			default:
				fmt.Fprintf(out, "🔍 正在检查 %d 个服务...\n", len(services))
			}
			checkServices(cmd.Context(), out, prober, services)
			return nil
		},
	}
	bindFlags(cmd.Flags(), &all)
	return cmd
}

func bindFlags(fs *pflag.FlagSet, all *bool) {
	fs.BoolVar(all, "all", false, "检查默认服务列表")
}

// checkServices 以表格输出每个服务的运行状态与开机自启状态
func checkServices(ctx context.Context, out io.Writer, prober *systemd.Prober, services []string) Summary {
	bar := strings.Repeat("=", 60)
	fmt.Fprintf(out, "\n%s\n           🔍 服务状态检查\n%s\n\n", bar, bar)
	fmt.Fprintf(out, "%-15s %-15s %-15s\n", "服务", "状态", "开机自启")
	fmt.Fprintln(out, strings.Repeat("-", 60))

	var summary Summary
	for _, name := range services {
		// 查询失败时按未运行与未启用处理
		state, _ := prober.State(ctx, name)
		enabled, _ := prober.Enabled(ctx, name)

		status := "❌ 未运行"
		if state == systemd.StateActive {
			status = "✅ 运行中"
			summary.Active++
		} else {
			summary.Inactive++
		}
		boot := "🔴 否"
		if enabled == systemd.EnableEnabled {
			boot = "🟢 是"
		}
		fmt.Fprintf(out, "%-15s %-15s %-15s\n", name, status, boot)
	}

	fmt.Fprintln(out, strings.Repeat("-", 60))
	fmt.Fprintf(out, "\n📊 汇总: %d 个运行中 | %d 个未运行\n\n%s\n\n", summary.Active, summary.Inactive, bar)
	return summary
}
