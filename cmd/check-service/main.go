// 本文件用于单个 systemd 服务的状态检查
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"host-monitor/internal/systemd"
)

var errMissingService = errors.New("缺少服务名")

func main() {
	if err := newRootCommand(systemd.NewProber()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(prober *systemd.Prober) *cobra.Command {
	return &cobra.Command{
		Use:           "check-service <service>",
		Short:         "检查 systemd 服务是否运行",
		Example:       "  check-service nginx",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cmd.UsageString())
				return errMissingService
			}
			checkService(cmd.Context(), cmd.OutOrStdout(), prober, args[0])
			return nil
		},
	}
}

// checkService 输出服务状态，运行中时附带 systemctl status 详情
func checkService(ctx context.Context, out io.Writer, prober *systemd.Prober, name string) bool {
	fmt.Fprintf(out, "\n🔍 正在检查服务 '%s'...\n", name)
	state, err := prober.State(ctx, name)
	if err != nil {
		fmt.Fprintf(out, "❌ 查询失败: %v\n", err)
	}
	if state != systemd.StateActive {
		fmt.Fprintf(out, "❌ 服务 %s 未运行 (INACTIVE)\n\n", name)
		return false
	}
	fmt.Fprintf(out, "✅ 服务 %s 运行中 (ACTIVE)\n\n", name)
	status, err := prober.Status(ctx, name)
	if err != nil {
		fmt.Fprintf(out, "⚠️  获取详细状态失败: %v\n", err)
		return true
	}
	fmt.Fprintln(out, status)
	return true
}
