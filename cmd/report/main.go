// 本文件用于 HTML 系统报告的生成入口
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"host-monitor/internal/config"
	"host-monitor/internal/logger"
	"host-monitor/internal/models"
	"host-monitor/internal/oss"
	"host-monitor/internal/report"
	"host-monitor/internal/sysinfo"
	"host-monitor/internal/systemd"
)

const defaultOutput = "report.html"

type options struct {
	output     string
	configPath string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "report",
		Short:         "生成 HTML 系统报告",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	bindFlags(cmd.Flags(), opts)
	return cmd
}

func bindFlags(fs *pflag.FlagSet, opts *options) {
	fs.StringVarP(&opts.output, "output", "o", defaultOutput, "报告输出路径")
	fs.StringVarP(&opts.configPath, "config", "c", "", "可选的配置文件，用于阈值与 OSS 上传")
}

func run(ctx context.Context, out io.Writer, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := loadConfig(out, opts.configPath)

	probe := sysinfo.NewProbe()
	if err := probe.CheckAvailable(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n🔍 正在采集系统信息...\n")
	data, err := report.Collect(ctx, sysinfo.NewCollector(probe), systemd.NewProber(), report.DefaultServices, cfg.Thresholds)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "📊 正在生成 HTML 报告...\n")
	if err := report.WriteFile(opts.output, data); err != nil {
		return err
	}
	abs, err := filepath.Abs(opts.output)
	if err != nil {
		abs = opts.output
	}
	fmt.Fprintf(out, "✅ 报告已生成: %s\n", opts.output)
	fmt.Fprintf(out, "🌐 在浏览器中打开: file://%s\n", abs)

	if cfg.OSS.Enabled {
		publish(ctx, out, cfg.OSS, opts.output)
	}
	return nil
}

// loadConfig 未指定或文件不存在时使用默认配置，不会生成示例文件
func loadConfig(out io.Writer, path string) *models.Config {
	if path == "" {
		return config.Default()
	}
	if !config.Exists(path) {
		fmt.Fprintf(out, "⚠️  配置文件 %s 不存在，使用默认配置\n", path)
		return config.Default()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(out, "⚠️  %v，使用默认配置\n", err)
	}
	return cfg
}

// publish 上传失败只提示，本地报告已经写出
func publish(ctx context.Context, out io.Writer, cfg models.OSSConfig, path string) {
	publisher, err := oss.NewPublisher(cfg)
	if err != nil {
		logger.Error("初始化 OSS 上传失败: %v", err)
		fmt.Fprintf(out, "⚠️  OSS 上传未执行: %v\n", err)
		return
	}
	url, err := publisher.Upload(ctx, path)
	if err != nil {
		logger.Error("上传报告失败: %v", err)
		fmt.Fprintf(out, "⚠️  OSS 上传失败: %v\n", err)
		return
	}
	fmt.Fprintf(out, "☁️  报告已上传: %s\n", url)
}
