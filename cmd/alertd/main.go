// 本文件用于告警守护进程的启动入口
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"host-monitor/internal/alert"
	"host-monitor/internal/api"
	"host-monitor/internal/config"
	"host-monitor/internal/logger"
	"host-monitor/internal/metrics"
	"host-monitor/internal/models"
	"host-monitor/internal/sysinfo"
	"host-monitor/internal/systemd"
)

type options struct {
	configPath string
	testMode   bool
}

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
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "alertd",
		Short:         "主机资源与服务告警",
		Long:          "周期性检查 CPU、内存、磁盘、SWAP 与 systemd 服务，超过阈值时通过控制台、日志、邮件和 Webhook 告警。",
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
	fs.StringVarP(&opts.configPath, "config", "c", "alerts.json", "配置文件路径，支持 json/yaml/toml")
	fs.BoolVar(&opts.testMode, "test", false, "测试模式：只执行一轮检查")
}

func run(ctx context.Context, out io.Writer, opts *options) error {
	cfg := loadConfig(out, opts.configPath)
	if err := logger.InitLogger(cfg.LogLevel, ""); err != nil {
		fmt.Fprintf(out, "⚠️  %v，使用 info 级别\n", err)
	}
	defer logger.Close()

	probe := sysinfo.NewProbe()
	if err := probe.CheckAvailable(ctx); err != nil {
		return err
	}

	collector := metrics.Global()
	dispatcher, alertLog := alert.NewDispatcherFromConfig(cfg, out, sysinfo.Hostname(), collector)
	logger.Info("告警通道: %s", strings.Join(dispatcher.Channels(), ", "))

	interval := time.Duration(cfg.CheckInterval) * time.Second
	var monitor *alert.Monitor
	monitor, err := alert.NewMonitor(alert.Options{
		Thresholds: cfg.Thresholds,
		Services:   cfg.Services,
		Interval:   interval,
		Cooldown:   time.Duration(cfg.AlertCooldown) * time.Second,
		Source:     probe,
		Prober:     systemd.NewProber(),
		Dispatcher: dispatcher,
		Metrics:    collector,
		BeforeCycle: func(ctx context.Context) {
			alert.RenderStatus(out, monitor.Status(ctx))
		},
		OnCycle: func(fired []alert.Kind) {
			printSummary(out, fired)
			fmt.Fprintf(out, "\n⏳ %d 秒后进行下一轮检查...\n", cfg.CheckInterval)
		},
	})
	if err != nil {
		return err
	}

	if opts.testMode {
		fmt.Fprintf(out, "\n🧪 测试模式 - 单次检查\n")
		alert.RenderStatus(out, monitor.Status(ctx))
		printSummary(out, monitor.RunCycle(ctx))
		return nil
	}

	printBanner(out, cfg, alertLog.Path())
	server := startStatusAPI(cfg.StatusBind, monitor, alertLog, collector)
	if err := monitor.Run(ctx); err != nil {
		logger.Error("告警循环异常退出: %v", err)
	}

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("关闭状态 API 失败: %v", err)
		}
	}
	fmt.Fprintf(out, "\n\n✋ 告警系统已停止\n")
	fmt.Fprintf(out, "📊 本次会话告警总数: %d\n", len(monitor.History()))
	fmt.Fprintf(out, "👋 再见!\n\n")
	return nil
}

// loadConfig 加载配置，任何加载错误都只提示并回退到默认配置
func loadConfig(out io.Writer, path string) *models.Config {
	existed := config.Exists(path)
	cfg, err := config.LoadConfig(path)
	switch {
	case err != nil:
		fmt.Fprintf(out, "⚠️  %v，使用默认配置\n", err)
	case !existed:
		fmt.Fprintf(out, "📝 配置文件不存在，已生成示例: %s\n", path)
	}
	return cfg
}

func printBanner(out io.Writer, cfg *models.Config, logPath string) {
	fmt.Fprintf(out, "\n🚀 告警系统启动\n")
	fmt.Fprintf(out, "⏱️  检查间隔: %d 秒\n", cfg.CheckInterval)
	fmt.Fprintf(out, "📧 邮件: %s\n", enabledLabel(cfg.Email.Enabled))
	fmt.Fprintf(out, "📡 Webhook: %s\n", enabledLabel(cfg.Webhook.Enabled))
	fmt.Fprintf(out, "📝 日志文件: %s\n", logPath)
	if cfg.StatusBind != "" {
		fmt.Fprintf(out, "🌐 状态 API: %s\n", cfg.StatusBind)
	}
	fmt.Fprintf(out, "\n💡 按 Ctrl+C 停止\n\n")
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "已启用"
	}
	return "未启用"
}

func printSummary(out io.Writer, fired []alert.Kind) {
	if len(fired) == 0 {
		fmt.Fprintf(out, "\n✅ 无告警 - 系统正常\n")
		return
	}
	kinds := make([]string, 0, len(fired))
	for _, kind := range fired {
		kinds = append(kinds, string(kind))
	}
	fmt.Fprintf(out, "\n🚨 触发 %d 条告警: %s\n", len(fired), strings.Join(kinds, ", "))
}

// startStatusAPI 在配置了监听地址时启动只读状态 API，失败不影响告警循环
func startStatusAPI(bind string, monitor *alert.Monitor, alertLog *alert.AlertLog, collector *metrics.Collector) *api.Server {
	if strings.TrimSpace(bind) == "" {
		return nil
	}
	server := api.NewServer(bind, monitor, alertLog, collector)
	if err := server.Start(); err != nil {
		logger.Error("启动状态 API 失败: %v", err)
		return nil
	}
	return server
}
