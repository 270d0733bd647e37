// 本文件用于告警检查周期的调度
package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"host-monitor/internal/logger"
	"host-monitor/internal/metrics"
	"host-monitor/internal/models"
	"host-monitor/internal/sysinfo"
	"host-monitor/internal/systemd"
)

// ServiceProber 查询服务运行状态，systemd.Prober 满足该接口
type ServiceProber interface {
	State(ctx context.Context, name string) (systemd.State, error)
}

// Options 描述 Monitor 的依赖与参数
type Options struct {
	Thresholds  models.Thresholds
	Services    []string
	Interval    time.Duration
	Cooldown    time.Duration
	HistorySize int
	Source      sysinfo.MetricSource
	Prober      ServiceProber
	Dispatcher  *Dispatcher
	Metrics     *metrics.Collector
	Now         func() time.Time
	// BeforeCycle 在每轮检查开始前调用，用于打印状态表
	BeforeCycle func(ctx context.Context)
	// OnCycle 在每轮检查结束后调用，用于打印摘要
	OnCycle func(fired []Kind)
}

// Monitor 持有全部告警运行态，是唯一的调度者
type Monitor struct {
	thresholds models.Thresholds
	services   []string
	interval   time.Duration
	source     sysinfo.MetricSource
	prober     ServiceProber
	cooldown   *Cooldown
	history    *History
	dispatcher *Dispatcher
	metrics    *metrics.Collector
	now        func() time.Time
	before     func(ctx context.Context)
	onCycle    func(fired []Kind)
}

type metricCheck struct {
	metric   sysinfo.Metric
	kind     Kind
	severity Severity
}

// 检查顺序固定
var metricChecks = []metricCheck{
	{metric: sysinfo.MetricCPU, kind: KindCPU, severity: SeverityWarning},
	{metric: sysinfo.MetricMemory, kind: KindMemory, severity: SeverityWarning},
	{metric: sysinfo.MetricDisk, kind: KindDisk, severity: SeverityCritical},
	{metric: sysinfo.MetricSwap, kind: KindSwap, severity: SeverityWarning},
}

// NewMonitor 创建告警调度器
func NewMonitor(opts Options) (*Monitor, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("指标来源不能为空")
	}
	if opts.Dispatcher == nil {
		return nil, fmt.Errorf("告警派发器不能为空")
	}
	if opts.Interval <= 0 {
		opts.Interval = 60 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Prober == nil && len(opts.Services) > 0 {
		opts.Prober = systemd.NewProber()
	}
	opts.Dispatcher.now = opts.Now
	return &Monitor{
		thresholds: opts.Thresholds,
		services:   append([]string(nil), opts.Services...),
		interval:   opts.Interval,
		source:     opts.Source,
		prober:     opts.Prober,
		cooldown:   NewCooldown(opts.Cooldown),
		history:    NewHistory(opts.HistorySize),
		dispatcher: opts.Dispatcher,
		metrics:    opts.Metrics,
		now:        opts.Now,
		before:     opts.BeforeCycle,
		onCycle:    opts.OnCycle,
	}, nil
}

// RunCycle 依次检查 CPU、内存、磁盘、SWAP 与各服务，返回本轮触发的告警类型
// 单项采集失败只跳过该项
func (m *Monitor) RunCycle(ctx context.Context) []Kind {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	fired := make([]Kind, 0)

	for _, check := range metricChecks {
		sample, err := m.source.Read(ctx, check.metric)
		if err != nil {
			logger.Warn("指标 %s 采集失败，本轮跳过: %v", check.metric, err)
			m.metrics.IncProbeError(string(check.metric))
			continue
		}
		m.metrics.SetReading(string(check.metric), sample.Percent)

		threshold := m.threshold(check.metric)
		exceeded := Exceeded(sample.Percent, threshold)
		if check.metric == sysinfo.MetricSwap {
			exceeded = SwapExceeded(sample.Percent, threshold, sample.Total)
		}
		if !exceeded {
			continue
		}
		if m.fire(ctx, check.kind, check.severity, metricMessage(check.kind, sample.Percent, threshold)) {
			fired = append(fired, check.kind)
		}
	}

	for _, name := range m.services {
		state, err := m.prober.State(ctx, name)
		if err != nil {
			logger.Warn("服务 %s 状态查询失败，本轮跳过: %v", name, err)
			m.metrics.IncProbeError(string(ServiceKind(name)))
			continue
		}
		if !ServiceDown(state) {
			continue
		}
		kind := ServiceKind(name)
		if m.fire(ctx, kind, SeverityCritical, serviceMessage(name)) {
			fired = append(fired, kind)
		}
	}

	m.metrics.ObserveCycle(time.Since(start))
	return fired
}

// fire 经过冷却判断后派发、记录并刷新冷却时间
func (m *Monitor) fire(ctx context.Context, kind Kind, severity Severity, message string) bool {
	now := m.now()
	if !m.cooldown.MayFire(kind, now) {
		logger.Debug("告警 %s 处于冷却期，已抑制", kind)
		m.metrics.IncAlertSuppressed(string(kind))
		return false
	}

	// 投递失败由各通道自行记录，这里不再重复
	m.dispatcher.DispatchNotification(ctx, Notification{
		Kind:     kind,
		Severity: severity,
		Title:    Title(kind),
		Message:  message,
		Time:     now,
	})

	m.history.Record(Record{
		ID:       uuid.NewString(),
		Time:     now,
		Kind:     kind,
		Message:  message,
		Severity: severity,
	})
	m.cooldown.MarkFired(kind, now)
	m.metrics.IncAlertFired(string(kind), string(severity))
	m.metrics.SetHistorySize(m.history.Len())
	return true
}

// Run 循环执行检查直到 ctx 取消
// 取消只在两轮检查之间生效，进行中的派发不会被打断
func (m *Monitor) Run(ctx context.Context) error {
	for {
		cycleCtx := context.WithoutCancel(ctx)
		if m.before != nil {
			m.before(cycleCtx)
		}
		fired := m.RunCycle(cycleCtx)
		if m.onCycle != nil {
			m.onCycle(fired)
		}

		timer := time.NewTimer(m.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (m *Monitor) threshold(metric sysinfo.Metric) float64 {
	switch metric {
	case sysinfo.MetricCPU:
		return m.thresholds.CPU
	case sysinfo.MetricMemory:
		return m.thresholds.Memory
	case sysinfo.MetricDisk:
		return m.thresholds.Disk
	case sysinfo.MetricSwap:
		return m.thresholds.Swap
	default:
		return 100
	}
}

// History 返回告警历史快照
func (m *Monitor) History() []Record {
	return m.history.Snapshot()
}

// Cooldown 返回冷却跟踪器，只读使用
func (m *Monitor) Cooldown() *Cooldown {
	return m.cooldown
}

// Thresholds 返回阈值配置
func (m *Monitor) Thresholds() models.Thresholds {
	return m.thresholds
}

// Interval 返回检查间隔
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Services 返回受监控的服务列表
func (m *Monitor) Services() []string {
	return append([]string(nil), m.services...)
}
