// 本文件用于告警守护进程的 Prometheus 指标 统一收口便于监控接入

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hostmon"

// Collector 持有独立注册表及全部告警指标
type Collector struct {
	registry *prometheus.Registry

	cyclesTotal      prometheus.Counter
	cycleDuration    prometheus.Histogram
	alertsFiredTotal *prometheus.CounterVec
	alertsSuppressed *prometheus.CounterVec
	deliveriesTotal  *prometheus.CounterVec
	probeErrorsTotal *prometheus.CounterVec
	lastReading      *prometheus.GaugeVec
	historySize      prometheus.Gauge
}

var globalCollector = NewCollector()

// Global 返回进程级全局指标收集器
func Global() *Collector {
	return globalCollector
}

// NewCollector 创建并注册全部指标
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		cyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_cycles_total",
			Help:      "Number of completed check cycles",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_cycle_duration_seconds",
			Help:      "Duration of a check cycle including notification delivery",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		}),
		alertsFiredTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_fired_total",
			Help:      "Alerts that passed the cooldown gate and were dispatched",
		}, []string{"kind", "severity"}),
		alertsSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_suppressed_total",
			Help:      "Alert conditions suppressed by the cooldown window",
		}, []string{"kind"}),
		deliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_deliveries_total",
			Help:      "Notification delivery attempts per channel and outcome",
		}, []string{"channel", "outcome"}), // outcome: delivered / failed / skipped
		probeErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probe_errors_total",
			Help:      "Metric or service probes that failed and were skipped",
		}, []string{"metric"}),
		lastReading: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_reading_percent",
			Help:      "Last observed usage percentage per metric",
		}, []string{"metric"}),
		historySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alert_history_size",
			Help:      "Number of alerts currently retained in the in-memory history",
		}),
	}
	c.registry.MustRegister(
		c.cyclesTotal, c.cycleDuration,
		c.alertsFiredTotal, c.alertsSuppressed,
		c.deliveriesTotal, c.probeErrorsTotal,
		c.lastReading, c.historySize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveCycle 记录一轮检查完成及其耗时
func (c *Collector) ObserveCycle(d time.Duration) {
	if c == nil {
		return
	}
	c.cyclesTotal.Inc()
	c.cycleDuration.Observe(d.Seconds())
}

// IncAlertFired 记录一次实际派发的告警
func (c *Collector) IncAlertFired(kind, severity string) {
	if c == nil {
		return
	}
	c.alertsFiredTotal.WithLabelValues(kind, severity).Inc()
}

// IncAlertSuppressed 记录一次被冷却窗口抑制的告警
func (c *Collector) IncAlertSuppressed(kind string) {
	if c == nil {
		return
	}
	c.alertsSuppressed.WithLabelValues(kind).Inc()
}

// ObserveDelivery 记录单个通道的投递结果
func (c *Collector) ObserveDelivery(channel, outcome string) {
	if c == nil {
		return
	}
	c.deliveriesTotal.WithLabelValues(channel, outcome).Inc()
}

// IncProbeError 记录一次采集失败
func (c *Collector) IncProbeError(metric string) {
	if c == nil {
		return
	}
	c.probeErrorsTotal.WithLabelValues(metric).Inc()
}

// SetReading 更新指标的最新读数
func (c *Collector) SetReading(metric string, pct float64) {
	if c == nil {
		return
	}
	c.lastReading.WithLabelValues(metric).Set(pct)
}

// SetHistorySize 更新历史记录条数
func (c *Collector) SetHistorySize(n int) {
	if c == nil {
		return
	}
	c.historySize.Set(float64(n))
}

// Registry 返回底层注册表
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 返回 /metrics 处理器
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
