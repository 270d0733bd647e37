// 本文件用于告警通知的多通道派发
package alert

import (
	"context"
	"time"

	"host-monitor/internal/metrics"
)

const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// Channel 表示一个通知通道，投递失败以 Result 返回而不是中断派发
type Channel interface {
	Name() string
	Deliver(ctx context.Context, n Notification) Result
}

// Result 表示单个通道的投递结果
type Result struct {
	Channel   string
	Delivered bool
	Skipped   bool
	Err       error
}

// Outcome 返回用于统计的结果标签
func (r Result) Outcome() string {
	switch {
	case r.Skipped:
		return OutcomeSkipped
	case r.Delivered && r.Err == nil:
		return OutcomeDelivered
	default:
		return OutcomeFailed
	}
}

func delivered(name string) Result {
	return Result{Channel: name, Delivered: true}
}

func failed(name string, err error) Result {
	return Result{Channel: name, Err: &DeliveryError{Channel: name, Err: err}}
}

// Dispatcher 按固定顺序把告警交给全部已启用通道
type Dispatcher struct {
	channels []Channel
	metrics  *metrics.Collector
	now      func() time.Time
}

// NewDispatcher 创建派发器，通道顺序即派发顺序
func NewDispatcher(collector *metrics.Collector, channels ...Channel) *Dispatcher {
	out := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		if ch != nil {
			out = append(out, ch)
		}
	}
	return &Dispatcher{channels: out, metrics: collector, now: time.Now}
}

// Channels 返回已启用通道名称
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		names = append(names, ch.Name())
	}
	return names
}

// Dispatch 向每个通道投递同一条告警，单个通道失败不影响其他通道
func (d *Dispatcher) Dispatch(ctx context.Context, kind Kind, severity Severity, message string) []Result {
	return d.DispatchNotification(ctx, Notification{
		Kind:     kind,
		Severity: severity,
		Title:    Title(kind),
		Message:  message,
		Time:     d.now(),
	})
}

// DispatchNotification 与 Dispatch 相同，但使用调用方给定的时间与标题
func (d *Dispatcher) DispatchNotification(ctx context.Context, n Notification) []Result {
	if ctx == nil {
		ctx = context.Background()
	}
	if n.Title == "" {
		n.Title = Title(n.Kind)
	}
	results := make([]Result, 0, len(d.channels))
	for _, ch := range d.channels {
		result := d.deliver(ctx, ch, n)
		d.metrics.ObserveDelivery(result.Channel, result.Outcome())
		results = append(results, result)
	}
	return results
}

func (d *Dispatcher) deliver(ctx context.Context, ch Channel, n Notification) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = failed(ch.Name(), &PanicError{Channel: ch.Name(), Value: r})
		}
	}()
	result = ch.Deliver(ctx, n)
	if result.Channel == "" {
		result.Channel = ch.Name()
	}
	return result
}
