// 本文件用于生成独立的 HTML 系统报告
package report

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"host-monitor/internal/logger"
	"host-monitor/internal/models"
	"host-monitor/internal/sysinfo"
	"host-monitor/internal/systemd"
	"host-monitor/pkg/utils"
)

//go:embed report.html.tmpl
var reportTemplate string

// DefaultServices 报告中检查的服务
var DefaultServices = []string{"nginx", "apache2", "ssh", "mysql", "postgresql", "docker"}

// SnapshotSource 提供系统资源快照，sysinfo.Collector 满足该接口
type SnapshotSource interface {
	Snapshot(ctx context.Context) (sysinfo.Snapshot, error)
}

// ServiceProber 查询服务状态，systemd.Prober 满足该接口
type ServiceProber interface {
	State(ctx context.Context, name string) (systemd.State, error)
}

// ServiceStatus 表示单个服务在报告中的状态
type ServiceStatus struct {
	Name   string
	Active bool
}

// Data 为模板渲染所需的全部数据
type Data struct {
	Snapshot    sysinfo.Snapshot
	GeneratedAt string
	Services    []ServiceStatus
	Alerts      []string
	AlertClass  string
}

var page = template.Must(template.New("report").Funcs(template.FuncMap{
	"bytes":   sysinfo.FormatBytes,
	"count":   sysinfo.FormatCount,
	"tone":    sysinfo.UsageTone,
	"uptime":  sysinfo.FormatUptime,
	"percent": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"width":   func(v float64) template.CSS { return template.CSS(fmt.Sprintf("width: %.1f%%", v)) },
}).Parse(reportTemplate))

// Collect 采集快照与服务状态，服务查询失败按未运行处理
func Collect(ctx context.Context, source SnapshotSource, prober ServiceProber, services []string, thresholds models.Thresholds) (Data, error) {
	snap, err := source.Snapshot(ctx)
	if err != nil {
		return Data{}, fmt.Errorf("采集系统信息失败: %w", err)
	}
	data := Data{
		Snapshot:    snap,
		GeneratedAt: snap.Timestamp.Format("2006-01-02 15:04:05"),
		Services:    make([]ServiceStatus, 0, len(services)),
	}
	for _, name := range services {
		state, err := prober.State(ctx, name)
		if err != nil {
			logger.Warn("服务 %s 状态查询失败: %v", name, err)
		}
		data.Services = append(data.Services, ServiceStatus{Name: name, Active: state == systemd.StateActive})
	}
	data.Alerts, data.AlertClass = buildAlerts(snap, thresholds)
	return data, nil
}

// buildAlerts 列出超过阈值的资源，任一项超过 90% 时使用 danger 样式
func buildAlerts(snap sysinfo.Snapshot, th models.Thresholds) ([]string, string) {
	var alerts []string
	if snap.CPU.Percent > th.CPU {
		alerts = append(alerts, fmt.Sprintf("⚠️ CPU 使用率过高: %.1f%%", snap.CPU.Percent))
	}
	if snap.Memory.Percent > th.Memory {
		alerts = append(alerts, fmt.Sprintf("⚠️ 内存使用率过高: %.1f%%", snap.Memory.Percent))
	}
	if snap.Disk.Percent > th.Disk {
		alerts = append(alerts, fmt.Sprintf("⚠️ 磁盘即将写满: %.1f%%", snap.Disk.Percent))
	}
	if len(alerts) == 0 {
		return nil, ""
	}
	for _, pct := range []float64{snap.CPU.Percent, snap.Memory.Percent, snap.Disk.Percent} {
		if pct > 90 {
			return alerts, "danger"
		}
	}
	return alerts, "alert"
}

// Render 将报告渲染为 HTML
func Render(w io.Writer, data Data) error {
	return page.Execute(w, data)
}

// WriteFile 渲染报告并原子写入 path
func WriteFile(path string, data Data) error {
	var buf bytes.Buffer
	if err := Render(&buf, data); err != nil {
		return fmt.Errorf("渲染报告失败: %w", err)
	}
	if err := utils.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("写入报告失败: %w", err)
	}
	return nil
}
