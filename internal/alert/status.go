package alert

import (
	"context"
	"fmt"
	"io"
	"strings"

	"host-monitor/internal/sysinfo"
)

// StatusLine 表示一项指标的当前读数与阈值
type StatusLine struct {
	Metric    sysinfo.Metric `json:"metric"`
	Label     string         `json:"label"`
	Percent   float64        `json:"percent"`
	Threshold float64        `json:"threshold"`
	OK        bool           `json:"ok"`
	Err       string         `json:"error,omitempty"`
}

var statusLabels = map[sysinfo.Metric]string{
	sysinfo.MetricCPU:    "CPU",
	sysinfo.MetricMemory: "内存",
	sysinfo.MetricDisk:   "磁盘",
	sysinfo.MetricSwap:   "SWAP",
}

// Status 读取当前各项指标，没有 SWAP 的主机不输出 SWAP 行
func (m *Monitor) Status(ctx context.Context) []StatusLine {
	lines := make([]StatusLine, 0, len(metricChecks))
	for _, check := range metricChecks {
		line := StatusLine{
			Metric:    check.metric,
			Label:     statusLabels[check.metric],
			Threshold: m.threshold(check.metric),
		}
		sample, err := m.source.Read(ctx, check.metric)
		if err != nil {
			line.Err = err.Error()
			lines = append(lines, line)
			continue
		}
		if check.metric == sysinfo.MetricSwap && sample.Total == 0 {
			continue
		}
		line.Percent = sample.Percent
		line.OK = sample.Percent < line.Threshold
		lines = append(lines, line)
	}
	return lines
}

// RenderStatus 以表格形式输出状态
func RenderStatus(w io.Writer, lines []StatusLine) {
	bar := strings.Repeat("=", 70)
	fmt.Fprintf(w, "\n%s\n%s\n%s\n\n", bar, centered("🔍 系统状态", 70), bar)
	for _, line := range lines {
		if line.Err != "" {
			fmt.Fprintf(w, "❔ %-6s 采集失败: %s\n", line.Label, line.Err)
			continue
		}
		icon := "✅"
		if !line.OK {
			icon = "⚠️ "
		}
		fmt.Fprintf(w, "%s %-6s %5.1f%% (阈值: %s%%)\n", icon, line.Label, line.Percent, formatThreshold(line.Threshold))
	}
	fmt.Fprintf(w, "\n%s\n", bar)
}

func centered(text string, width int) string {
	n := len([]rune(text))
	if n >= width {
		return text
	}
	return strings.Repeat(" ", (width-n)/2) + text
}
