// 本文件用于渲染终端实时资源面板
package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/moby/term"

	"host-monitor/internal/logger"
	"host-monitor/internal/models"
	"host-monitor/internal/sysinfo"
)

const (
	defaultLineWidth = 70
	defaultBarWidth  = 40
	minLineWidth     = 40

	colorGreen  = "\033[92m"
	colorYellow = "\033[93m"
	colorRed    = "\033[91m"
	colorReset  = "\033[0m"
	clearScreen = "\033[H\033[2J"
)

// SnapshotSource 提供系统资源快照
type SnapshotSource interface {
	Snapshot(ctx context.Context) (sysinfo.Snapshot, error)
}

// Options 控制面板的渲染方式
type Options struct {
	BarWidth   int
	LineWidth  int
	Color      bool
	Thresholds models.Thresholds
}

// Screen 包装输出目标，记录其是否为终端
type Screen struct {
	out      io.Writer
	fd       uintptr
	terminal bool
}

// NewScreen 检测 out 是否连接到终端
func NewScreen(out io.Writer) *Screen {
	fd, isTerminal := term.GetFdInfo(out)
	return &Screen{out: out, fd: fd, terminal: isTerminal}
}

// IsTerminal 返回输出是否为终端
func (s *Screen) IsTerminal() bool {
	return s.terminal
}

// Width 返回可用行宽，非终端或获取失败时使用默认宽度
func (s *Screen) Width() int {
	if !s.terminal {
		return defaultLineWidth
	}
	ws, err := term.GetWinsize(s.fd)
	if err != nil || ws == nil || ws.Width == 0 {
		return defaultLineWidth
	}
	width := int(ws.Width)
	if width > defaultLineWidth {
		return defaultLineWidth
	}
	if width < minLineWidth {
		return minLineWidth
	}
	return width
}

// Clear 仅在终端上清屏，重定向到文件时保留历史帧
func (s *Screen) Clear() {
	if s.terminal {
		fmt.Fprint(s.out, clearScreen)
	}
}

// DrawBar 绘制百分比进度条，color 为 false 时不输出颜色控制符
func DrawBar(pct float64, width int, color bool) string {
	if width <= 0 {
		width = defaultBarWidth
	}
	clamped := pct
	if clamped < 0 {
		clamped = 0
	}
	if clamped > 100 {
		clamped = 100
	}
	filled := int(clamped / 100 * float64(width))
	bar := strings.Repeat("█", filled)
	if color {
		bar = barColor(pct) + bar + colorReset
	}
	return fmt.Sprintf("[%s%s] %.1f%%", bar, strings.Repeat("░", width-filled), pct)
}

func barColor(pct float64) string {
	switch sysinfo.UsageTone(pct) {
	case sysinfo.ToneGood:
		return colorGreen
	case sysinfo.ToneWarning:
		return colorYellow
	default:
		return colorRed
	}
}

// Render 输出一帧完整的面板
func Render(w io.Writer, snap sysinfo.Snapshot, opts Options) {
	lineWidth := opts.LineWidth
	if lineWidth <= 0 {
		lineWidth = defaultLineWidth
	}
	bar := func(pct float64) string { return DrawBar(pct, opts.BarWidth, opts.Color) }
	heavy := strings.Repeat("=", lineWidth)
	light := strings.Repeat("-", lineWidth)

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", heavy)
	fmt.Fprintln(&b, center("🖥️  系统监控", lineWidth))
	fmt.Fprintln(&b, center("更新时间: "+snap.Timestamp.Format("2006-01-02 15:04:05"), lineWidth))
	fmt.Fprintf(&b, "%s\n\n", heavy)

	fmt.Fprintf(&b, "💻 CPU\n%s\n", light)
	fmt.Fprintf(&b, "  使用率:   %s\n", bar(snap.CPU.Percent))
	fmt.Fprintf(&b, "  核心数:   %d\n", snap.CPU.Cores)
	fmt.Fprintf(&b, "  主频:     %.0f MHz\n", snap.CPU.MHz)

	fmt.Fprintf(&b, "\n💾 内存\n%s\n", light)
	fmt.Fprintf(&b, "  内存:     %s\n", bar(snap.Memory.Percent))
	fmt.Fprintf(&b, "  已用:     %s / %s\n", sysinfo.FormatBytes(snap.Memory.Used), sysinfo.FormatBytes(snap.Memory.Total))
	fmt.Fprintf(&b, "  可用:     %s\n", sysinfo.FormatBytes(snap.Memory.Available))
	if snap.Swap.Total > 0 {
		fmt.Fprintf(&b, "  SWAP:     %s\n", bar(snap.Swap.Percent))
		fmt.Fprintf(&b, "            %s / %s\n", sysinfo.FormatBytes(snap.Swap.Used), sysinfo.FormatBytes(snap.Swap.Total))
	}

	fmt.Fprintf(&b, "\n💿 磁盘\n%s\n", light)
	fmt.Fprintf(&b, "  使用率:   %s\n", bar(snap.Disk.Percent))
	fmt.Fprintf(&b, "  已用:     %s / %s\n", sysinfo.FormatBytes(snap.Disk.Used), sysinfo.FormatBytes(snap.Disk.Total))
	fmt.Fprintf(&b, "  剩余:     %s\n", sysinfo.FormatBytes(snap.Disk.Free))

	fmt.Fprintf(&b, "\n🌐 网络\n%s\n", light)
	fmt.Fprintf(&b, "  已发送:   %s\n", sysinfo.FormatBytes(snap.Network.BytesSent))
	fmt.Fprintf(&b, "  已接收:   %s\n", sysinfo.FormatBytes(snap.Network.BytesRecv))
	fmt.Fprintf(&b, "  发送包 ↑: %s\n", sysinfo.FormatCount(snap.Network.PacketsSent))
	fmt.Fprintf(&b, "  接收包 ↓: %s\n", sysinfo.FormatCount(snap.Network.PacketsRecv))

	if warnings := collectWarnings(snap, opts.Thresholds); len(warnings) > 0 {
		fmt.Fprintf(&b, "\n🚨 告警\n%s\n", light)
		for _, item := range warnings {
			fmt.Fprintf(&b, "  %s\n", item)
		}
	}

	fmt.Fprintf(&b, "\n%s\n  按 Ctrl+C 退出\n%s\n", heavy, heavy)
	_, _ = io.WriteString(w, b.String())
}

func collectWarnings(snap sysinfo.Snapshot, th models.Thresholds) []string {
	var out []string
	if th.CPU > 0 && snap.CPU.Percent > th.CPU {
		out = append(out, "⚠️  CPU 使用率偏高")
	}
	if th.Memory > 0 && snap.Memory.Percent > th.Memory {
		out = append(out, "⚠️  内存使用率偏高")
	}
	if th.Disk > 0 && snap.Disk.Percent > th.Disk {
		out = append(out, "⚠️  磁盘即将写满")
	}
	return out
}

func center(text string, width int) string {
	pad := width - utf8.RuneCountInString(text)
	if pad <= 0 {
		return text
	}
	left := pad / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", pad-left)
}

// Run 按 interval 刷新面板，ctx 取消后返回
func Run(ctx context.Context, source SnapshotSource, screen *Screen, interval time.Duration, opts Options) error {
	if source == nil || screen == nil {
		return fmt.Errorf("面板数据源与输出不能为空")
	}
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = screen.Width()
	}
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		if ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
		snap, err := source.Snapshot(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("采集系统信息失败: %v", err)
		} else {
			screen.Clear()
			Render(screen.out, snap, opts)
		}
		timer.Reset(interval)
	}
}
