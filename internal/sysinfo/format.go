// 本文件用于提供系统资源格式化与辅助函数
package sysinfo

import (
	"fmt"
	"net"
	"time"
)

// Tone 表示使用率所处的区间
type Tone string

const (
	ToneGood     Tone = "good"
	ToneWarning  Tone = "warning"
	ToneCritical Tone = "danger"
)

func firstIPv4() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "--"
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil {
				continue
			}
			ip = ip.To4()
			if ip != nil {
				return ip.String()
			}
		}
	}
	return "--"
}

// FormatBytes 将字节数格式化为带单位的可读文本
func FormatBytes(value uint64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(value)
	for _, unit := range units {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f PB", size)
}

// FormatCount 为整数添加千分位分隔
func FormatCount(value uint64) string {
	raw := fmt.Sprintf("%d", value)
	if len(raw) <= 3 {
		return raw
	}
	out := make([]byte, 0, len(raw)+len(raw)/3)
	lead := len(raw) % 3
	if lead > 0 {
		out = append(out, raw[:lead]...)
	}
	for i := lead; i < len(raw); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, raw[i:i+3]...)
	}
	return string(out)
}

// FormatUptime 将运行时长格式化为中文文案
func FormatUptime(d time.Duration) string {
	if d <= 0 {
		return "--"
	}
	totalMinutes := int(d.Minutes())
	if totalMinutes <= 0 {
		return "1分"
	}
	days := totalMinutes / (60 * 24)
	hours := (totalMinutes / 60) % 24
	mins := totalMinutes % 60
	if days > 0 {
		return fmt.Sprintf("%d天 %d小时 %d分", days, hours, mins)
	}
	if hours > 0 {
		return fmt.Sprintf("%d小时 %d分", hours, mins)
	}
	return fmt.Sprintf("%d分", mins)
}

// UsageTone 按使用率划分展示区间
func UsageTone(pct float64) Tone {
	switch {
	case pct < 50:
		return ToneGood
	case pct < 80:
		return ToneWarning
	default:
		return ToneCritical
	}
}

func clampPct(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
