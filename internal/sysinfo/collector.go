package sysinfo

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net"
)

var brandMHzPattern = regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]+)?)\s*ghz`)

// Collector 负责采集系统资源快照
type Collector struct {
	probe *Probe
	now   func() time.Time
}

// NewCollector 创建系统信息采集器
func NewCollector(probe *Probe) *Collector {
	if probe == nil {
		probe = NewProbe()
	}
	return &Collector{probe: probe, now: time.Now}
}

// Snapshot 返回一次完整的系统资源快照
// 单项采集失败时该项保持零值，不影响其他项
func (c *Collector) Snapshot(ctx context.Context) (Snapshot, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	snapshot := Snapshot{
		Host:      collectHostInfo(ctx),
		Timestamp: c.now(),
	}

	cpuSample, err := c.probe.Read(ctx, MetricCPU)
	if err != nil {
		return snapshot, err
	}
	snapshot.CPU = CPUInfo{
		Percent: cpuSample.Percent,
		Cores:   collectCores(ctx),
		MHz:     collectCPUMHz(ctx),
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		snapshot.Memory = Usage{
			Total:     vm.Total,
			Used:      vm.Used,
			Free:      vm.Free,
			Available: vm.Available,
			Percent:   clampPct(vm.UsedPercent),
		}
	}
	if swap, err := mem.SwapMemoryWithContext(ctx); err == nil {
		snapshot.Swap = Usage{
			Total:   swap.Total,
			Used:    swap.Used,
			Free:    swap.Free,
			Percent: clampPct(swap.UsedPercent),
		}
	}
	if usage, err := disk.UsageWithContext(ctx, c.probe.diskPath()); err == nil {
		snapshot.Disk = Usage{
			Total:   usage.Total,
			Used:    usage.Used,
			Free:    usage.Free,
			Percent: clampPct(usage.UsedPercent),
		}
	}
	if counters, err := gnet.IOCountersWithContext(ctx, false); err == nil && len(counters) > 0 {
		snapshot.Network = NetCounters{
			BytesSent:   counters[0].BytesSent,
			BytesRecv:   counters[0].BytesRecv,
			PacketsSent: counters[0].PacketsSent,
			PacketsRecv: counters[0].PacketsRecv,
		}
	}
	return snapshot, nil
}

// Hostname 返回主机名，采集失败时回退到 os.Hostname
func Hostname() string {
	info, err := host.Info()
	if err == nil && strings.TrimSpace(info.Hostname) != "" {
		return info.Hostname
	}
	name, err := os.Hostname()
	if err != nil {
		return "unknown-host"
	}
	return fallbackString(name, "unknown-host")
}

func collectHostInfo(ctx context.Context) HostInfo {
	out := HostInfo{
		Load: collectLoadLabel(ctx),
		IP:   firstIPv4(),
	}
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		name, _ := os.Hostname()
		out.Hostname = fallbackString(name, "--")
		out.OS = runtime.GOOS
		out.Kernel = "--"
		return out
	}
	out.Hostname = fallbackString(info.Hostname, "--")
	out.OS = strings.TrimSpace(strings.Join([]string{info.Platform, info.PlatformVersion}, " "))
	if out.OS == "" {
		out.OS = runtime.GOOS
	}
	out.Kernel = fallbackString(info.KernelVersion, "--")
	out.Uptime = time.Duration(info.Uptime) * time.Second
	return out
}

func collectLoadLabel(ctx context.Context) string {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return "--"
	}
	return fmt.Sprintf("%.2f / %.2f / %.2f", avg.Load1, avg.Load5, avg.Load15)
}

func collectCores(ctx context.Context) int {
	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil || cores <= 0 {
		return runtime.NumCPU()
	}
	return cores
}

func collectCPUMHz(ctx context.Context) float64 {
	mhz := detectCPUMHz()
	if mhz > 0 {
		return mhz
	}
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil || len(infos) == 0 {
		return 0
	}
	if freq := sanitizeMHz(infos[0].Mhz); freq > 0 {
		return freq
	}
	return parseBrandMHz(infos[0].ModelName)
}

func sanitizeMHz(mhz float64) float64 {
	// 部分平台会返回极小值（如 24 MHz），直接视为未知
	if mhz < 100 {
		return 0
	}
	return mhz
}

func parseBrandMHz(brand string) float64 {
	if strings.TrimSpace(brand) == "" {
		return 0
	}
	matches := brandMHzPattern.FindStringSubmatch(brand)
	if len(matches) < 2 {
		return 0
	}
	val, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0
	}
	return val * 1000
}

func fallbackString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
