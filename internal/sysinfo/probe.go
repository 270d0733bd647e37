// 本文件用于基于 gopsutil 的单指标采集
package sysinfo

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	defaultCPUInterval = 1 * time.Second
	defaultDiskPath    = "/"
)

// Probe 通过 gopsutil 读取本机指标
type Probe struct {
	CPUInterval time.Duration
	DiskPath    string
}

// NewProbe 创建默认采样参数的指标探针
func NewProbe() *Probe {
	return &Probe{
		CPUInterval: defaultCPUInterval,
		DiskPath:    defaultDiskPath,
	}
}

// Read 读取单个指标，失败时返回包装了 ErrProbe 的错误
func (p *Probe) Read(ctx context.Context, metric Metric) (Sample, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	switch metric {
	case MetricCPU:
		percents, err := cpu.PercentWithContext(ctx, p.cpuInterval(), false)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: cpu: %v", ErrProbe, err)
		}
		if len(percents) == 0 {
			return Sample{}, fmt.Errorf("%w: cpu: 无采样数据", ErrProbe)
		}
		return Sample{Percent: clampPct(percents[0])}, nil
	case MetricMemory:
		vm, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: memory: %v", ErrProbe, err)
		}
		return Sample{Percent: clampPct(vm.UsedPercent), Total: vm.Total, Used: vm.Used}, nil
	case MetricDisk:
		usage, err := disk.UsageWithContext(ctx, p.diskPath())
		if err != nil {
			return Sample{}, fmt.Errorf("%w: disk: %v", ErrProbe, err)
		}
		return Sample{Percent: clampPct(usage.UsedPercent), Total: usage.Total, Used: usage.Used}, nil
	case MetricSwap:
		swap, err := mem.SwapMemoryWithContext(ctx)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: swap: %v", ErrProbe, err)
		}
		return Sample{Percent: clampPct(swap.UsedPercent), Total: swap.Total, Used: swap.Used}, nil
	default:
		return Sample{}, fmt.Errorf("%w: 未知指标 %q", ErrProbe, metric)
	}
}

// CheckAvailable 启动时确认指标采集可用
func (p *Probe) CheckAvailable(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (p *Probe) cpuInterval() time.Duration {
	if p == nil || p.CPUInterval <= 0 {
		return defaultCPUInterval
	}
	return p.CPUInterval
}

func (p *Probe) diskPath() string {
	if p == nil || p.DiskPath == "" {
		return defaultDiskPath
	}
	return p.DiskPath
}
