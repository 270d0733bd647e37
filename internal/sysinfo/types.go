package sysinfo

import (
	"context"
	"errors"
	"time"
)

// Metric 表示可告警的指标名称
type Metric string

const (
	MetricCPU    Metric = "cpu"
	MetricMemory Metric = "memory"
	MetricDisk   Metric = "disk"
	MetricSwap   Metric = "swap"
)

// Metrics 按固定顺序列出全部可告警指标
var Metrics = []Metric{MetricCPU, MetricMemory, MetricDisk, MetricSwap}

var (
	// ErrProbe 表示单次指标采集失败，本轮跳过该指标
	ErrProbe = errors.New("指标采集失败")
	// ErrUnavailable 表示进程启动时指标采集能力整体不可用
	ErrUnavailable = errors.New("指标采集能力不可用")
)

// Sample 表示单个指标的一次读数
type Sample struct {
	Percent float64 `json:"percent"`
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
}

// MetricSource 提供指标的当前读数
type MetricSource interface {
	Read(ctx context.Context, metric Metric) (Sample, error)
}

// HostInfo 表示主机概览
type HostInfo struct {
	Hostname string        `json:"hostname"`
	OS       string        `json:"os"`
	Kernel   string        `json:"kernel"`
	Uptime   time.Duration `json:"uptime"`
	Load     string        `json:"load"`
	IP       string        `json:"ip"`
}

// CPUInfo 表示 CPU 使用情况
type CPUInfo struct {
	Percent float64 `json:"percent"`
	Cores   int     `json:"cores"`
	MHz     float64 `json:"mhz"`
}

// Usage 表示容量型资源的使用情况
type Usage struct {
	Total     uint64  `json:"total"`
	Used      uint64  `json:"used"`
	Free      uint64  `json:"free"`
	Available uint64  `json:"available"`
	Percent   float64 `json:"percent"`
}

// NetCounters 表示网卡累计收发计数
type NetCounters struct {
	BytesSent   uint64 `json:"bytesSent"`
	BytesRecv   uint64 `json:"bytesRecv"`
	PacketsSent uint64 `json:"packetsSent"`
	PacketsRecv uint64 `json:"packetsRecv"`
}

// Snapshot 聚合终端面板与 HTML 报告所需的数据
type Snapshot struct {
	Host      HostInfo    `json:"host"`
	Timestamp time.Time   `json:"timestamp"`
	CPU       CPUInfo     `json:"cpu"`
	Memory    Usage       `json:"memory"`
	Swap      Usage       `json:"swap"`
	Disk      Usage       `json:"disk"`
	Network   NetCounters `json:"network"`
}
