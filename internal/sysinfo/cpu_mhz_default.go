//go:build !darwin

package sysinfo

// 其他平台由 cpu.Info 提供主频
func detectCPUMHz() float64 { return 0 }
