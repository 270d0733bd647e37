//go:build darwin

package sysinfo

import "golang.org/x/sys/unix"

// Apple Silicon 上 hw.cpufrequency 不存在，依次尝试其他键
var darwinFrequencyKeys = []string{"hw.cpufrequency", "hw.cpufrequency_max"}

func detectCPUMHz() float64 {
	for _, key := range darwinFrequencyKeys {
		if freq, err := unix.SysctlUint64(key); err == nil && freq > 0 {
			return sanitizeMHz(float64(freq) / 1e6)
		}
	}
	return 0
}
