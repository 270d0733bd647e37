package alert

import "host-monitor/internal/systemd"

// Exceeded 判断读数是否超过阈值，等于阈值不触发
func Exceeded(reading, threshold float64) bool {
	return reading > threshold
}

// SwapExceeded 在没有 SWAP 的主机上永远不触发
func SwapExceeded(reading, threshold float64, total uint64) bool {
	if total == 0 {
		return false
	}
	return Exceeded(reading, threshold)
}

// ServiceDown 只有 active 视为健康，unknown 等状态均按停止处理
func ServiceDown(state systemd.State) bool {
	return state != systemd.StateActive
}
