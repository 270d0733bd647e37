// 本文件用于定义告警相关的数据结构

package alert

import (
	"strconv"
	"strings"
	"time"
)

// Kind 标识一类告警条件，作为冷却与历史的键
type Kind string

const (
	KindCPU    Kind = "CPU"
	KindMemory Kind = "MEMORY"
	KindDisk   Kind = "DISK"
	KindSwap   Kind = "SWAP"

	// KindEmail 与 KindWebhook 只出现在告警日志中，记录投递结果
	KindEmail   Kind = "EMAIL"
	KindWebhook Kind = "WEBHOOK"

	servicePrefix = "SERVICE:"
)

// ServiceKind 返回服务停止告警的类型，如 SERVICE:mysql
func ServiceKind(name string) Kind {
	return Kind(servicePrefix + strings.TrimSpace(name))
}

// Service 返回服务类告警对应的服务名
func (k Kind) Service() (string, bool) {
	if !strings.HasPrefix(string(k), servicePrefix) {
		return "", false
	}
	return strings.TrimPrefix(string(k), servicePrefix), true
}

// Severity 表示告警级别
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
	// SeverityError 仅用于记录通道投递失败
	SeverityError Severity = "ERROR"
)

// Record 表示一条已触发的告警，创建后不再修改
type Record struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Kind     Kind      `json:"kind"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
}

// Notification 为一次派发交给各通道的内容
type Notification struct {
	Kind     Kind
	Severity Severity
	Title    string
	Message  string
	Time     time.Time
}

// Title 返回告警类型的简短标题，用作邮件主题
func Title(kind Kind) string {
	switch kind {
	case KindCPU:
		return "CPU 使用率过高"
	case KindMemory:
		return "内存使用率过高"
	case KindDisk:
		return "磁盘空间不足"
	case KindSwap:
		return "SWAP 使用率过高"
	}
	if name, ok := kind.Service(); ok {
		return "服务 " + name + " 已停止"
	}
	return string(kind)
}

func metricMessage(kind Kind, pct, threshold float64) string {
	return Title(kind) + ": " + strconv.FormatFloat(pct, 'f', 1, 64) + "% (阈值: " + formatThreshold(threshold) + "%)"
}

func serviceMessage(name string) string {
	return "服务 " + name + " 已停止"
}

func formatThreshold(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
