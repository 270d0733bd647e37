package alert

import "sync"

// DefaultHistorySize 为内存中保留的告警条数
const DefaultHistorySize = 100

// History 按先进先出保留最近的告警记录，仅存在于进程内存
type History struct {
	mu       sync.RWMutex
	capacity int
	records  []Record
}

// NewHistory 创建告警历史，capacity 非正时使用默认值
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{
		capacity: capacity,
		records:  make([]Record, 0, capacity),
	}
}

// Record 追加记录，超出容量时淘汰最旧的一条
func (h *History) Record(record Record) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, record)
	if len(h.records) > h.capacity {
		h.records = append([]Record(nil), h.records[len(h.records)-h.capacity:]...)
	}
}

// Snapshot 按从旧到新返回记录副本
func (h *History) Snapshot() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Record(nil), h.records...)
}

// Len 返回当前记录条数
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Capacity 返回历史容量
func (h *History) Capacity() int {
	return h.capacity
}
