package alert

import (
	"testing"
	"time"

	"host-monitor/internal/systemd"
)

func TestExceededIsStrict(t *testing.T) {
	cases := []struct {
		reading, threshold float64
		want               bool
	}{
		{80, 80, false},
		{80.0001, 80, true},
		{79.9, 80, false},
		{0, 0, false},
		{100, 99.9, true},
	}
	for _, tc := range cases {
		if got := Exceeded(tc.reading, tc.threshold); got != tc.want {
			t.Fatalf("Exceeded(%v, %v)=%v, want %v", tc.reading, tc.threshold, got, tc.want)
		}
	}
}

func TestSwapExceededSkipsHostsWithoutSwap(t *testing.T) {
	if SwapExceeded(100, 80, 0) {
		t.Fatalf("swap without capacity must never trigger")
	}
	if !SwapExceeded(95, 80, 1024) {
		t.Fatalf("swap over threshold should trigger")
	}
	if SwapExceeded(80, 80, 1024) {
		t.Fatalf("swap equal to threshold must not trigger")
	}
}

func TestServiceDownOnlyActiveIsHealthy(t *testing.T) {
	if ServiceDown(systemd.StateActive) {
		t.Fatalf("active service reported down")
	}
	if !ServiceDown(systemd.StateInactive) || !ServiceDown(systemd.StateUnknown) {
		t.Fatalf("inactive and unknown must be treated as down")
	}
}

func TestCooldownBoundary(t *testing.T) {
	window := 300 * time.Second
	c := NewCooldown(window)
	t0 := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	if !c.MayFire(KindCPU, t0) {
		t.Fatalf("never fired kind must be eligible")
	}
	c.MarkFired(KindCPU, t0)

	if c.MayFire(KindCPU, t0.Add(window-time.Nanosecond)) {
		t.Fatalf("kind must be suppressed just before the window ends")
	}
	if !c.MayFire(KindCPU, t0.Add(window)) {
		t.Fatalf("kind must be eligible exactly at the window end")
	}
}

func TestCooldownIsPerKind(t *testing.T) {
	c := NewCooldown(time.Minute)
	t0 := time.Now()
	c.MarkFired(KindCPU, t0)

	if !c.MayFire(KindMemory, t0.Add(time.Second)) {
		t.Fatalf("firing CPU must not affect MEMORY")
	}
	if !c.MayFire(ServiceKind("nginx"), t0) {
		t.Fatalf("firing CPU must not affect services")
	}
}

func TestCooldownCheckDoesNotResetTimer(t *testing.T) {
	c := NewCooldown(time.Minute)
	t0 := time.Now()
	c.MarkFired(KindDisk, t0)

	for i := 1; i < 6; i++ {
		c.MayFire(KindDisk, t0.Add(time.Duration(i)*10*time.Second))
	}
	last, ok := c.LastFired(KindDisk)
	if !ok || !last.Equal(t0) {
		t.Fatalf("suppressed checks changed last fired: %v", last)
	}
	if !c.MayFire(KindDisk, t0.Add(time.Minute)) {
		t.Fatalf("window must be measured from the last firing")
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(0)
	if h.Capacity() != DefaultHistorySize {
		t.Fatalf("unexpected default capacity: %d", h.Capacity())
	}
	for i := 1; i <= 101; i++ {
		h.Record(Record{ID: itoa(i), Message: itoa(i)})
	}
	records := h.Snapshot()
	if len(records) != 100 {
		t.Fatalf("history size=%d, want 100", len(records))
	}
	if records[0].Message != "2" {
		t.Fatalf("oldest entry should be #2, got %s", records[0].Message)
	}
	for i, record := range records {
		if record.Message != itoa(i+2) {
			t.Fatalf("order broken at %d: %s", i, record.Message)
		}
	}
}

func TestHistorySnapshotIsCopy(t *testing.T) {
	h := NewHistory(3)
	h.Record(Record{Message: "one"})
	snap := h.Snapshot()
	snap[0].Message = "changed"
	if h.Snapshot()[0].Message != "one" {
		t.Fatalf("snapshot mutation leaked into history")
	}
}

func TestKindHelpers(t *testing.T) {
	kind := ServiceKind(" mysql ")
	if kind != "SERVICE:mysql" {
		t.Fatalf("unexpected service kind: %s", kind)
	}
	name, ok := kind.Service()
	if !ok || name != "mysql" {
		t.Fatalf("unexpected service name: %s %v", name, ok)
	}
	if _, ok := KindCPU.Service(); ok {
		t.Fatalf("CPU is not a service kind")
	}
	if got := metricMessage(KindCPU, 81, 80); got != "CPU 使用率过高: 81.0% (阈值: 80%)" {
		t.Fatalf("unexpected message: %s", got)
	}
	if got := Title(kind); got != "服务 mysql 已停止" {
		t.Fatalf("unexpected title: %s", got)
	}
}

func itoa(i int) string {
	return formatThreshold(float64(i))
}
