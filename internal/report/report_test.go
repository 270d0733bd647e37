package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"host-monitor/internal/models"
	"host-monitor/internal/sysinfo"
	"host-monitor/internal/systemd"
)

type stubSnapshot struct {
	snap sysinfo.Snapshot
	err  error
}

func (s stubSnapshot) Snapshot(context.Context) (sysinfo.Snapshot, error) { return s.snap, s.err }

type stubProber map[string]systemd.State

func (p stubProber) State(_ context.Context, name string) (systemd.State, error) {
	state, ok := p[name]
	if !ok {
		return systemd.StateUnknown, systemd.ErrProbe
	}
	return state, nil
}

var defaultThresholds = models.Thresholds{CPU: 80, Memory: 85, Disk: 90, Swap: 80}

func sampleSnapshot() sysinfo.Snapshot {
	return sysinfo.Snapshot{
		Host:      sysinfo.HostInfo{Hostname: "node-<a>", OS: "ubuntu 24.04", Kernel: "6.8.0", Uptime: 26 * time.Hour, Load: "0.10 / 0.20 / 0.30", IP: "10.0.0.5"},
		Timestamp: time.Date(2026, 10, 17, 14, 5, 0, 0, time.UTC),
		CPU:       sysinfo.CPUInfo{Percent: 92.5, Cores: 8, MHz: 3200},
		Memory:    sysinfo.Usage{Total: 16 << 30, Used: 8 << 30, Available: 8 << 30, Percent: 50},
		Disk:      sysinfo.Usage{Total: 100 << 30, Used: 30 << 30, Free: 70 << 30, Percent: 30},
		Network:   sysinfo.NetCounters{BytesSent: 1536, BytesRecv: 2048, PacketsSent: 1234567, PacketsRecv: 42},
	}
}

func TestCollectAndRender(t *testing.T) {
	prober := stubProber{"nginx": systemd.StateActive, "mysql": systemd.StateInactive}
	data, err := Collect(context.Background(), stubSnapshot{snap: sampleSnapshot()}, prober, []string{"nginx", "mysql", "docker"}, defaultThresholds)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(data.Services) != 3 || !data.Services[0].Active || data.Services[1].Active || data.Services[2].Active {
		t.Fatalf("unexpected services: %+v", data.Services)
	}
	if len(data.Alerts) != 1 || data.AlertClass != "danger" {
		t.Fatalf("unexpected alerts: %v %s", data.Alerts, data.AlertClass)
	}

	var buf bytes.Buffer
	if err := Render(&buf, data); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	mustContain := []string{
		"node-&lt;a&gt;",
		"2026-10-17 14:05:00",
		`class="progress-bar danger" style="width: 92.5%"`,
		`class="progress-bar warning" style="width: 50.0%"`,
		"16.0 GB",
		"1.5 KB",
		"1,234,567",
		"未配置",
		"1天 2小时 0分",
		`<td class="service-inactive">❌ 未运行</td>`,
		"CPU 使用率过高: 92.5%",
	}
	for _, item := range mustContain {
		if !strings.Contains(html, item) {
			t.Fatalf("report missing %q", item)
		}
	}
}

func TestBuildAlertsClasses(t *testing.T) {
	snap := sampleSnapshot()
	snap.CPU.Percent = 85
	alerts, class := buildAlerts(snap, defaultThresholds)
	if len(alerts) != 1 || class != "alert" {
		t.Fatalf("expected warning banner, got %v %s", alerts, class)
	}

	snap.CPU.Percent = 10
	if alerts, class := buildAlerts(snap, defaultThresholds); alerts != nil || class != "" {
		t.Fatalf("expected no alerts, got %v %s", alerts, class)
	}
}

func TestCollectPropagatesSnapshotError(t *testing.T) {
	_, err := Collect(context.Background(), stubSnapshot{err: sysinfo.ErrProbe}, stubProber{}, nil, defaultThresholds)
	if !errors.Is(err, sysinfo.ErrProbe) {
		t.Fatalf("expected ErrProbe, got %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.html")
	data, _ := Collect(context.Background(), stubSnapshot{snap: sampleSnapshot()}, stubProber{}, nil, defaultThresholds)
	if err := WriteFile(path, data); err != nil {
		t.Fatalf("write: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(content), "<!DOCTYPE html>") {
		t.Fatalf("unexpected report head: %.40s", content)
	}
}
