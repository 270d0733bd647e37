package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"host-monitor/internal/metrics"
	"host-monitor/internal/models"
	"host-monitor/internal/webhook"
)

func TestDispatchIsolatesEmailFailure(t *testing.T) {
	var webhookHits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		webhookHits++
		var payload webhook.Payload
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if !strings.Contains(payload.Text, "磁盘空间不足") {
			t.Errorf("unexpected webhook text: %s", payload.Text)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	logPath := filepath.Join(t.TempDir(), "alerts.log")
	alertLog := NewAlertLog(logPath)
	var console bytes.Buffer
	collector := metrics.NewCollector()
	d := NewDispatcher(collector,
		NewConsoleChannel(&console),
		NewLogChannel(alertLog),
		NewEmailChannel(failingMailer{err: errSMTPAuth}, alertLog, "node-a"),
		NewWebhookChannel(webhook.NewClient(srv.URL, "POST", time.Second), alertLog, "Network Monitor", ":warning:"),
	)

	results := d.Dispatch(context.Background(), KindDisk, SeverityCritical, "磁盘空间不足: 95.0% (阈值: 90%)")
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	order := []string{ChannelConsole, ChannelLog, ChannelEmail, ChannelWebhook}
	for i, name := range order {
		if results[i].Channel != name {
			t.Fatalf("result %d channel=%s, want %s", i, results[i].Channel, name)
		}
	}
	if !results[0].Delivered || !results[1].Delivered || !results[3].Delivered {
		t.Fatalf("console, log and webhook should deliver: %+v", results)
	}
	emailResult := results[2]
	if emailResult.Delivered || !errors.Is(emailResult.Err, ErrDelivery) || !errors.Is(emailResult.Err, errSMTPAuth) {
		t.Fatalf("email failure not reported as delivery error: %+v", emailResult)
	}
	if webhookHits != 1 {
		t.Fatalf("webhook hits=%d, want 1", webhookHits)
	}
	if !strings.Contains(console.String(), "[DISK]") {
		t.Fatalf("console output missing kind: %s", console.String())
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read alert log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %d: %q", len(lines), data)
	}
	if !strings.Contains(lines[0], "] [CRITICAL] [DISK] 磁盘空间不足") {
		t.Fatalf("unexpected alert line: %s", lines[0])
	}
	if !strings.Contains(lines[1], "] [ERROR] [EMAIL] 邮件发送失败") {
		t.Fatalf("unexpected email line: %s", lines[1])
	}
	if !strings.Contains(lines[2], "] [INFO] [WEBHOOK] Webhook 已发送") {
		t.Fatalf("unexpected webhook line: %s", lines[2])
	}

	if !strings.Contains(scrape(t, collector), `hostmon_channel_deliveries_total{channel="email",outcome="failed"} 1`) {
		t.Fatalf("email failure not counted")
	}
}

func TestDispatchWebhookFailureDoesNotStopOthers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	alertLog := NewAlertLog(filepath.Join(t.TempDir(), "alerts.log"))
	mailer := &captureMailer{}
	d := NewDispatcher(nil,
		NewLogChannel(alertLog),
		NewEmailChannel(mailer, alertLog, "node-a"),
		NewWebhookChannel(webhook.NewClient(srv.URL, "POST", time.Second), alertLog, "u", ":x:"),
	)
	results := d.Dispatch(context.Background(), KindCPU, SeverityWarning, "CPU 使用率过高: 91.0% (阈值: 80%)")

	if !results[0].Delivered || !results[1].Delivered {
		t.Fatalf("log and email should deliver: %+v", results)
	}
	var statusErr *webhook.StatusError
	if !errors.As(results[2].Err, &statusErr) || statusErr.Code != http.StatusInternalServerError {
		t.Fatalf("webhook failure not surfaced: %+v", results[2])
	}
	if mailer.subject != "🚨 系统告警 - CPU 使用率过高" {
		t.Fatalf("unexpected subject: %s", mailer.subject)
	}
	if !strings.Contains(mailer.body, "主机: node-a") || !strings.Contains(mailer.body, "CPU 使用率过高: 91.0%") {
		t.Fatalf("unexpected body: %s", mailer.body)
	}
}

type panicChannel struct{}

func (panicChannel) Name() string { return "boom" }

func (panicChannel) Deliver(context.Context, Notification) Result { panic("nil map") }

func TestDispatchRecoversChannelPanic(t *testing.T) {
	after := &recordingChannel{name: "after"}
	d := NewDispatcher(nil, panicChannel{}, after)

	results := d.Dispatch(context.Background(), KindSwap, SeverityWarning, "x")
	var panicErr *PanicError
	if !errors.As(results[0].Err, &panicErr) {
		t.Fatalf("panic not converted to error: %+v", results[0])
	}
	if after.count() != 1 {
		t.Fatalf("channel after panic was not called")
	}
}

func TestDispatchRecordsOutcomeMetrics(t *testing.T) {
	collector := metrics.NewCollector()
	ok := &recordingChannel{name: "ok"}
	bad := &recordingChannel{name: "bad", err: errors.New("down")}
	d := NewDispatcher(collector, ok, bad)

	d.Dispatch(context.Background(), KindCPU, SeverityWarning, "x")

	body := scrape(t, collector)
	if !strings.Contains(body, `hostmon_channel_deliveries_total{channel="ok",outcome="delivered"} 1`) {
		t.Fatalf("delivered outcome missing:\n%s", body)
	}
	if !strings.Contains(body, `hostmon_channel_deliveries_total{channel="bad",outcome="failed"} 1`) {
		t.Fatalf("failed outcome missing:\n%s", body)
	}
}

func TestAlertLogCreatesFileAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "alerts.log")
	l := NewAlertLog(path)
	at := time.Date(2026, 10, 17, 8, 30, 0, 0, time.Local)

	if err := l.Write(at, SeverityWarning, KindCPU, "first"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.Write(at, SeverityCritical, ServiceKind("mysql"), "second"); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, _ := os.ReadFile(path)
	want := "[2026-10-17 08:30:00] [WARNING] [CPU] first\n[2026-10-17 08:30:00] [CRITICAL] [SERVICE:mysql] second\n"
	if string(data) != want {
		t.Fatalf("unexpected log content:\n%q\nwant\n%q", data, want)
	}
}

func TestLogChannelFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	// 目录作为文件路径会导致打开失败
	result := NewLogChannel(NewAlertLog(dir)).Deliver(context.Background(), Notification{Kind: KindCPU, Time: time.Now()})
	if result.Delivered || result.Err == nil {
		t.Fatalf("expected log failure, got %+v", result)
	}
}

func TestNewDispatcherFromConfigSkipsDisabledChannels(t *testing.T) {
	cfg := &models.Config{LogFile: filepath.Join(t.TempDir(), "a.log"), ConsoleAlerts: false}
	d, alertLog := NewDispatcherFromConfig(cfg, nil, "node-a", nil)
	if got := strings.Join(d.Channels(), ","); got != ChannelLog {
		t.Fatalf("unexpected channels: %s", got)
	}
	if alertLog.Path() != cfg.LogFile {
		t.Fatalf("alert log path mismatch")
	}

	cfg.ConsoleAlerts = true
	cfg.Email = models.EmailConfig{Enabled: true, SMTPServer: "smtp.example.com", SMTPPort: 587, From: "a@b", To: []string{"c@d"}}
	cfg.Webhook = models.WebhookConfig{Enabled: true, URL: "http://127.0.0.1:1/hook", Method: "POST"}
	d, _ = NewDispatcherFromConfig(cfg, nil, "node-a", nil)
	if got := strings.Join(d.Channels(), ","); got != "console,log,email,webhook" {
		t.Fatalf("unexpected channel order: %s", got)
	}
}

func scrape(t *testing.T, collector *metrics.Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}
