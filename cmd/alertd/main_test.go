package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"host-monitor/internal/alert"
	"host-monitor/internal/config"
)

func TestFlagDefaults(t *testing.T) {
	cmd := newRootCommand()
	flag := cmd.Flags().Lookup("config")
	if flag == nil || flag.Shorthand != "c" || flag.DefValue != "alerts.json" {
		t.Fatalf("unexpected config flag: %+v", flag)
	}
	if test := cmd.Flags().Lookup("test"); test == nil || test.DefValue != "false" {
		t.Fatalf("unexpected test flag: %+v", test)
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, nil)
	if !strings.Contains(buf.String(), "系统正常") {
		t.Fatalf("unexpected empty summary: %q", buf.String())
	}
	buf.Reset()
	printSummary(&buf, []alert.Kind{alert.KindCPU, alert.ServiceKind("mysql")})
	if !strings.Contains(buf.String(), "触发 2 条告警: CPU, SERVICE:mysql") {
		t.Fatalf("unexpected summary: %q", buf.String())
	}
}

func TestLoadConfigWritesExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.json")
	var buf bytes.Buffer
	cfg := loadConfig(&buf, path)
	if cfg.CheckInterval != 60 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if !config.Exists(path) {
		t.Fatalf("example config was not written")
	}
	if !strings.Contains(buf.String(), "已生成示例") {
		t.Fatalf("missing notice: %q", buf.String())
	}
}

func TestLoadConfigMalformedFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var buf bytes.Buffer
	cfg := loadConfig(&buf, path)
	if cfg.Thresholds.CPU != 80 {
		t.Fatalf("expected default thresholds, got %+v", cfg.Thresholds)
	}
	if !strings.Contains(buf.String(), "使用默认配置") {
		t.Fatalf("missing fallback notice: %q", buf.String())
	}
}
