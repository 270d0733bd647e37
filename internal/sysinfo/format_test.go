package sysinfo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{0, "0.0 B"},
		{512, "512.0 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
		{2 * 1024 * 1024 * 1024 * 1024 * 1024, "2.0 PB"},
	}
	for _, tc := range cases {
		if got := FormatBytes(tc.in); got != tc.want {
			t.Fatalf("FormatBytes(%d)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatCount(t *testing.T) {
	cases := map[uint64]string{
		7:       "7",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
	}
	for in, want := range cases {
		if got := FormatCount(in); got != want {
			t.Fatalf("FormatCount(%d)=%q, want %q", in, got, want)
		}
	}
}

func TestUsageTone(t *testing.T) {
	if UsageTone(49.9) != ToneGood {
		t.Fatalf("49.9 should be good")
	}
	if UsageTone(50) != ToneWarning {
		t.Fatalf("50 should be warning")
	}
	if UsageTone(79.9) != ToneWarning {
		t.Fatalf("79.9 should be warning")
	}
	if UsageTone(80) != ToneCritical {
		t.Fatalf("80 should be critical")
	}
}

func TestFormatUptime(t *testing.T) {
	if got := FormatUptime(0); got != "--" {
		t.Fatalf("unexpected zero uptime: %q", got)
	}
	if got := FormatUptime(30 * time.Second); got != "1分" {
		t.Fatalf("unexpected sub-minute uptime: %q", got)
	}
	if got := FormatUptime(2*time.Hour + 5*time.Minute); got != "2小时 5分" {
		t.Fatalf("unexpected hour uptime: %q", got)
	}
	if got := FormatUptime(49*time.Hour + 3*time.Minute); got != "2天 1小时 3分" {
		t.Fatalf("unexpected day uptime: %q", got)
	}
}

func TestClampPct(t *testing.T) {
	if clampPct(-3) != 0 || clampPct(130) != 100 || clampPct(42.5) != 42.5 {
		t.Fatalf("clampPct out of range handling broken")
	}
}

func TestParseBrandMHz(t *testing.T) {
	if got := parseBrandMHz("Intel(R) Core(TM) i7-8700 CPU @ 3.20GHz"); got != 3200 {
		t.Fatalf("unexpected brand mhz: %v", got)
	}
	if got := parseBrandMHz("Apple M2"); got != 0 {
		t.Fatalf("brand without frequency should be 0, got %v", got)
	}
	if sanitizeMHz(24) != 0 || sanitizeMHz(2400) != 2400 {
		t.Fatalf("sanitizeMHz threshold broken")
	}
}

func TestProbeRejectsUnknownMetric(t *testing.T) {
	_, err := NewProbe().Read(context.Background(), Metric("gpu"))
	if !errors.Is(err, ErrProbe) {
		t.Fatalf("expected ErrProbe, got %v", err)
	}
}
