package systemd

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func fakeRunner(outputs map[string]string, fail error) Runner {
	return func(ctx context.Context, name string, args ...string) (string, error) {
		if fail != nil {
			return "", fail
		}
		return outputs[strings.Join(args, " ")], nil
	}
}

func TestStateOnlyActiveIsHealthy(t *testing.T) {
	p := NewProberWithRunner(fakeRunner(map[string]string{
		"is-active nginx":  "active\n",
		"is-active mysql":  "inactive\n",
		"is-active cron":   "activating\n",
		"is-active docker": "failed\n",
		"is-active redis":  "unknown\n",
	}, nil))

	cases := map[string]State{
		"nginx":  StateActive,
		"mysql":  StateInactive,
		"cron":   StateInactive,
		"docker": StateInactive,
		"redis":  StateUnknown,
		"absent": StateInactive,
	}
	for name, want := range cases {
		got, err := p.State(context.Background(), name)
		if err != nil {
			t.Fatalf("state %s: %v", name, err)
		}
		if got != want {
			t.Fatalf("state %s=%s, want %s", name, got, want)
		}
	}
}

func TestStateRunnerFailureIsUnknown(t *testing.T) {
	p := NewProberWithRunner(fakeRunner(nil, errors.New("exec: \"systemctl\": executable file not found")))

	got, err := p.State(context.Background(), "mysql")
	if got != StateUnknown {
		t.Fatalf("expected unknown, got %s", got)
	}
	if !errors.Is(err, ErrProbe) {
		t.Fatalf("expected ErrProbe, got %v", err)
	}
}

func TestStateTimesOut(t *testing.T) {
	p := NewProberWithRunner(func(ctx context.Context, name string, args ...string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	p.Timeout = 20 * time.Millisecond

	start := time.Now()
	got, err := p.State(context.Background(), "nginx")
	if got != StateUnknown || !errors.Is(err, ErrProbe) {
		t.Fatalf("expected unknown with ErrProbe, got %s %v", got, err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("probe did not honour timeout")
	}
}

func TestEnabled(t *testing.T) {
	p := NewProberWithRunner(fakeRunner(map[string]string{
		"is-enabled ssh":   "enabled",
		"is-enabled nginx": "disabled",
	}, nil))

	if got, _ := p.Enabled(context.Background(), "ssh"); got != EnableEnabled {
		t.Fatalf("ssh should be enabled, got %s", got)
	}
	if got, _ := p.Enabled(context.Background(), "nginx"); got != EnableDisabled {
		t.Fatalf("nginx should be disabled, got %s", got)
	}
}

func TestEmptyServiceName(t *testing.T) {
	p := NewProberWithRunner(fakeRunner(nil, nil))
	if _, err := p.State(context.Background(), "  "); !errors.Is(err, ErrProbe) {
		t.Fatalf("expected ErrProbe for empty name, got %v", err)
	}
	if _, err := p.Status(context.Background(), ""); !errors.Is(err, ErrProbe) {
		t.Fatalf("expected ErrProbe for empty name, got %v", err)
	}
}

func TestStatusReturnsRawOutput(t *testing.T) {
	p := NewProberWithRunner(fakeRunner(map[string]string{
		"status nginx": "● nginx.service - A high performance web server\n   Active: active (running)\n",
	}, nil))
	out, err := p.Status(context.Background(), "nginx")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Active: active (running)") {
		t.Fatalf("unexpected status output: %q", out)
	}
}
