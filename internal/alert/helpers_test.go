package alert

import (
	"context"
	"errors"
	"sync"
	"time"

	"host-monitor/internal/sysinfo"
	"host-monitor/internal/systemd"
)

type fakeSource struct {
	mu      sync.Mutex
	samples map[sysinfo.Metric]sysinfo.Sample
	errs    map[sysinfo.Metric]error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		samples: map[sysinfo.Metric]sysinfo.Sample{
			sysinfo.MetricCPU:    {Percent: 10},
			sysinfo.MetricMemory: {Percent: 10},
			sysinfo.MetricDisk:   {Percent: 10},
			sysinfo.MetricSwap:   {Percent: 0, Total: 0},
		},
		errs: map[sysinfo.Metric]error{},
	}
}

func (s *fakeSource) set(metric sysinfo.Metric, sample sysinfo.Sample) {
	s.mu.Lock()
	s.samples[metric] = sample
	s.mu.Unlock()
}

func (s *fakeSource) Read(_ context.Context, metric sysinfo.Metric) (sysinfo.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[metric]; err != nil {
		return sysinfo.Sample{}, err
	}
	return s.samples[metric], nil
}

type fakeProber struct {
	states map[string]systemd.State
	errs   map[string]error
}

func (p *fakeProber) State(_ context.Context, name string) (systemd.State, error) {
	if err := p.errs[name]; err != nil {
		return systemd.StateUnknown, err
	}
	if state, ok := p.states[name]; ok {
		return state, nil
	}
	return systemd.StateActive, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingChannel 记录收到的全部通知
type recordingChannel struct {
	name string
	mu   sync.Mutex
	got  []Notification
	err  error
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Deliver(_ context.Context, n Notification) Result {
	c.mu.Lock()
	c.got = append(c.got, n)
	c.mu.Unlock()
	if c.err != nil {
		return failed(c.name, c.err)
	}
	return delivered(c.name)
}

func (c *recordingChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}

type failingMailer struct{ err error }

func (m failingMailer) SendMessage(context.Context, string, string) error { return m.err }

type captureMailer struct {
	subject string
	body    string
}

func (m *captureMailer) SendMessage(_ context.Context, subject, body string) error {
	m.subject = subject
	m.body = body
	return nil
}

var errSMTPAuth = errors.New("535 authentication failed")
