// 本文件用于通过 systemctl 查询服务状态
package systemd

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// State 表示服务运行状态
type State string

const (
	StateActive   State = "active"
	StateInactive State = "inactive"
	StateUnknown  State = "unknown"
)

// EnableState 表示服务开机自启状态
type EnableState string

const (
	EnableEnabled  EnableState = "enabled"
	EnableDisabled EnableState = "disabled"
	EnableUnknown  EnableState = "unknown"
)

const defaultTimeout = 5 * time.Second

// ErrProbe 表示 systemctl 无法执行或超时
var ErrProbe = errors.New("服务状态查询失败")

// DefaultServices 为 --all 时检查的常见服务
var DefaultServices = []string{"nginx", "apache2", "ssh", "mysql", "postgresql", "docker", "cron"}

// Runner 执行外部命令并返回标准输出
// 命令以非零状态退出不算错误，只有无法执行或超时才返回 error
type Runner func(ctx context.Context, name string, args ...string) (string, error)

// Prober 查询 systemd 服务状态
type Prober struct {
	Timeout time.Duration
	run     Runner
}

// NewProber 创建使用本机 systemctl 的探测器
func NewProber() *Prober {
	return &Prober{Timeout: defaultTimeout, run: execRunner}
}

// NewProberWithRunner 使用自定义命令执行器创建探测器
func NewProberWithRunner(run Runner) *Prober {
	if run == nil {
		run = execRunner
	}
	return &Prober{Timeout: defaultTimeout, run: run}
}

// State 返回服务运行状态
// 输出 active 为运行中，unknown 原样返回，其余（activating、failed 等）一律视为 inactive
func (p *Prober) State(ctx context.Context, name string) (State, error) {
	out, err := p.query(ctx, "is-active", name)
	if err != nil {
		return StateUnknown, err
	}
	switch State(out) {
	case StateActive:
		return StateActive, nil
	case StateUnknown:
		return StateUnknown, nil
	default:
		return StateInactive, nil
	}
}

// Enabled 返回服务开机自启状态
func (p *Prober) Enabled(ctx context.Context, name string) (EnableState, error) {
	out, err := p.query(ctx, "is-enabled", name)
	if err != nil {
		return EnableUnknown, err
	}
	if out == string(EnableEnabled) {
		return EnableEnabled, nil
	}
	return EnableDisabled, nil
}

// Status 返回 systemctl status 的完整文本
func (p *Prober) Status(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: 服务名为空", ErrProbe)
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	out, err := p.runner()(ctx, "systemctl", "status", name)
	if err != nil {
		return "", fmt.Errorf("%w: systemctl status %s: %v", ErrProbe, name, err)
	}
	return out, nil
}

func (p *Prober) query(ctx context.Context, verb, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: 服务名为空", ErrProbe)
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	out, err := p.runner()(ctx, "systemctl", verb, name)
	if err != nil {
		return "", fmt.Errorf("%w: systemctl %s %s: %v", ErrProbe, verb, name, err)
	}
	return strings.TrimSpace(out), nil
}

func (p *Prober) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := defaultTimeout
	if p != nil && p.Timeout > 0 {
		timeout = p.Timeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (p *Prober) runner() Runner {
	if p == nil || p.run == nil {
		return execRunner
	}
	return p.run
}

func execRunner(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// systemctl 用非零退出码表达 inactive / disabled
			return string(out), nil
		}
		return "", err
	}
	return string(out), nil
}
