// 本文件用于告警邮件的 SMTP 发送
package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

const (
	defaultTimeout  = 10 * time.Second
	implicitTLSPort = 465
)

// Options 描述一次 SMTP 投递所需的参数
type Options struct {
	Host        string
	Port        int
	User        string // 为空时跳过 AUTH
	Password    string
	From        string
	To          []string
	UseTLS      bool        // 465 端口走直连 TLS，其余端口走 STARTTLS
	ImplicitTLS bool        // 为 true 时任意端口都走直连 TLS
	TLSConfig   *tls.Config // 为空时使用系统根证书，ServerName 未设置时取 Host
	Timeout     time.Duration
}

// Sender 负责发送 SMTP 邮件
type Sender struct {
	opts Options
	now  func() time.Time
}

// NewSender 创建邮件发送器
func NewSender(opts Options) *Sender {
	opts.Host = strings.TrimSpace(opts.Host)
	opts.User = strings.TrimSpace(opts.User)
	opts.From = strings.TrimSpace(opts.From)
	opts.To = cleanRecipients(opts.To)
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Sender{opts: opts, now: time.Now}
}

// Recipients 返回清理后的收件人列表
func (s *Sender) Recipients() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.opts.To...)
}

// SendMessage 通过 SMTP 发送纯文本邮件
// ctx 未设置截止时间时使用 Options.Timeout 兜底，整个会话不会无限挂起
func (s *Sender) SendMessage(ctx context.Context, subject, body string) error {
	if err := s.validate(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	client, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if s.opts.User != "" {
		if ok, _ := client.Extension("AUTH"); !ok {
			return fmt.Errorf("smtp server does not support AUTH")
		}
		auth := smtp.PlainAuth("", s.opts.User, s.opts.Password, s.opts.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(s.opts.From); err != nil {
		return fmt.Errorf("smtp mail from failed: %w", err)
	}
	for _, rcpt := range s.opts.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt to %s failed: %w", rcpt, err)
		}
	}
	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data failed: %w", err)
	}
	msg := buildMessage(s.opts.From, s.opts.To, subject, body, s.now())
	if _, err := writer.Write([]byte(msg)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("smtp write failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("smtp data close failed: %w", err)
	}
	if err := client.Quit(); err != nil {
		// 邮件已被服务器接收
		return &QuitError{Err: err}
	}
	return nil
}

func (s *Sender) validate() error {
	switch {
	case s == nil:
		return fmt.Errorf("email sender is nil")
	case s.opts.Host == "":
		return fmt.Errorf("smtp host is empty")
	case s.opts.Port <= 0:
		return fmt.Errorf("smtp port is invalid")
	case s.opts.From == "":
		return fmt.Errorf("smtp from is empty")
	case len(s.opts.To) == 0:
		return fmt.Errorf("smtp recipients are empty")
	}
	return nil
}

// open 建立 TCP 连接并完成 TLS / STARTTLS 协商
func (s *Sender) open(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(s.opts.Host, fmt.Sprintf("%d", s.opts.Port))
	dialer := net.Dialer{Timeout: s.opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("smtp dial failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	tlsConfig := s.tlsConfig()
	var client *smtp.Client
	if s.implicitTLS() {
		tlsConn := tls.Client(conn, tlsConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("smtp tls handshake failed: %w", err)
		}
		client, err = smtp.NewClient(tlsConn, s.opts.Host)
	} else {
		client, err = smtp.NewClient(conn, s.opts.Host)
	}
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smtp client init failed: %w", err)
	}

	if s.opts.UseTLS && !s.implicitTLS() {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			_ = client.Close()
			return nil, fmt.Errorf("smtp server does not support STARTTLS")
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("smtp starttls failed: %w", err)
		}
	}
	return client, nil
}

func (s *Sender) implicitTLS() bool {
	return s.opts.UseTLS && (s.opts.ImplicitTLS || s.opts.Port == implicitTLSPort)
}

func (s *Sender) tlsConfig() *tls.Config {
	cfg := &tls.Config{}
	if s.opts.TLSConfig != nil {
		cfg = s.opts.TLSConfig.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = s.opts.Host
	}
	return cfg
}

// QuitError 表示邮件发送完成后 SMTP QUIT 失败
type QuitError struct {
	Err error
}

func (e *QuitError) Error() string {
	if e == nil || e.Err == nil {
		return "smtp quit failed"
	}
	return fmt.Sprintf("smtp quit failed: %v", e.Err)
}

func (e *QuitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsQuitError 判断错误是否只是 QUIT 阶段失败
func IsQuitError(err error) bool {
	var quitErr *QuitError
	return errors.As(err, &quitErr)
}

// buildMessage 组装 UTF-8 纯文本邮件
func buildMessage(from string, to []string, subject, body string, now time.Time) string {
	// Subject 去除换行避免头注入
	cleanSubject := strings.NewReplacer("\r", "", "\n", "").Replace(subject)
	headers := []string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", strings.Join(to, ", ")),
		fmt.Sprintf("Subject: %s", cleanSubject),
		fmt.Sprintf("Date: %s", now.Format(time.RFC1123Z)),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
	}
	return strings.Join(headers, "\r\n") + "\r\n\r\n" + normalizeLineEndings(body) + "\r\n"
}

// normalizeLineEndings 统一换行符为 CRLF
func normalizeLineEndings(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")
	return strings.ReplaceAll(body, "\n", "\r\n")
}

func cleanRecipients(list []string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
