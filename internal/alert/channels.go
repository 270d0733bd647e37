// 本文件用于各告警通知通道的实现
package alert

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"host-monitor/internal/email"
	"host-monitor/internal/logger"
	"host-monitor/internal/metrics"
	"host-monitor/internal/models"
	"host-monitor/internal/webhook"
	"host-monitor/pkg/utils"
)

const (
	ChannelConsole = "console"
	ChannelLog     = "log"
	ChannelEmail   = "email"
	ChannelWebhook = "webhook"

	logTimeLayout = "2006-01-02 15:04:05"
)

// AlertLog 为仅追加的告警日志文件，每行写入都重新打开并关闭文件
type AlertLog struct {
	mu   sync.Mutex
	path string
}

// NewAlertLog 创建告警日志
func NewAlertLog(path string) *AlertLog {
	return &AlertLog{path: path}
}

// Path 返回日志文件路径
func (l *AlertLog) Path() string {
	return l.path
}

// Write 追加一行 [时间] [级别] [类型] 消息
func (l *AlertLog) Write(at time.Time, severity Severity, kind Kind, message string) error {
	if l == nil || l.path == "" {
		return fmt.Errorf("告警日志路径为空")
	}
	line := FormatLogLine(at, severity, kind, message)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := utils.EnsureParentDir(l.path); err != nil {
		return fmt.Errorf("创建告警日志目录失败: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("打开告警日志失败: %w", err)
	}
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("写入告警日志失败: %w", err)
	}
	return f.Close()
}

// FormatLogLine 生成告警日志的一行文本
func FormatLogLine(at time.Time, severity Severity, kind Kind, message string) string {
	return fmt.Sprintf("[%s] [%s] [%s] %s\n", at.Format(logTimeLayout), severity, kind, message)
}

// writeEvent 记录通道自身的投递事件，失败只输出到应用日志
func (l *AlertLog) writeEvent(at time.Time, severity Severity, kind Kind, message string) {
	if l == nil {
		return
	}
	if err := l.Write(at, severity, kind, message); err != nil {
		logger.Warn("写入告警日志失败: %v", err)
	}
}

// ConsoleChannel 把告警打印到终端
type ConsoleChannel struct {
	out io.Writer
}

// NewConsoleChannel 创建终端通道，out 为空时输出到标准输出
func NewConsoleChannel(out io.Writer) *ConsoleChannel {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleChannel{out: out}
}

func (c *ConsoleChannel) Name() string { return ChannelConsole }

func (c *ConsoleChannel) Deliver(_ context.Context, n Notification) Result {
	icon := "⚠️ "
	if n.Severity == SeverityCritical {
		icon = "🔴"
	}
	_, _ = fmt.Fprintf(c.out, "\n%s 告警 [%s]: %s\n", icon, n.Kind, n.Message)
	return delivered(ChannelConsole)
}

// LogChannel 把告警追加到告警日志文件
type LogChannel struct {
	log *AlertLog
}

// NewLogChannel 创建日志通道
func NewLogChannel(log *AlertLog) *LogChannel {
	return &LogChannel{log: log}
}

func (c *LogChannel) Name() string { return ChannelLog }

func (c *LogChannel) Deliver(_ context.Context, n Notification) Result {
	if err := c.log.Write(n.Time, n.Severity, n.Kind, n.Message); err != nil {
		logger.Error("告警日志写入失败: %v", err)
		return failed(ChannelLog, err)
	}
	return delivered(ChannelLog)
}

// MailSender 发送邮件，email.Sender 满足该接口
type MailSender interface {
	SendMessage(ctx context.Context, subject, body string) error
}

// EmailChannel 通过 SMTP 发送告警邮件
type EmailChannel struct {
	sender   MailSender
	log      *AlertLog
	hostname string
}

// NewEmailChannel 创建邮件通道，投递结果写入 log
func NewEmailChannel(sender MailSender, log *AlertLog, hostname string) *EmailChannel {
	return &EmailChannel{sender: sender, log: log, hostname: hostname}
}

func (c *EmailChannel) Name() string { return ChannelEmail }

func (c *EmailChannel) Deliver(ctx context.Context, n Notification) Result {
	subject := EmailSubject(n.Title)
	err := c.sender.SendMessage(ctx, subject, EmailBody(n, c.hostname))
	if err != nil && !email.IsQuitError(err) {
		logger.Error("告警邮件发送失败: %v", err)
		c.log.writeEvent(n.Time, SeverityError, KindEmail, "邮件发送失败: "+err.Error())
		return failed(ChannelEmail, err)
	}
	logger.Info("告警邮件已发送: %s", n.Title)
	c.log.writeEvent(n.Time, SeverityInfo, KindEmail, "邮件已发送: "+n.Title)
	return delivered(ChannelEmail)
}

// EmailSubject 为邮件主题加上固定告警前缀
func EmailSubject(title string) string {
	return "🚨 系统告警 - " + title
}

// EmailBody 生成邮件正文
func EmailBody(n Notification, hostname string) string {
	return fmt.Sprintf("检测到系统告警！\n\n%s\n\n---\n主机: %s\n时间: %s\n\n此邮件由系统监控自动发送。\n",
		n.Message, hostname, n.Time.Format(logTimeLayout))
}

// WebhookSender 推送 Webhook 消息，webhook.Client 满足该接口
type WebhookSender interface {
	Send(ctx context.Context, payload webhook.Payload) error
}

// WebhookChannel 推送告警到 Slack / Discord 兼容的 Webhook
type WebhookChannel struct {
	client    WebhookSender
	log       *AlertLog
	username  string
	iconEmoji string
}

// NewWebhookChannel 创建 Webhook 通道
func NewWebhookChannel(client WebhookSender, log *AlertLog, username, iconEmoji string) *WebhookChannel {
	return &WebhookChannel{client: client, log: log, username: username, iconEmoji: iconEmoji}
}

func (c *WebhookChannel) Name() string { return ChannelWebhook }

func (c *WebhookChannel) Deliver(ctx context.Context, n Notification) Result {
	payload := webhook.Payload{
		Text:      "🚨 **系统告警**\n\n" + n.Message,
		Username:  c.username,
		IconEmoji: c.iconEmoji,
	}
	if err := c.client.Send(ctx, payload); err != nil {
		logger.Error("Webhook 推送失败: %v", err)
		c.log.writeEvent(n.Time, SeverityError, KindWebhook, "Webhook 推送失败: "+err.Error())
		return failed(ChannelWebhook, err)
	}
	logger.Info("Webhook 推送成功")
	c.log.writeEvent(n.Time, SeverityInfo, KindWebhook, "Webhook 已发送")
	return delivered(ChannelWebhook)
}

// NewDispatcherFromConfig 按配置组装通道，未启用的通道不会创建
// 顺序固定为 console、log、email、webhook
func NewDispatcherFromConfig(cfg *models.Config, console io.Writer, hostname string, collector *metrics.Collector) (*Dispatcher, *AlertLog) {
	alertLog := NewAlertLog(cfg.LogFile)
	channels := make([]Channel, 0, 4)
	if cfg.ConsoleAlerts {
		channels = append(channels, NewConsoleChannel(console))
	}
	channels = append(channels, NewLogChannel(alertLog))
	if cfg.Email.Enabled {
		sender := email.NewSender(email.Options{
			Host:     cfg.Email.SMTPServer,
			Port:     cfg.Email.SMTPPort,
			User:     cfg.Email.From,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			To:       cfg.Email.To,
			UseTLS:   true,
			Timeout:  time.Duration(cfg.Email.TimeoutSeconds) * time.Second,
		})
		channels = append(channels, NewEmailChannel(sender, alertLog, hostname))
	}
	if cfg.Webhook.Enabled {
		client := webhook.NewClient(cfg.Webhook.URL, cfg.Webhook.Method, 10*time.Second)
		channels = append(channels, NewWebhookChannel(client, alertLog, cfg.Webhook.Username, cfg.Webhook.IconEmoji))
	}
	return NewDispatcher(collector, channels...), alertLog
}
