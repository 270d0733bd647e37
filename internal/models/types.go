// 本文件用于定义配置与业务模型
package models

// Config 告警守护进程配置
type Config struct {
	Thresholds    Thresholds    `json:"thresholds" yaml:"thresholds" toml:"thresholds"`
	CheckInterval int           `json:"check_interval" yaml:"check_interval" toml:"check_interval"` // 检查间隔（秒）
	AlertCooldown int           `json:"alert_cooldown" yaml:"alert_cooldown" toml:"alert_cooldown"` // 全局告警冷却窗口（秒）
	Email         EmailConfig   `json:"email" yaml:"email" toml:"email"`
	Webhook       WebhookConfig `json:"webhook" yaml:"webhook" toml:"webhook"`
	LogFile       string        `json:"log_file" yaml:"log_file" toml:"log_file"` // 告警日志文件，仅追加
	ConsoleAlerts bool          `json:"console_alerts" yaml:"console_alerts" toml:"console_alerts"`
	Services      []string      `json:"services" yaml:"services" toml:"services"`
	LogLevel      string        `json:"log_level,omitempty" yaml:"log_level,omitempty" toml:"log_level,omitempty"`
	StatusBind    string        `json:"status_bind,omitempty" yaml:"status_bind,omitempty" toml:"status_bind,omitempty"` // 状态 API 监听地址，为空则不启动
	OSS           OSSConfig     `json:"oss" yaml:"oss" toml:"oss"`
}

// Thresholds 各指标的百分比阈值
type Thresholds struct {
	CPU    float64 `json:"cpu" yaml:"cpu" toml:"cpu"`
	Memory float64 `json:"memory" yaml:"memory" toml:"memory"`
	Disk   float64 `json:"disk" yaml:"disk" toml:"disk"`
	Swap   float64 `json:"swap" yaml:"swap" toml:"swap"`
}

// EmailConfig 邮件通知配置
type EmailConfig struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	SMTPServer     string   `json:"smtp_server" yaml:"smtp_server" toml:"smtp_server"`
	SMTPPort       int      `json:"smtp_port" yaml:"smtp_port" toml:"smtp_port"`
	From           string   `json:"from" yaml:"from" toml:"from"`
	To             []string `json:"to" yaml:"to" toml:"to"`
	Password       string   `json:"password" yaml:"password" toml:"password"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" toml:"timeout_seconds,omitempty"`
}

// WebhookConfig Webhook 通知配置（Slack / Discord 兼容）
type WebhookConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	URL       string `json:"url" yaml:"url" toml:"url"`
	Method    string `json:"method" yaml:"method" toml:"method"`
	Username  string `json:"username,omitempty" yaml:"username,omitempty" toml:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty" yaml:"icon_emoji,omitempty" toml:"icon_emoji,omitempty"`
}

// OSSConfig 报告上传到对象存储的配置
type OSSConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	Endpoint   string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" toml:"endpoint,omitempty"`
	Bucket     string `json:"bucket,omitempty" yaml:"bucket,omitempty" toml:"bucket,omitempty"`
	AK         string `json:"ak,omitempty" yaml:"ak,omitempty" toml:"ak,omitempty"`
	SK         string `json:"sk,omitempty" yaml:"sk,omitempty" toml:"sk,omitempty"`
	Prefix     string `json:"prefix,omitempty" yaml:"prefix,omitempty" toml:"prefix,omitempty"`
	DisableSSL bool   `json:"disable_ssl,omitempty" yaml:"disable_ssl,omitempty" toml:"disable_ssl,omitempty"`
}
