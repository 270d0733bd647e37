// 本文件用于告警配置的加载、默认值与示例文件生成
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"

	"host-monitor/internal/models"
	"host-monitor/pkg/utils"
)

const (
	defaultCheckInterval = 60
	defaultAlertCooldown = 300
	defaultLogFile       = "alerts.log"
	defaultSMTPServer    = "smtp.gmail.com"
	defaultSMTPPort      = 587
	defaultEmailTimeout  = 10
	defaultWebhookMethod = "POST"
	defaultWebhookUser   = "Network Monitor"
	defaultWebhookIcon   = ":warning:"
	defaultLogLevel      = "info"
)

// ErrMalformed 表示配置文件存在但无法解析
var ErrMalformed = errors.New("配置文件格式错误")

// DefaultServices 告警守护进程默认检查的服务
var DefaultServices = []string{"nginx", "ssh", "mysql", "postgresql"}

// Default 返回内置默认配置
func Default() *models.Config {
	return &models.Config{
		Thresholds: models.Thresholds{
			CPU:    80.0,
			Memory: 85.0,
			Disk:   90.0,
			Swap:   80.0,
		},
		CheckInterval: defaultCheckInterval,
		AlertCooldown: defaultAlertCooldown,
		Email: models.EmailConfig{
			Enabled:        false,
			SMTPServer:     defaultSMTPServer,
			SMTPPort:       defaultSMTPPort,
			From:           "alerts@example.com",
			To:             []string{"admin@example.com"},
			Password:       "",
			TimeoutSeconds: defaultEmailTimeout,
		},
		Webhook: models.WebhookConfig{
			Enabled:   false,
			URL:       "",
			Method:    defaultWebhookMethod,
			Username:  defaultWebhookUser,
			IconEmoji: defaultWebhookIcon,
		},
		LogFile:       defaultLogFile,
		ConsoleAlerts: true,
		Services:      append([]string(nil), DefaultServices...),
		LogLevel:      defaultLogLevel,
	}
}

// Example 返回写入磁盘的示例配置，敏感字段使用占位值
func Example() *models.Config {
	cfg := Default()
	cfg.Email.Password = "your_password"
	cfg.Webhook.URL = "https://hooks.slack.com/services/YOUR/WEBHOOK/URL"
	return cfg
}

// LoadConfig 加载配置文件
// 文件不存在时写入示例文件并返回默认配置；文件损坏时返回默认配置与 ErrMalformed
// 文件内容叠加在默认配置上，嵌套对象按字段合并而不是整体替换
func LoadConfig(configFile string) (*models.Config, error) {
	cfg := Default()
	data, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			if werr := WriteExample(configFile); werr != nil {
				return cfg, fmt.Errorf("配置文件 %s 不存在，且无法创建示例: %w", configFile, werr)
			}
			return cfg, nil
		}
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}

	overlay := Default()
	if err := decode(configFile, data, overlay); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrMalformed, configFile, err)
	}
	Normalize(overlay)
	return overlay, nil
}

// Exists 判断配置文件是否存在
func Exists(configFile string) bool {
	return utils.IsFileExists(configFile)
}

// WriteExample 按扩展名格式写出示例配置
func WriteExample(configFile string) error {
	data, err := encode(configFile, Example())
	if err != nil {
		return fmt.Errorf("序列化示例配置失败: %w", err)
	}
	if err := utils.WriteFileAtomic(configFile, data, 0o644); err != nil {
		return fmt.Errorf("写入示例配置失败: %s: %w", configFile, err)
	}
	return nil
}

// Normalize 将非法取值回退为默认值
func Normalize(cfg *models.Config) {
	if cfg == nil {
		return
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = defaultCheckInterval
	}
	if cfg.AlertCooldown < 0 {
		cfg.AlertCooldown = defaultAlertCooldown
	}
	cfg.LogFile = strings.TrimSpace(cfg.LogFile)
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile
	}
	if cfg.Email.SMTPPort <= 0 {
		cfg.Email.SMTPPort = defaultSMTPPort
	}
	if cfg.Email.TimeoutSeconds <= 0 {
		cfg.Email.TimeoutSeconds = defaultEmailTimeout
	}
	cfg.Webhook.Method = strings.ToUpper(strings.TrimSpace(cfg.Webhook.Method))
	if cfg.Webhook.Method == "" {
		cfg.Webhook.Method = defaultWebhookMethod
	}
	if cfg.Webhook.Username == "" {
		cfg.Webhook.Username = defaultWebhookUser
	}
	if cfg.Webhook.IconEmoji == "" {
		cfg.Webhook.IconEmoji = defaultWebhookIcon
	}
	if cfg.Services == nil {
		cfg.Services = append([]string(nil), DefaultServices...)
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = defaultLogLevel
	}
}

func decode(configFile string, data []byte, cfg *models.Config) error {
	switch formatOf(configFile) {
	case "yaml":
		return yaml.Unmarshal(data, cfg)
	case "toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return json.Unmarshal(data, cfg)
	}
}

func encode(configFile string, cfg *models.Config) ([]byte, error) {
	switch formatOf(configFile) {
	case "yaml":
		return yaml.Marshal(cfg)
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return json.MarshalIndent(cfg, "", "    ")
	}
}

func formatOf(configFile string) string {
	switch utils.GetFileExtension(configFile) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}
