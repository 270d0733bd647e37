// 本文件用于 Slack / Discord 兼容的 Webhook 告警推送
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Payload 为 Webhook 请求体
type Payload struct {
	Text      string `json:"text"`
	Username  string `json:"username"`
	IconEmoji string `json:"icon_emoji"`
}

// Client Webhook 推送客户端
type Client struct {
	url    string
	method string
	http   *http.Client
}

// NewClient 创建 Webhook 客户端，method 为空时使用 POST
func NewClient(url, method string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodPost
	}
	return &Client{
		url:    strings.TrimSpace(url),
		method: method,
		http:   &http.Client{Timeout: timeout},
	}
}

// Send 推送一条消息，只有 HTTP 200 视为成功
func (c *Client) Send(ctx context.Context, payload Payload) error {
	if c == nil || c.url == "" {
		return fmt.Errorf("webhook url 为空")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化 webhook 消息失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// StatusError 表示 Webhook 返回了非 200 状态码
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook HTTP 状态码异常: %d", e.Code)
}
