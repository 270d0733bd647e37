// 本文件用于把生成的报告上传到阿里云 OSS

package oss

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	sdk "github.com/aliyun/aliyun-oss-go-sdk/oss"

	"host-monitor/internal/logger"
	"host-monitor/internal/models"
)

// Publisher 封装 OSS Bucket 与报告对象键规则
type Publisher struct {
	bucket   *sdk.Bucket
	config   models.OSSConfig
	hostName string
}

// NewPublisher 创建并初始化 OSS 上传器
func NewPublisher(config models.OSSConfig) (*Publisher, error) {
	if strings.TrimSpace(config.Bucket) == "" {
		return nil, fmt.Errorf("OSS Bucket不能为空")
	}
	endpoint, err := normalizeOSSEndpoint(config.Endpoint, config.DisableSSL)
	if err != nil {
		return nil, err
	}
	client, err := sdk.New(endpoint, config.AK, config.SK)
	if err != nil {
		return nil, fmt.Errorf("创建OSS客户端失败: %w", err)
	}
	bucket, err := client.Bucket(config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("获取OSS Bucket失败: %w", err)
	}
	logger.Info("OSS客户端初始化成功: bucket=%s", config.Bucket)
	return &Publisher{
		bucket:   bucket,
		config:   config,
		hostName: normalizeHostName(),
	}, nil
}

// Upload 上传文件并校验 ETag，返回下载链接
func (p *Publisher) Upload(ctx context.Context, filePath string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if p == nil || p.bucket == nil {
		return "", fmt.Errorf("OSS Bucket未初始化")
	}
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("获取文件信息失败: %w", err)
	}
	size := info.Size()
	objectKey := buildObjectKey(p.config.Prefix, p.hostName, filePath)

	hasher := md5.New()
	reader := &contextReader{
		ctx:    ctx,
		reader: io.TeeReader(io.NewSectionReader(file, 0, size), hasher),
	}
	var responseHeader http.Header
	err = p.bucket.PutObject(objectKey, reader,
		sdk.ContentLength(size),
		sdk.ContentType(contentTypeFor(filePath)),
		sdk.GetResponseHeader(&responseHeader),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("OSS上传失败: %w", err)
	}

	localMD5 := hex.EncodeToString(hasher.Sum(nil))
	remoteETag := normalizeETag(responseHeader.Get("ETag"))
	if !isETagMatch(localMD5, remoteETag) {
		return "", fmt.Errorf("OSS ETag校验失败: local=%s remote=%s", localMD5, remoteETag)
	}

	downloadURL := buildDownloadURL(p.config.Endpoint, p.config.Bucket, objectKey, p.config.DisableSSL)
	logger.Info("报告已上传: %s", downloadURL)
	return downloadURL, nil
}

// buildObjectKey 生成 <prefix>/<host>/<file> 形式的对象键
func buildObjectKey(prefix, hostName, filePath string) string {
	parts := make([]string, 0, 3)
	if trimmed := strings.Trim(strings.TrimSpace(prefix), "/"); trimmed != "" {
		parts = append(parts, trimmed)
	}
	hostName = strings.Trim(strings.TrimSpace(hostName), "/")
	if hostName == "" {
		hostName = "unknown-host"
	}
	parts = append(parts, hostName, filepath.Base(filePath))
	return path.Join(parts...)
}

func buildDownloadURL(endpoint, bucket, objectKey string, disableSSL bool) string {
	host := strings.TrimSpace(endpoint)
	if parsed, err := url.Parse(host); err == nil && parsed.Host != "" {
		host = parsed.Host
	}
	host = strings.TrimSuffix(host, "/")
	scheme := "https"
	if disableSSL {
		scheme = "http"
	}
	escaped := (&url.URL{Path: "/" + objectKey}).EscapedPath()
	return fmt.Sprintf("%s://%s.%s%s", scheme, bucket, host, escaped)
}

func contentTypeFor(filePath string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filePath))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func normalizeETag(value string) string {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.Trim(trimmed, "\"")
	return strings.ToLower(trimmed)
}

func isValidMD5Hex(value string) bool {
	if len(value) != 32 {
		return false
	}
	for _, ch := range value {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		default:
			return false
		}
	}
	return true
}

func isETagMatch(localMD5Hex, remoteETag string) bool {
	local := normalizeETag(localMD5Hex)
	remote := normalizeETag(remoteETag)
	if !isValidMD5Hex(local) || !isValidMD5Hex(remote) {
		return false
	}
	return local == remote
}

// normalizeOSSEndpoint 统一 OSS Endpoint 格式
func normalizeOSSEndpoint(endpoint string, disableSSL bool) (string, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return "", fmt.Errorf("OSS Endpoint不能为空")
	}
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed.Scheme != "" && parsed.Host != "" {
		return trimmed, nil
	}
	parsed, err = url.Parse("//" + trimmed)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("无效的 OSS Endpoint: %s", endpoint)
	}
	scheme := "https"
	if disableSSL {
		scheme = "http"
	}
	return scheme + "://" + parsed.Host + strings.TrimSuffix(parsed.Path, "/"), nil
}

// contextReader 让上传过程响应上下文取消
type contextReader struct {
	ctx    context.Context
	reader io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.reader.Read(p)
}

func normalizeHostName() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown-host"
	}
	host = strings.TrimSpace(host)
	host = strings.ReplaceAll(host, "/", "-")
	host = strings.ReplaceAll(host, "\\", "-")
	if host == "" {
		return "unknown-host"
	}
	return host
}
