// 本文件用于应用自身的分级日志，与告警日志文件相互独立
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"host-monitor/pkg/utils"
)

// Level 表示日志级别
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

var (
	mu           sync.RWMutex
	activeLogger = log.New(os.Stderr, "", log.LstdFlags)
	minLevel     = LevelInfo
	logCloser    io.Closer
)

// ParseLevel 解析配置中的级别名，空串按 info 处理
func ParseLevel(value string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("未知日志级别: %q", value)
	}
}

// InitLogger 初始化日志系统，logFile 非空时同时写入文件
func InitLogger(level, logFile string) error {
	parsed, err := ParseLevel(level)
	if err != nil {
		return err
	}
	out, closer, err := buildLogWriter(logFile)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if logCloser != nil {
		_ = logCloser.Close()
	}
	activeLogger = log.New(out, "", log.LstdFlags)
	minLevel = parsed
	logCloser = closer
	return nil
}

func buildLogWriter(logFile string) (io.Writer, io.Closer, error) {
	if logFile == "" {
		return os.Stderr, nil, nil
	}
	if err := utils.EnsureParentDir(logFile); err != nil {
		return nil, nil, fmt.Errorf("创建日志目录失败: %w", err)
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	return io.MultiWriter(os.Stderr, file), file, nil
}

// SetOutput 替换日志输出，测试中用于静默或捕获
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	activeLogger = log.New(w, "", log.LstdFlags)
}

// SetLevel 调整最低输出级别
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = level
}

// Close 关闭日志文件
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	activeLogger = log.New(os.Stderr, "", log.LstdFlags)
	return err
}

func Debug(format string, v ...interface{}) { logf(LevelDebug, format, v...) }

func Info(format string, v ...interface{}) { logf(LevelInfo, format, v...) }

func Warn(format string, v ...interface{}) { logf(LevelWarn, format, v...) }

func Error(format string, v ...interface{}) { logf(LevelError, format, v...) }

func logf(level Level, format string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if level < minLevel {
		return
	}
	activeLogger.Printf("["+level.String()+"] "+format, v...)
}
