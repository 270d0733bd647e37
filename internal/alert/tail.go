package alert

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
)

const (
	// TailMaxBytes 为一次读取告警日志尾部的字节上限
	TailMaxBytes = 512 * 1024
	// TailMaxLines 为一次返回的最大行数
	TailMaxLines = 400

	tailChunk = 8 * 1024
)

// Tail 从文件末尾向前按块读取，返回最多 maxLines 行，日志尚未创建时返回空列表
func (l *AlertLog) Tail(maxLines int) ([]string, error) {
	if l == nil || l.path == "" {
		return nil, errors.New("告警日志路径为空")
	}
	if maxLines <= 0 || maxLines > TailMaxLines {
		maxLines = TailMaxLines
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	end := info.Size()
	limit := end - TailMaxBytes
	if limit < 0 {
		limit = 0
	}
	var buf []byte
	offset := end
	// 多读一行以便丢弃被截断的首行
	for offset > limit && bytes.Count(buf, []byte{'\n'}) <= maxLines {
		size := int64(tailChunk)
		if offset-limit < size {
			size = offset - limit
		}
		offset -= size
		chunk := make([]byte, size)
		if _, err := f.ReadAt(chunk, offset); err != nil && err != io.EOF {
			return nil, err
		}
		buf = append(chunk, buf...)
	}

	text := strings.TrimRight(string(buf), "\r\n")
	if text == "" {
		return []string{}, nil
	}
	lines := strings.Split(text, "\n")
	if offset > 0 {
		lines = lines[1:]
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}
	return lines, nil
}
