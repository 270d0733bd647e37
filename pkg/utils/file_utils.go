// 本文件用于文件与路径相关的通用工具函数
package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// IsFileExists 检查文件是否存在
func IsFileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

// GetFileExtension 获取小写的文件扩展名
func GetFileExtension(filePath string) string {
	return strings.ToLower(filepath.Ext(filePath))
}

// EnsureParentDir 确保文件所在目录存在
func EnsureParentDir(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// WriteFileAtomic 先写临时文件再重命名，读者不会看到写了一半的内容
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := EnsureParentDir(path); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
