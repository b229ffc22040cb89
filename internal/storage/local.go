package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/electric-coding/artifactstore/internal/paths"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

type LocalBackend struct {
	logger *zap.Logger
}

func NewLocal(logger *zap.Logger) *LocalBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalBackend{logger: logger}
}

func (b *LocalBackend) Kind() paths.Kind {
	return paths.Filesystem
}

func (b *LocalBackend) ReadAll(fullPath string) ([]byte, error) {
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fsError("read", fullPath, err)
	}
	return data, nil
}

func (b *LocalBackend) WriteAll(fullPath string, data []byte, _ string) error {
	if err := ensureParent(fullPath); err != nil {
		return err
	}
	if err := os.WriteFile(fullPath, data, filePerm); err != nil {
		return fsError("write", fullPath, err)
	}
	return nil
}

func (b *LocalBackend) Exists(fullPath string) bool {
	_, err := os.Stat(fullPath)
	return err == nil
}

func (b *LocalBackend) Stat(fullPath string) (EntryType, error) {
	info, err := os.Stat(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Missing, nil
		}
		return Missing, fsError("stat", fullPath, err)
	}
	if info.IsDir() {
		return Directory, nil
	}
	return File, nil
}

func (b *LocalBackend) Remove(fullPath string) error {
	info, err := os.Lstat(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fsError("delete", fullPath, err)
	}

	if info.IsDir() {
		err = os.RemoveAll(fullPath)
	} else {
		err = os.Remove(fullPath)
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fsError("delete", fullPath, err)
	}
	return nil
}

func (b *LocalBackend) Copy(srcFull, destFull string) error {
	info, err := os.Stat(srcFull)
	if err != nil {
		return fsError("copy", srcFull, err)
	}
	if !info.IsDir() {
		return copyFile(srcFull, destFull, info)
	}

	return filepath.WalkDir(srcFull, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fsError("copy", path, err)
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcFull, path)
		if err != nil {
			return fsError("copy", path, err)
		}
		fileInfo, err := os.Stat(path)
		if err != nil {
			return fsError("copy", path, err)
		}
		if !fileInfo.Mode().IsRegular() {
			return nil
		}
		return copyFile(path, filepath.Join(destFull, rel), fileInfo)
	})
}

func copyFile(src, dest string, info fs.FileInfo) error {
	if err := ensureParent(dest); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return fsError("copy", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fsError("copy", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fsError("copy", dest, err)
	}
	if err := out.Close(); err != nil {
		return fsError("copy", dest, err)
	}

	_ = os.Chtimes(dest, info.ModTime(), info.ModTime())
	return nil
}

// List walks the directory at prefix and returns the regular files whose
// names end in suffix. Entries that cannot be read are skipped.
func (b *LocalBackend) List(prefix, suffix string) ([]string, error) {
	info, err := os.Stat(prefix)
	if err != nil || !info.IsDir() {
		return []string{}, nil
	}

	files := make([]string, 0)
	walkErr := filepath.WalkDir(prefix, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			b.logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() && path != prefix {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			target, statErr := os.Stat(path)
			if statErr != nil || !target.Mode().IsRegular() {
				return nil
			}
		}
		if suffix != "" && !strings.HasSuffix(d.Name(), suffix) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		b.logger.Warn("list files failed", zap.String("prefix", prefix), zap.Error(walkErr))
		return []string{}, nil
	}

	sort.Strings(files)
	return files, nil
}

func ensureParent(fullPath string) error {
	dir := filepath.Dir(fullPath)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fsError("create directory", dir, err)
	}
	return nil
}
