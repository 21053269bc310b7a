package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	fileSuffix  = ".json"
	tempPattern = ".tmp-*"
	// maxNameLength keeps file names under common filesystem limits.
	maxNameLength = 200
)

// diskTier stores one file per key.
type diskTier struct {
	dir string
}

func newDiskTier(dir string) (*diskTier, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &diskTier{dir: dir}, nil
}

// fileName maps a key to a file name that is safe on every platform.
func fileName(key string) string {
	name := url.PathEscape(key)
	if len(name) > maxNameLength {
		sum := sha256.Sum256([]byte(key))
		name = hex.EncodeToString(sum[:])
	}
	return name + fileSuffix
}

func (d *diskTier) path(key string) string {
	return filepath.Join(d.dir, fileName(key))
}

func (d *diskTier) read(key string) ([]byte, error) {
	return os.ReadFile(d.path(key))
}

// write replaces the file for key atomically.
func (d *diskTier) write(key string, data []byte) error {
	tmp, err := os.CreateTemp(d.dir, tempPattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, d.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func (d *diskTier) remove(key string) error {
	err := os.Remove(d.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (d *diskTier) clear() error {
	if err := os.RemoveAll(d.dir); err != nil {
		return fmt.Errorf("failed to remove cache directory: %w", err)
	}
	if err := os.MkdirAll(d.dir, 0700); err != nil {
		return fmt.Errorf("failed to recreate cache directory: %w", err)
	}
	return nil
}

func (d *diskTier) stats() (entries int, bytes int64, err error) {
	files, err := os.ReadDir(d.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), fileSuffix) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		entries++
		bytes += info.Size()
	}
	return entries, bytes, nil
}
