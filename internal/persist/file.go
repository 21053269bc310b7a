package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileSink stores each collection as a JSON file in a directory.
type FileSink struct {
	dir string
	mu  sync.Mutex
}

// NewFileSink creates the directory if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

func (f *FileSink) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

// Load implements Sink.
func (f *FileSink) Load(name string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Save implements Sink. The file is replaced atomically.
func (f *FileSink) Save(name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, "."+name+"-*")
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
	if err := os.Rename(tmpName, f.path(name)); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
