package nvram

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File keeps the image in a regular file. A missing file reads as zeros.
// Writes replace the whole file through a temp file and a rename.
type File struct {
	Path string

	mu sync.Mutex
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("nvram: negative offset %d", off)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	img, err := f.load()
	if err != nil {
		return 0, err
	}
	n := 0
	if off < int64(len(img)) {
		n = copy(p, img[off:])
	}
	clear(p[n:])
	return len(p), nil
}

func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("nvram: negative offset %d", off)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	img, err := f.load()
	if err != nil {
		return 0, err
	}
	if end := off + int64(len(p)); end > int64(len(img)) {
		img = append(img, make([]byte, end-int64(len(img)))...)
	}
	copy(img[off:], p)
	if err := f.replace(img); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (f *File) load() ([]byte, error) {
	img, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("nvram: read %s: %w", f.Path, err)
	}
	return img, nil
}

func (f *File) replace(img []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("nvram: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*")
	if err != nil {
		return fmt.Errorf("nvram: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(img); err != nil {
		tmp.Close()
		return fmt.Errorf("nvram: write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("nvram: sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("nvram: %w", err)
	}
	if err := os.Rename(name, f.Path); err != nil {
		return fmt.Errorf("nvram: rename: %w", err)
	}
	return nil
}
