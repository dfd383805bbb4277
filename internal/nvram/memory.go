package nvram

import (
	"fmt"
	"sync"
)

// Memory is a volatile medium, used for dry runs and tests.
type Memory struct {
	// WriteErr is returned by WriteAt when set, the contents stay untouched.
	WriteErr error

	mu     sync.Mutex
	data   []byte
	writes int
}

func NewMemory(size int) *Memory {
	return &Memory{data: make([]byte, size)}
}

func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("nvram: negative offset %d", off)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	if off < int64(len(m.data)) {
		n = copy(p, m.data[off:])
	}
	clear(p[n:])
	return len(p), nil
}

func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("nvram: negative offset %d", off)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	if end := off + int64(len(p)); end > int64(len(m.data)) {
		m.data = append(m.data, make([]byte, end-int64(len(m.data)))...)
	}
	copy(m.data[off:], p)
	m.writes++
	return len(p), nil
}

// Bytes returns a copy of the contents.
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
