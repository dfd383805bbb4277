package nvram

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func seq(n int, start byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = start + byte(i)
	}
	return b
}

func TestFileMissingReadsZeros(t *testing.T) {
	f := &File{Path: filepath.Join(t.TempDir(), "settings.bin")}
	p := []byte{1, 2, 3, 4}
	n, err := f.ReadAt(p, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{0, 0, 0, 0}, p)
}

func TestFileWriteRead(t *testing.T) {
	dir := t.TempDir()
	f := &File{Path: filepath.Join(dir, "sub", "settings.bin")}

	_, err := f.WriteAt([]byte{0x2A, 16, 1}, 0)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{9, 9}, 5)
	require.NoError(t, err)

	got, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2A, 16, 1, 0, 0, 9, 9}, got)

	p := make([]byte, 10)
	_, err = f.ReadAt(p, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2A, 16, 1, 0, 0, 9, 9, 0, 0, 0}, p)

	// only the image is left behind
	entries, err := os.ReadDir(filepath.Dir(f.Path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMemory(t *testing.T) {
	m := NewMemory(4)
	_, err := m.WriteAt([]byte{1, 2}, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 1, 2}, m.Bytes())
	assert.Equal(t, 1, m.Writes())

	m.WriteErr = errors.New("worn out")
	_, err = m.WriteAt([]byte{7}, 0)
	assert.ErrorIs(t, err, m.WriteErr)
	assert.Equal(t, []byte{0, 0, 0, 1, 2}, m.Bytes())
	assert.Equal(t, 1, m.Writes())

	p := make([]byte, 3)
	_, err = m.ReadAt(p, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 0}, p)
}

func TestAT24Read(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: AT24DefaultAddr, W: []byte{0x01, 0x02}, R: []byte{0xAA, 0xBB, 0xCC}},
		},
		DontPanic: true,
	}
	e := NewAT24(bus, AT24DefaultAddr, 0)
	p := make([]byte, 3)
	n, err := e.ReadAt(p, 0x0102)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, p)
	require.NoError(t, bus.Close())
}

func TestAT24WritePages(t *testing.T) {
	data := seq(40, 1)
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x57, W: append([]byte{0x00, 20}, data[:12]...)},
			{Addr: 0x57, W: append([]byte{0x00, 32}, data[12:]...)},
		},
		DontPanic: true,
	}
	e := NewAT24(bus, 0x57, 256)
	var waits []time.Duration
	e.Sleep = func(d time.Duration) { waits = append(waits, d) }

	n, err := e.WriteAt(data, 20)
	require.NoError(t, err)
	assert.Equal(t, 40, n)
	assert.Equal(t, []time.Duration{at24WriteCycle, at24WriteCycle}, waits)
	require.NoError(t, bus.Close())
}

func TestAT24Bounds(t *testing.T) {
	e := NewAT24(&i2ctest.Playback{DontPanic: true}, AT24DefaultAddr, 64)
	_, err := e.WriteAt(make([]byte, 10), 60)
	assert.Error(t, err)
	_, err = e.ReadAt(make([]byte, 1), -1)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	log := zerolog.Nop()

	m, c, err := Open(Options{Kind: "memory", Size: 44}, log)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, m)
	assert.NoError(t, c.Close())

	path := filepath.Join(t.TempDir(), "s.bin")
	m, _, err = Open(Options{Kind: "FILE", Path: path}, log)
	require.NoError(t, err)
	assert.Equal(t, path, m.(*File).Path)

	_, _, err = Open(Options{Kind: "file"}, log)
	assert.Error(t, err)

	_, _, err = Open(Options{Kind: "floppy"}, log)
	assert.ErrorIs(t, err, ErrUnknownKind)
}
