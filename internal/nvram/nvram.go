// Package nvram provides the non-volatile media the settings record lives on.
package nvram

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/i2c/i2creg"
)

var ErrUnknownKind = errors.New("unknown nvram kind")

// Medium is a fixed-offset byte store. Whole records are read and written at offset 0.
type Medium interface {
	io.ReaderAt
	io.WriterAt
}

// Options selects and configures a medium.
type Options struct {
	Kind    string // file | memory | at24
	Path    string
	I2CBus  string
	I2CAddr uint16
	Size    int
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the configured medium and a closer for any bus it holds.
func Open(o Options, log zerolog.Logger) (Medium, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(o.Kind)) {
	case "", "file":
		if o.Path == "" {
			return nil, nil, errors.New("nvram: file path is empty")
		}
		log.Debug().Str("path", o.Path).Msg("nvram file")
		return &File{Path: o.Path}, nopCloser{}, nil
	case "memory", "mem":
		log.Debug().Msg("nvram in memory, settings are lost on exit")
		return NewMemory(o.Size), nopCloser{}, nil
	case "at24", "eeprom":
		bus, err := i2creg.Open(o.I2CBus)
		if err != nil {
			return nil, nil, fmt.Errorf("nvram: open i2c bus %q: %w", o.I2CBus, err)
		}
		addr := o.I2CAddr
		if addr == 0 {
			addr = AT24DefaultAddr
		}
		log.Debug().Str("bus", bus.String()).Str("addr", "0x"+strconv.FormatUint(uint64(addr), 16)).Msg("nvram at24")
		return NewAT24(bus, addr, o.Size), bus, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownKind, o.Kind)
	}
}

var _ Medium = (*File)(nil)
var _ Medium = (*Memory)(nil)
var _ Medium = (*AT24)(nil)
