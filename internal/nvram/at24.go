package nvram

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

const (
	AT24DefaultAddr = 0x50
	AT24PageSize    = 32
	// AT24C32 on the common DS3231 RTC boards.
	AT24DefaultSize = 4096
	at24WriteCycle  = 5 * time.Millisecond
)

// AT24 is an AT24Cxx serial EEPROM with a 16-bit word address.
type AT24 struct {
	d        *i2c.Dev
	size     int
	pageSize int
	// Sleep waits out the internal write cycle after each page.
	Sleep func(time.Duration)
}

func NewAT24(bus i2c.Bus, addr uint16, size int) *AT24 {
	if size <= 0 {
		size = AT24DefaultSize
	}
	return &AT24{
		d:        &i2c.Dev{Bus: bus, Addr: addr},
		size:     size,
		pageSize: AT24PageSize,
		Sleep:    time.Sleep,
	}
}

func (e *AT24) String() string {
	return fmt.Sprintf("AT24{%s, 0x%02x, %dB}", e.d.Bus, e.d.Addr, e.size)
}

func (e *AT24) bounds(n int, off int64) error {
	if off < 0 || off+int64(n) > int64(e.size) {
		return fmt.Errorf("at24: range [%d,%d) outside %d bytes", off, off+int64(n), e.size)
	}
	return nil
}

// ReadAt reads sequentially from the word address off.
func (e *AT24) ReadAt(p []byte, off int64) (int, error) {
	if err := e.bounds(len(p), off); err != nil {
		return 0, err
	}
	if err := e.d.Tx([]byte{byte(off >> 8), byte(off)}, p); err != nil {
		return 0, wrap(err)
	}
	return len(p), nil
}

// WriteAt splits p on page boundaries, one write cycle per page.
func (e *AT24) WriteAt(p []byte, off int64) (int, error) {
	if err := e.bounds(len(p), off); err != nil {
		return 0, err
	}
	done := 0
	buf := make([]byte, 2+e.pageSize)
	for done < len(p) {
		addr := off + int64(done)
		n := e.pageSize - int(addr%int64(e.pageSize))
		if rest := len(p) - done; n > rest {
			n = rest
		}
		buf[0], buf[1] = byte(addr>>8), byte(addr)
		copy(buf[2:], p[done:done+n])
		if err := e.d.Tx(buf[:2+n], nil); err != nil {
			return done, wrap(err)
		}
		if e.Sleep != nil {
			e.Sleep(at24WriteCycle)
		}
		done += n
	}
	return done, nil
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("at24: %w", err)
}
