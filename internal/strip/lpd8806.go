package strip

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/coreman2200/wordclock/internal/palette"
)

const lpd8806DefaultFreq = 2 * physic.MegaHertz

// LPD8806 drives LPD8806 strips, RGB or RGBW. Channels are sent G, R, B (, W)
// as 7 bit values with the high bit set, followed by one zero byte per 32 LEDs to latch.
type LPD8806 struct {
	mu       sync.Mutex
	buf      Buffer
	rgbw     bool
	channels int
	conn     spi.Conn
	send     []byte
}

func NewLPD8806(p spi.Port, count int, rgbw bool, freq physic.Frequency) (*LPD8806, error) {
	if freq == 0 {
		freq = lpd8806DefaultFreq
	}
	c, err := p.Connect(freq, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("lpd8806 connect: %w", err)
	}
	ch := 3
	if rgbw {
		ch = 4
	}
	numReset := (count + 31) / 32
	l := &LPD8806{
		buf:      NewBuffer(count),
		rgbw:     rgbw,
		channels: ch,
		conn:     c,
		send:     make([]byte, count*ch+numReset),
	}
	if err := c.Tx(make([]byte, numReset), nil); err != nil {
		return nil, fmt.Errorf("lpd8806 reset: %w", err)
	}
	return l, nil
}

func (l *LPD8806) SetPixel(i int, c palette.Color) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.SetPixel(i, c)
}

func (l *LPD8806) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.Clear()
}

func (l *LPD8806) Show() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, c := range l.buf {
		if l.rgbw {
			c = c.RGBW()
		}
		p := l.send[i*l.channels:]
		p[0] = 0x80 | c.G>>1
		p[1] = 0x80 | c.R>>1
		p[2] = 0x80 | c.B>>1
		if l.rgbw {
			p[3] = 0x80 | c.W>>1
		}
	}
	if err := l.conn.Tx(l.send, nil); err != nil {
		return fmt.Errorf("lpd8806 write: %w", err)
	}
	return nil
}

func (l *LPD8806) Signature() string {
	if l.rgbw {
		return "LPD8806RGBW"
	}
	return "LPD8806"
}

// Close blanks the strip.
func (l *LPD8806) Close() error {
	l.mu.Lock()
	l.buf.Clear()
	l.mu.Unlock()
	return l.Show()
}
