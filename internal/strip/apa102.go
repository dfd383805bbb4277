package strip

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/apa102"

	"github.com/coreman2200/wordclock/internal/palette"
)

// APA102 drives clocked APA102/DotStar/SK9822 strips.
type APA102 struct {
	mu  sync.Mutex
	buf Buffer
	raw []byte
	dev *apa102.Dev
}

// NewAPA102 opens the strip at full intensity; brightness is already applied by the renderer.
// A non-zero freq caps the port speed before the device connects.
func NewAPA102(p spi.PortCloser, count int, freq physic.Frequency) (*APA102, error) {
	if freq != 0 {
		if err := p.LimitSpeed(freq); err != nil {
			return nil, fmt.Errorf("apa102 speed: %w", err)
		}
	}
	o := apa102.DefaultOpts
	o.NumPixels = count
	o.Intensity = 255
	d, err := apa102.New(p, &o)
	if err != nil {
		return nil, fmt.Errorf("apa102: %w", err)
	}
	return &APA102{buf: NewBuffer(count), dev: d}, nil
}

func (a *APA102) SetPixel(i int, c palette.Color) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.buf.SetPixel(i, c)
}

func (a *APA102) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.buf.Clear()
}

func (a *APA102) Show() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.raw = a.buf.Bytes(a.raw, false)
	if _, err := a.dev.Write(a.raw); err != nil {
		return fmt.Errorf("apa102 write: %w", err)
	}
	return nil
}

func (a *APA102) Signature() string { return a.dev.String() }

func (a *APA102) Close() error {
	return a.dev.Halt()
}
