package strip

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/nrzled"

	"github.com/coreman2200/wordclock/internal/palette"
)

// RefreshRate is the WS281x bit rate the SPI clock is derived from.
const RefreshRate physic.Frequency = 800

// NRZ drives WS2812/NeoPixel/SK6812 strips through periph's SPI NRZ encoder.
type NRZ struct {
	mu   sync.Mutex
	buf  Buffer
	raw  []byte
	rgbw bool
	dev  *nrzled.Dev
}

func NewNRZ(p spi.Port, count int, rgbw bool, freq physic.Frequency) (*NRZ, error) {
	if freq == 0 {
		freq = ((RefreshRate * 3) + 100) * physic.KiloHertz
	}
	ch := 3
	if rgbw {
		ch = 4
	}
	o := nrzled.Opts{
		NumPixels: count,
		Channels:  ch,
		Freq:      freq,
	}
	d, err := nrzled.NewSPI(p, &o)
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return &NRZ{buf: NewBuffer(count), rgbw: rgbw, dev: d}, nil
}

func (n *NRZ) SetPixel(i int, c palette.Color) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.buf.SetPixel(i, c)
}

func (n *NRZ) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.buf.Clear()
}

func (n *NRZ) Show() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.raw = n.buf.Bytes(n.raw, n.rgbw)
	if _, err := n.dev.Write(n.raw); err != nil {
		return fmt.Errorf("nrzled write: %w", err)
	}
	return nil
}

func (n *NRZ) Signature() string { return n.dev.String() }

func (n *NRZ) Close() error {
	return n.dev.Halt()
}
