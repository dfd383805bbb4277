package strip

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"

	"github.com/coreman2200/wordclock/internal/palette"
)

var ErrUnknownDriver = errors.New("unknown strip driver")

// Driver is the LED strip capability the renderer writes to.
type Driver interface {
	// SetPixel stages color c at physical index i. Indices off the strip are ignored.
	SetPixel(i int, c palette.Color)
	// Clear stages every LED as off.
	Clear()
	// Show flushes the staged frame to hardware.
	Show() error
	Signature() string
	Close() error
}

// Buffer is the staged frame shared by the drivers.
type Buffer []palette.Color

func NewBuffer(count int) Buffer {
	return make(Buffer, count)
}

func (b Buffer) SetPixel(i int, c palette.Color) {
	if i < 0 || i >= len(b) {
		return
	}
	b[i] = c
}

func (b Buffer) Clear() {
	for i := range b {
		b[i] = palette.Off
	}
}

// Bytes packs the frame as RGB, or as RGBW with the white channel extracted.
func (b Buffer) Bytes(dst []byte, rgbw bool) []byte {
	ch := 3
	if rgbw {
		ch = 4
	}
	if cap(dst) < len(b)*ch {
		dst = make([]byte, len(b)*ch)
	}
	dst = dst[:len(b)*ch]
	for i, c := range b {
		if rgbw {
			c = c.RGBW()
			dst[i*4+0], dst[i*4+1], dst[i*4+2], dst[i*4+3] = c.R, c.G, c.B, c.W
			continue
		}
		dst[i*3+0], dst[i*3+1], dst[i*3+2] = c.R, c.G, c.B
	}
	return dst
}

// Options selects and sizes the one driver of a build.
type Options struct {
	Driver     string
	Count      int
	RGBW       bool
	SPIPort    string
	SPISpeedHz int
	// Fallback opens the console driver when the SPI port is missing.
	Fallback bool
	// Out receives the recorder summaries of the "dry" driver.
	Out io.Writer
}

// Open builds the driver named by o.Driver. host.Init must have run for SPI drivers.
func Open(o Options, log zerolog.Logger) (Driver, error) {
	if o.Count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", o.Count)
	}
	name := strings.ToLower(o.Driver)
	switch name {
	case "console", "sim":
		return NewConsole(o.Count), nil
	case "dry":
		return &Recorder{Count: o.Count, Out: o.Out}, nil
	case "neopixel", "ws2812", "ws2812b", "sk6812", "apa102", "dotstar", "sk9822", "lpd8806":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, o.Driver)
	}

	p, err := spireg.Open(o.SPIPort)
	if err != nil {
		if o.Fallback {
			log.Warn().Err(err).Str("driver", name).Str("port", o.SPIPort).
				Msg("SPI port not found; printing at the console")
			return NewConsole(o.Count), nil
		}
		return nil, fmt.Errorf("open spi port %q: %w", o.SPIPort, err)
	}

	var d Driver
	freq := physic.Frequency(o.SPISpeedHz) * physic.Hertz
	switch name {
	case "apa102", "dotstar", "sk9822":
		d, err = NewAPA102(p, o.Count, freq)
	case "lpd8806":
		d, err = NewLPD8806(p, o.Count, o.RGBW, freq)
	default:
		d, err = NewNRZ(p, o.Count, o.RGBW, freq)
	}
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	log.Info().Str("driver", d.Signature()).Int("count", o.Count).Bool("rgbw", o.RGBW).Msg("strip driver ready")
	return &closer{Driver: d, port: p}, nil
}

// closer releases the SPI port after the device.
type closer struct {
	Driver
	port spi.PortCloser
}

func (c *closer) Close() error {
	err := c.Driver.Close()
	if perr := c.port.Close(); err == nil {
		err = perr
	}
	return err
}
