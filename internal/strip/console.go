package strip

import (
	"image"
	"sync"

	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/screen1d"

	"github.com/coreman2200/wordclock/internal/palette"
)

// Console prints the strip as one line of ANSI colored blocks.
type Console struct {
	mu     sync.Mutex
	buf    Buffer
	im     *image.NRGBA
	drawer display.Drawer
}

func NewConsole(count int) *Console {
	return newConsole(count, screen1d.New(&screen1d.Opts{X: count}))
}

func newConsole(count int, d display.Drawer) *Console {
	return &Console{
		buf:    NewBuffer(count),
		im:     image.NewNRGBA(image.Rect(0, 0, count, 1)),
		drawer: d,
	}
}

func (c *Console) SetPixel(i int, col palette.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.SetPixel(i, col)
}

func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.Clear()
}

func (c *Console) Show() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for x, col := range c.buf {
		c.im.SetNRGBA(x, 0, col.NRGBA())
	}
	return c.drawer.Draw(c.drawer.Bounds(), c.im, image.Point{})
}

func (c *Console) Signature() string { return c.drawer.String() }

func (c *Console) Close() error {
	return c.drawer.Halt()
}
