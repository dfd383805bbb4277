package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/wordclock/internal/layout"
	"github.com/coreman2200/wordclock/internal/matrix"
	"github.com/coreman2200/wordclock/internal/palette"
)

func TestLimitBudgetClamp(t *testing.T) {
	// 10 LEDs all white, 60mA each
	buf := make([]palette.Color, 10)
	for i := range buf {
		buf[i] = palette.NewColor(0xFFFFFF)
	}
	Limit(buf, 300, 20)
	assert.LessOrEqual(t, Current(buf, 20), 300.1)
}

func TestLimitUnderKneeUntouched(t *testing.T) {
	buf := []palette.Color{palette.NewColor(0xFF0000)}
	Limit(buf, 1000, 20)
	assert.Equal(t, palette.NewColor(0xFF0000), buf[0])

	Limit(buf, 0, 20)
	assert.Equal(t, palette.NewColor(0xFF0000), buf[0])
}

func TestEngineLimiter(t *testing.T) {
	e, drv := newEngine(t, layout.Horizontal{})
	e.UseLimiter(2000, 20)

	var m matrix.Matrix
	for y := 0; y < matrix.Rows; y++ {
		m.Set(y, 0xFFFF)
	}
	require.NoError(t, e.Render(m, 0, 255))
	assert.LessOrEqual(t, Current(drv.Last(), 20), 2000.1)

	// disabled again, full white is exact
	e.UseLimiter(0, 0)
	require.NoError(t, e.Render(m, 0, 255))
	assert.Equal(t, palette.NewColor(0xFFFFFF), drv.Last()[0])
}
