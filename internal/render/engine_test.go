package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/wordclock/internal/layout"
	"github.com/coreman2200/wordclock/internal/matrix"
	"github.com/coreman2200/wordclock/internal/palette"
	"github.com/coreman2200/wordclock/internal/strip"
)

const esIst uint16 = 0b1101110000000000

func newEngine(t *testing.T, l layout.Layout) (*Engine, *strip.Recorder) {
	t.Helper()
	drv := &strip.Recorder{Count: l.Count()}
	e, err := NewEngine(l, 0, palette.Default, drv)
	require.NoError(t, err)
	return e, drv
}

func lit(frame []palette.Color) map[int]palette.Color {
	out := map[int]palette.Color{}
	for i, c := range frame {
		if !c.IsOff() {
			out[i] = c
		}
	}
	return out
}

func TestRenderEmptyMatrixClearsStrip(t *testing.T) {
	e, drv := newEngine(t, layout.Horizontal{})
	var full matrix.Matrix
	for y := 0; y < matrix.Rows; y++ {
		full.Set(y, 0xFFFF)
	}
	require.NoError(t, e.Render(full, 0, 255))
	require.NotEmpty(t, lit(drv.Last()))

	require.NoError(t, e.Render(matrix.Matrix{}, 0, 255))
	last := drv.Last()
	require.Len(t, last, layout.NumLEDs)
	assert.Empty(t, lit(last))
	assert.Empty(t, lit(e.Frame()))
	assert.Equal(t, 2, drv.Frames)
}

func TestRenderEsIstHorizontal(t *testing.T) {
	e, drv := newEngine(t, layout.Horizontal{})
	var m matrix.Matrix
	m.Set(0, esIst)
	require.NoError(t, e.Render(m, 1, 128))

	half := palette.Color{R: 128}
	want := map[int]palette.Color{0: half, 1: half, 3: half, 4: half, 5: half}
	assert.Equal(t, want, lit(drv.Last()))
}

func TestRenderEsIstVertical(t *testing.T) {
	e, drv := newEngine(t, layout.Vertical{})
	var m matrix.Matrix
	m.Set(0, esIst)
	require.NoError(t, e.Render(m, 1, 255))

	red := palette.NewColor(0xFF0000)
	want := map[int]palette.Color{1: red, 21: red, 41: red, 42: red, 61: red}
	assert.Equal(t, want, lit(drv.Last()))
}

func TestRenderCornersStable(t *testing.T) {
	want := map[int]int{0: 111, 1: 112, 2: 113, 3: 110}
	e, drv := newEngine(t, layout.Horizontal{})
	for round := 0; round < 3; round++ {
		for corner, idx := range want {
			var m matrix.Matrix
			m.SetCorner(corner)
			require.NoError(t, e.Render(m, 0, 255))
			got := lit(drv.Last())
			require.Len(t, got, 1, "corner %d", corner)
			_, ok := got[idx]
			assert.True(t, ok, "corner %d should light %d, got %v", corner, idx, got)
		}
	}

	var m matrix.Matrix
	m.SetAlarm()
	require.NoError(t, e.Render(m, 0, 255))
	got := lit(drv.Last())
	require.Len(t, got, 1)
	_, ok := got[114]
	assert.True(t, ok)
}

func TestRenderEverythingLightsWholeStrip(t *testing.T) {
	for _, l := range []layout.Layout{layout.Horizontal{}, layout.Vertical{}} {
		t.Run(l.Name(), func(t *testing.T) {
			e, drv := newEngine(t, l)
			var m matrix.Matrix
			for y := 0; y < matrix.Rows; y++ {
				m.Set(y, 0xFFFF)
			}
			require.NoError(t, e.Render(m, 5, 255))
			assert.Len(t, lit(drv.Last()), layout.NumLEDs)
		})
	}
}

func TestRenderBrightnessEdges(t *testing.T) {
	var m matrix.Matrix
	for y := 0; y < matrix.GridRows; y++ {
		m.Set(y, 0xFFE0)
	}
	for i, want := range palette.Default {
		e, drv := newEngine(t, layout.Horizontal{})
		require.NoError(t, e.Render(m, i, 255))
		for n, c := range lit(drv.Last()) {
			require.Equal(t, want, c, "palette %d at %d", i, n)
		}
		require.Len(t, lit(drv.Last()), layout.GridCells)

		require.NoError(t, e.Render(m, i, 0))
		assert.Empty(t, lit(drv.Last()), "palette %d at zero brightness", i)
	}
}

func TestRenderRejectsBadInput(t *testing.T) {
	e, drv := newEngine(t, layout.Horizontal{})
	var m matrix.Matrix
	m.Set(0, esIst)

	assert.ErrorIs(t, e.Render(m, len(palette.Default), 100), palette.ErrInvalidColorIndex)
	assert.ErrorIs(t, e.Render(m, -1, 100), palette.ErrInvalidColorIndex)
	assert.ErrorIs(t, e.Render(m, 0, 256), ErrBrightnessRange)
	assert.ErrorIs(t, e.Render(m, 0, -1), ErrBrightnessRange)
	assert.ErrorIs(t, e.Transition(m, 0, 300, 4), ErrBrightnessRange)
	assert.Equal(t, 0, drv.Frames)
}

func TestRenderReportsShowError(t *testing.T) {
	e, drv := newEngine(t, layout.Horizontal{})
	drv.ShowErr = errors.New("bus fault")
	err := e.Render(matrix.Matrix{}, 0, 255)
	require.Error(t, err)
	assert.ErrorIs(t, err, drv.ShowErr)
}

func TestTransitionEndsOnTarget(t *testing.T) {
	e, drv := newEngine(t, layout.Horizontal{})
	var a, b matrix.Matrix
	a.Set(9, 0b0000000011100000)
	b.Set(0, esIst)

	require.NoError(t, e.Render(a, 0, 255))
	require.NoError(t, e.Transition(b, 1, 255, 4))
	assert.Equal(t, 5, drv.Frames)

	red := palette.NewColor(0xFF0000)
	want := map[int]palette.Color{0: red, 1: red, 3: red, 4: red, 5: red}
	assert.Equal(t, want, lit(drv.Last()))
	assert.Equal(t, want, lit(e.Frame()))

	// a single step is a plain render
	require.NoError(t, e.Transition(a, 0, 255, 1))
	assert.Equal(t, 6, drv.Frames)
}

func TestNewEngineValidates(t *testing.T) {
	_, err := NewEngine(nil, 0, palette.Default, &strip.Recorder{})
	assert.Error(t, err)
	_, err = NewEngine(layout.Horizontal{}, 0, nil, &strip.Recorder{})
	assert.Error(t, err)
	_, err = NewEngine(layout.Horizontal{}, 0, palette.Default, nil)
	assert.Error(t, err)
	_, err = NewEngine(layout.Horizontal{}, layout.NumLEDs-1, palette.Default, &strip.Recorder{})
	assert.Error(t, err)
}

func TestRenderLongStripKeepsTailOff(t *testing.T) {
	const count = layout.NumLEDs + 5
	drv := &strip.Recorder{Count: count}
	e, err := NewEngine(layout.Horizontal{}, count, palette.Default, drv)
	require.NoError(t, err)

	// the tail shows a stale frame left by another program
	for i := 0; i < count; i++ {
		drv.SetPixel(i, palette.NewColor(0xFFFFFF))
	}
	require.NoError(t, drv.Show())

	var m matrix.Matrix
	for y := 0; y < matrix.Rows; y++ {
		m.Set(y, 0xFFFF)
	}
	require.NoError(t, e.Transition(m, 0, 255, 3))
	last := drv.Last()
	require.Len(t, last, count)
	assert.Len(t, lit(last), layout.NumLEDs)
	for i := layout.NumLEDs; i < count; i++ {
		assert.True(t, last[i].IsOff(), "led %d", i)
	}
	assert.Len(t, e.Frame(), count)
}

func TestMixAlpha(t *testing.T) {
	n := 10
	a := make([]palette.Color, n)
	b := make([]palette.Color, n)
	dst := make([]palette.Color, n)
	for i := 0; i < n; i++ {
		a[i] = palette.Color{R: 255} // red
		b[i] = palette.Color{B: 255} // blue
	}
	Mix(dst, a, b, 0.5)
	assert.Equal(t, palette.Color{R: 128, B: 128}, dst[0])

	Mix(dst, a, b, 0)
	assert.Equal(t, a[0], dst[0])
	Mix(dst, a, b, 1)
	assert.Equal(t, b[0], dst[0])
}
