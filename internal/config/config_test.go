package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/wordclock/internal/layout"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, layout.NumLEDs, c.NumLEDs)
	assert.False(t, c.RGBW())
}

func TestLoadOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordclock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
layout: vertical
color_family: RGBW
driver: lpd8806
spi:
  dev: /dev/spidev0.1
  speed_hz: 1000000
nvram:
  kind: at24
  i2c_bus: "1"
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "vertical", c.Layout)
	assert.True(t, c.RGBW())
	assert.Equal(t, "lpd8806", c.Driver)
	assert.Equal(t, 1000000, c.SPI.SpeedHz)
	assert.Equal(t, "at24", c.NVRAM.Kind)
	assert.Equal(t, uint16(0x57), c.NVRAM.I2CAddr)
	assert.Equal(t, 30, c.FPS)
	require.NoError(t, c.Validate())
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordclock.yaml")
	c := Default()
	c.Power.LimitMA = 2500
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestLoadOrDefault(t *testing.T) {
	c, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("layout: [\n"), 0644))
	_, err = LoadOrDefault(bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Layout = "diagonal"
	c.ColorFamily = "cmyk"
	c.NumLEDs = 100
	c.FPS = 0
	err := c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, layout.ErrUnknownLayout)
	assert.Contains(t, err.Error(), "color_family")
	assert.Contains(t, err.Error(), "num_leds")
	assert.Contains(t, err.Error(), "fps")
}
