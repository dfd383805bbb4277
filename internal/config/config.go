package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/wordclock/internal/layout"
)

type PowerCfg struct {
	LimitMA float64 `yaml:"limit_ma"` // 0 disables the limiter
	ChanMA  float64 `yaml:"chan_ma"`  // per channel at full scale
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0, empty for the first port
	SpeedHz int    `yaml:"speed_hz"` // 0 keeps the chip default
}

type NVRAM struct {
	Kind    string `yaml:"kind"` // file | memory | at24
	Path    string `yaml:"path"`
	I2CBus  string `yaml:"i2c_bus"`
	I2CAddr uint16 `yaml:"i2c_addr"`
}

type Preview struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Layout      string `yaml:"layout"`       // horizontal | vertical
	ColorFamily string `yaml:"color_family"` // rgb | rgbw
	NumLEDs     int    `yaml:"num_leds"`
	Driver      string `yaml:"driver"` // neopixel | apa102 | lpd8806 | console | preview
	Fallback    bool   `yaml:"fallback"`
	FPS         int    `yaml:"fps"`
	LogLevel    string `yaml:"log_level"`

	SPI     SPI      `yaml:"spi,omitempty"`
	NVRAM   NVRAM    `yaml:"nvram"`
	Power   PowerCfg `yaml:"power"`
	Preview Preview  `yaml:"preview"`
}

func Default() *Config {
	return &Config{
		Layout:      "horizontal",
		ColorFamily: "rgb",
		NumLEDs:     layout.NumLEDs,
		Driver:      "neopixel",
		Fallback:    true,
		FPS:         30,
		LogLevel:    "info",
		NVRAM: NVRAM{
			Kind:    "file",
			Path:    "wordclock.nvram",
			I2CBus:  "",
			I2CAddr: 0x57,
		},
		Power:   PowerCfg{ChanMA: 20},
		Preview: Preview{Addr: ":8080"},
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	c, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return c, err
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// RGBW reports whether the strip has a white channel.
func (c *Config) RGBW() bool {
	return strings.EqualFold(c.ColorFamily, "rgbw")
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := layout.ByName(c.Layout); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.ColorFamily) {
	case "rgb", "rgbw":
	default:
		errs = append(errs, fmt.Errorf("color_family %q: want rgb or rgbw", c.ColorFamily))
	}
	if c.NumLEDs < layout.NumLEDs {
		errs = append(errs, fmt.Errorf("num_leds %d: the clock needs %d", c.NumLEDs, layout.NumLEDs))
	}
	if c.FPS <= 0 || c.FPS > 240 {
		errs = append(errs, fmt.Errorf("fps %d not in (0,240]", c.FPS))
	}
	if c.Power.LimitMA < 0 || c.Power.ChanMA < 0 {
		errs = append(errs, errors.New("power values must not be negative"))
	}
	return errors.Join(errs...)
}
