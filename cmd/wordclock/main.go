package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"periph.io/x/host/v3"

	"github.com/coreman2200/wordclock/internal/config"
	"github.com/coreman2200/wordclock/internal/layout"
	"github.com/coreman2200/wordclock/internal/logging"
	"github.com/coreman2200/wordclock/internal/nvram"
	"github.com/coreman2200/wordclock/internal/palette"
	"github.com/coreman2200/wordclock/internal/preview"
	"github.com/coreman2200/wordclock/internal/render"
	"github.com/coreman2200/wordclock/internal/settings"
	"github.com/coreman2200/wordclock/internal/strip"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags and config are merged.
type app struct {
	configPath string
	pretty     bool
	cfg        *config.Config
	log        zerolog.Logger
	layout     layout.Layout
	out        io.Writer
	hostReady  bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:           "wordclock",
		Short:         "Drive a 115 LED word clock panel",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "wordclock.yaml", "path to the yaml configuration")
	pf.BoolVar(&a.pretty, "pretty", true, "human readable console logs")
	pf.String("layout", "", "panel wiring: "+strings.Join(layout.Names(), " | "))
	pf.String("driver", "", "strip driver: neopixel | apa102 | lpd8806 | console | dry | preview")
	pf.String("color-family", "", "rgb | rgbw")
	pf.String("spi-dev", "", "SPI port, e.g. /dev/spidev0.0")
	pf.Int("spi-speed", 0, "SPI clock in Hz")
	pf.Bool("fallback", true, "use the console when the SPI port is missing")
	pf.String("nvram", "", "settings medium: file | memory | at24")
	pf.String("nvram-path", "", "settings image file")
	pf.String("log-level", "", "trace | debug | info | warn | error")
	pf.Float64("power-limit", 0, "current budget in mA, 0 disables the limiter")

	root.AddCommand(
		newRenderCmd(a),
		newSweepCmd(a),
		newServeCmd(a),
		newSettingsCmd(a),
		newConfigCmd(a),
	)
	return root
}

// overrides maps flags set on the command line onto config keys.
var overrides = map[string]func(c *config.Config, v string) error{
	"layout":       func(c *config.Config, v string) error { c.Layout = v; return nil },
	"driver":       func(c *config.Config, v string) error { c.Driver = v; return nil },
	"color-family": func(c *config.Config, v string) error { c.ColorFamily = v; return nil },
	"spi-dev":      func(c *config.Config, v string) error { c.SPI.Dev = v; return nil },
	"spi-speed":    func(c *config.Config, v string) (err error) { c.SPI.SpeedHz, err = strconv.Atoi(v); return },
	"fallback":     func(c *config.Config, v string) (err error) { c.Fallback, err = strconv.ParseBool(v); return },
	"nvram":        func(c *config.Config, v string) error { c.NVRAM.Kind = v; return nil },
	"nvram-path":   func(c *config.Config, v string) error { c.NVRAM.Path = v; return nil },
	"log-level":    func(c *config.Config, v string) error { c.LogLevel = v; return nil },
	"power-limit": func(c *config.Config, v string) (err error) {
		c.Power.LimitMA, err = strconv.ParseFloat(v, 64)
		return
	},
}

// setup merges the config file and flags. Flags set on the command line win.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}
	var ferr error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if set, ok := overrides[f.Name]; ok && ferr == nil {
			if err := set(cfg, f.Value.String()); err != nil {
				ferr = fmt.Errorf("--%s: %w", f.Name, err)
			}
		}
	})
	if ferr != nil {
		return ferr
	}

	log, err := logging.Setup(cfg.LogLevel, a.pretty, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", a.configPath, err)
	}
	l, err := layout.ByName(cfg.Layout)
	if err != nil {
		return err
	}
	a.cfg, a.log, a.layout = cfg, log, l
	return nil
}

// initHost loads the periph host drivers once, only when hardware is used.
func (a *app) initHost() error {
	if a.hostReady {
		return nil
	}
	state, err := host.Init()
	if err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}
	a.log.Debug().Int("loaded", len(state.Loaded)).Int("skipped", len(state.Skipped)).Msg("periph host ready")
	a.hostReady = true
	return nil
}

func hardwareDriver(name string) bool {
	switch strings.ToLower(name) {
	case "console", "sim", "dry", "preview":
		return false
	}
	return true
}

// openStrip returns the configured driver. "preview" is backed by the hub alone.
func (a *app) openStrip() (strip.Driver, error) {
	name := a.cfg.Driver
	if strings.EqualFold(name, "preview") {
		return preview.NewHub(a.cfg.NumLEDs, a.layout.Name(), a.log), nil
	}
	if hardwareDriver(name) {
		if err := a.initHost(); err != nil {
			if !a.cfg.Fallback {
				return nil, err
			}
			a.log.Warn().Err(err).Msg("no hardware access; printing at the console")
			name = "console"
		}
	}
	return strip.Open(strip.Options{
		Driver:     name,
		Count:      a.cfg.NumLEDs,
		RGBW:       a.cfg.RGBW(),
		SPIPort:    a.cfg.SPI.Dev,
		SPISpeedHz: a.cfg.SPI.SpeedHz,
		Fallback:   a.cfg.Fallback,
		Out:        a.out,
	}, a.log)
}

func (a *app) openSettings() (*settings.Store, func(), error) {
	if strings.EqualFold(a.cfg.NVRAM.Kind, "at24") {
		if err := a.initHost(); err != nil {
			return nil, nil, err
		}
	}
	m, c, err := nvram.Open(nvram.Options{
		Kind:    a.cfg.NVRAM.Kind,
		Path:    a.cfg.NVRAM.Path,
		I2CBus:  a.cfg.NVRAM.I2CBus,
		I2CAddr: a.cfg.NVRAM.I2CAddr,
		Size:    settings.Size,
	}, a.log)
	if err != nil {
		return nil, nil, err
	}
	s, err := settings.Open(m, a.log)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return s, func() { c.Close() }, nil
}

func (a *app) newEngine(drv strip.Driver) (*render.Engine, error) {
	e, err := render.NewEngine(a.layout, a.cfg.NumLEDs, palette.Default, drv)
	if err != nil {
		return nil, err
	}
	e.UseLimiter(a.cfg.Power.LimitMA, a.cfg.Power.ChanMA)
	return e, nil
}
