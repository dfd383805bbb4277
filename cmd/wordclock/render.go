package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coreman2200/wordclock/internal/matrix"
	"github.com/coreman2200/wordclock/internal/palette"
	"github.com/coreman2200/wordclock/internal/settings"
)

type frameFlags struct {
	color      string
	brightness int
	corners    []int
	alarm      bool
}

func (f *frameFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.color, "color", "", "palette name or index, defaults to the stored setting")
	fs.IntVar(&f.brightness, "brightness", -1, "0..255, defaults to the stored setting")
	fs.IntSliceVar(&f.corners, "corner", nil, "corner minute LEDs to light (0..3)")
	fs.BoolVar(&f.alarm, "alarm", false, "light the alarm LED")
}

// look is the color and brightness a command draws with. A negative field follows the stored record.
type look struct {
	color      int
	brightness int
}

func (l look) resolve(r settings.Record) (color, brightness int) {
	color, brightness = int(r.Color), int(r.Brightness)
	if l.color >= 0 {
		color = l.color
	}
	if l.brightness >= 0 {
		brightness = l.brightness
	}
	return color, brightness
}

// build parses the rows and the color and brightness flags. Nothing is read from or written to the store.
func (f *frameFlags) build(rows []string) (matrix.Matrix, look, error) {
	lk := look{color: -1, brightness: f.brightness}
	m, err := matrix.Parse(rows)
	if err != nil {
		return m, lk, err
	}
	for _, c := range f.corners {
		if c < 0 || c >= matrix.Corners {
			return m, lk, fmt.Errorf("corner %d not in [0,%d)", c, matrix.Corners)
		}
		m.SetCorner(c)
	}
	if f.alarm {
		m.SetAlarm()
	}
	if f.color != "" {
		if i, ok := palette.Index(f.color); ok {
			lk.color = i
		} else if _, err := fmt.Sscan(f.color, &lk.color); err != nil || lk.color < 0 {
			return m, lk, fmt.Errorf("%w: %q", palette.ErrInvalidColorIndex, f.color)
		}
	}
	return m, lk, nil
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		ff     frameFlags
		dryRun bool
		steps  int
		dump   bool
	)
	cmd := &cobra.Command{
		Use:   "render [row0 row1 ... row15]",
		Short: "Render one screen matrix to the strip",
		Long: "Rows are 16 bit masks in 0b, 0x or decimal notation, row 0 first. " +
			"Bit x of row y lights column x of row y; bit 4 of rows 0..4 are the corners and the alarm.",
		Args: cobra.MaximumNArgs(matrix.Rows),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				a.cfg.Driver = "dry"
			}
			store, closeStore, err := a.openSettings()
			if err != nil {
				return err
			}
			defer closeStore()

			m, lk, err := ff.build(args)
			if err != nil {
				return err
			}
			color, brightness := lk.resolve(store.Record())
			drv, err := a.openStrip()
			if err != nil {
				return err
			}
			defer drv.Close()
			e, err := a.newEngine(drv)
			if err != nil {
				return err
			}
			if dump {
				fmt.Fprint(cmd.OutOrStdout(), m.String())
			}
			if err := e.Transition(m, color, brightness, steps); err != nil {
				return err
			}
			a.log.Info().
				Str("driver", drv.Signature()).
				Str("color", palette.Name(color)).
				Int("brightness", brightness).
				Float64("total_ms", e.Last.TotalMS).
				Msg("frame shown")
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "record the frame instead of driving the strip")
	cmd.Flags().IntVar(&steps, "steps", 0, "fade steps from the current frame")
	cmd.Flags().BoolVar(&dump, "dump", false, "print the matrix rows")
	return cmd
}
