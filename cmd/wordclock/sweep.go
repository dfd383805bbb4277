package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/coreman2200/wordclock/internal/palette"
	"github.com/coreman2200/wordclock/internal/sweep"
)

func kindNames() string {
	names := make([]string, len(sweep.Kinds))
	for i, k := range sweep.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, " | ")
}

func newSweepCmd(a *app) *cobra.Command {
	var (
		delay time.Duration
		color uint32
	)
	cmd := &cobra.Command{
		Use:   "sweep <kind>",
		Short: "Run a wiring calibration pattern: " + kindNames(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := sweep.ParseKind(args[0])
			if err != nil {
				return err
			}
			drv, err := a.openStrip()
			if err != nil {
				return err
			}
			defer drv.Close()

			r := sweep.NewRunner(sweep.Plan{Kind: kind, Color: palette.NewColor(color)}, a.layout)
			a.log.Info().Str("kind", string(kind)).Int("steps", r.Steps()).Str("layout", a.layout.Name()).Msg("sweep starting")
			ctx := cmd.Context()
			for {
				ok, err := r.Step(drv)
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(delay):
				}
			}
			drv.Clear()
			return drv.Show()
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", 250*time.Millisecond, "time each step stays lit")
	cmd.Flags().Uint32Var(&color, "rgb", 0xFFFFFF, "sweep color as 0xRRGGBB")
	return cmd
}
