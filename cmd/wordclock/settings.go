package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/coreman2200/wordclock/internal/palette"
	"github.com/coreman2200/wordclock/internal/settings"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change the stored clock settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the stored record",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, closeStore, err := a.openSettings()
				if err != nil {
					return err
				}
				defer closeStore()
				return printRecord(cmd.OutOrStdout(), s)
			},
		},
		&cobra.Command{
			Use:   "set <key> <value> [<key> <value> ...]",
			Short: "Change settings and save: " + strings.Join(settings.Keys(), ", "),
			Args: func(cmd *cobra.Command, args []string) error {
				if len(args) == 0 || len(args)%2 != 0 {
					return fmt.Errorf("want key value pairs, got %d args", len(args))
				}
				return nil
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				s, closeStore, err := a.openSettings()
				if err != nil {
					return err
				}
				defer closeStore()
				for i := 0; i < len(args); i += 2 {
					if err := s.Apply(args[i], args[i+1]); err != nil {
						return err
					}
				}
				if err := s.Save(); err != nil {
					return err
				}
				return printRecord(cmd.OutOrStdout(), s)
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Write the default record",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, closeStore, err := a.openSettings()
				if err != nil {
					return err
				}
				defer closeStore()
				s.Reset()
				if err := s.Save(); err != nil {
					return err
				}
				return printRecord(cmd.OutOrStdout(), s)
			},
		},
	)
	return cmd
}

func printRecord(out io.Writer, s *settings.Store) error {
	r := s.Record()
	clock := func(t time.Time) string { return t.Format("15:04") }
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "state\t%s\n", s.State())
	fmt.Fprintf(w, "language\t%d\n", r.Language)
	fmt.Fprintf(w, "use_ldr\t%t\n", r.UseLdr)
	fmt.Fprintf(w, "brightness\t%d\n", r.Brightness)
	fmt.Fprintf(w, "color\t%d (%s)\n", r.Color, palette.Name(int(r.Color)))
	fmt.Fprintf(w, "transition\t%s\n", r.Transition)
	fmt.Fprintf(w, "timeout\t%d\n", r.Timeout)
	fmt.Fprintf(w, "es_ist\t%t\n", r.EsIst)
	fmt.Fprintf(w, "alarm1\t%t\t%s\n", r.Alarm1, clock(r.AlarmTime1))
	fmt.Fprintf(w, "alarm2\t%t\t%s\n", r.Alarm2, clock(r.AlarmTime2))
	fmt.Fprintf(w, "night_off_time\t%s\n", clock(r.NightOffTime))
	fmt.Fprintf(w, "night_on_time\t%s\n", clock(r.NightOnTime))
	return w.Flush()
}
