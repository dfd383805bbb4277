package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coreman2200/wordclock/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the yaml configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "save [path]",
		Short: "Write the effective configuration, file plus flags, to path or --config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.Save(path, a.cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			a.log.Info().Str("path", path).Msg("config saved")
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	return cmd
}
