package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fibertrack/pkg/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "fibertrack.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.CreateDefaultConfigFile(path); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("wrote default configuration", "path", path)
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
