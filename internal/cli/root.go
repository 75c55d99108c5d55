// Package cli implements the fibertrack command-line interface.
//
// The commands are:
//   - build: reconstruct fibers from a tracker particle buffer
//   - config init: write a default configuration file
//
// All commands accept --verbose (-v) for debug logging. The logger travels
// to subcommands through the command context.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the fibertrack CLI with ctx and returns the first command error.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "fibertrack",
		Short:        "Reconstruct fiber tracts from global tractography particles",
		Long:         `fibertrack links the particles produced by a global tractography run into continuous fibers and reports the fibers that reach a minimum length.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("fibertrack %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newConfigCmd())

	return root
}
