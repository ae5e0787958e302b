// Package cli holds the anihub-web commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/anihub/anihub-web/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "anihub-web",
	Short:         "Server-rendered web front end for the AniHub backend",
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, inspectCmd, spinCmd)
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger := config.GetLogger()
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
