// Package cli implements the gsuite command line interface. It wires the
// configured token store, credential source, and refresher into the auth
// service and exposes the credential lifecycle as commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/PabloAlaniz/google-suite/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "gsuite",
	Short: "Google Workspace SDK and CLI",
	Long: `gsuite manages Google Workspace credentials and API access.

It handles the OAuth consent flow, token storage (SQLite or Google Secret
Manager), and transparent refresh, so Gmail, Calendar, Drive, and Sheets
clients always hold a valid token.

Configuration comes from ~/.gsuite/config.toml and GSUITE_* environment
variables. Run 'gsuite configure' to set up interactively.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.gsuite)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
