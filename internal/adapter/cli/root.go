// Package cli provides command-line interface handlers for the comunicado application.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	accountFlag string
	formatFlag  string
	quietFlag   bool
	verboseFlag bool
	configFlag  string
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "comunicado",
	Short: "Terminal unified-communications client core",
	Long: `comunicado is the command-line surface over a terminal unified-communications
client's core: OAuth2 account credentials, calendar synchronization, the AI
response cache, and keyboard binding customization.

Examples:
  comunicado auth login google              # authenticate a new account
  comunicado account list                   # list configured accounts
  comunicado cal status                     # show calendar sync status
  comunicado cal sync work-calendar         # force a sync pass
  comunicado cache stats                    # show AI cache statistics
  comunicado keybinding list                # list keyboard bindings`,
}

// versionCmd prints the version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("comunicado %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&accountFlag, "account", "", "use specific account")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "table", "output format (json|plain|table)")
	rootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file path")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}
