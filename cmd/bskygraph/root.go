package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"bskygraph/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bskygraph",
	Short: "Analyze the social graph of a Bluesky account",
	Long: `bskygraph fetches the complete follower and following lists of a
Bluesky account and breaks the relationships into three categories:

  mutuals              accounts that follow you and you follow back
  fans                 accounts that follow you but you don't follow back
  not following back   accounts you follow that don't follow you back

Results can be printed as a console summary or exported to JSON or CSV.

Public accounts need no authentication. Signing in with an app password
(see 'bskygraph auth login') raises the rate limits and lets you analyze
your own account with authenticated access.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet || logLevel == "error" {
			ui.SetQuietMode(true)
		}
		if noColor {
			ui.SetNoColor(true)
		}

		// Don't show logo for certain commands
		if !quiet && cmd.Name() != "version" && cmd.Name() != "help" && cmd.Name() != "completion" {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.bskygraph.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors and results")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show all output including debug logs")

	// Version template
	rootCmd.SetVersionTemplate(`bskygraph {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
