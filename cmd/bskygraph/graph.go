package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"bskygraph/pkg/analyzer"
	"bskygraph/pkg/auth"
	"bskygraph/pkg/bluesky"
	"bskygraph/pkg/config"
	"bskygraph/pkg/export"
	"bskygraph/pkg/fetcher"
	"bskygraph/pkg/logger"
	"bskygraph/pkg/ui"
)

var (
	// Graph command flags
	actorFlag     string
	handleFlag    string
	passwordFlag  string
	accountName   string
	exportFormat  string
	outputPath    string
	requestDelay  time.Duration
	httpTimeout   time.Duration
	enableRetry   bool
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [actor]",
	Short: "Fetch and categorize the social graph of a Bluesky account",
	Long: `Fetch the complete follower and following lists of a Bluesky account
and compute the mutuals, fans, and not-following-back categories.

The actor can be a handle (alice.bsky.social) or a DID (did:plc:...).
Public accounts work without credentials. To analyze with authenticated
access, sign in first with 'bskygraph auth login' or pass --handle and
--password.`,
	Example: `  # Analyze a public account and print a summary
  bskygraph graph alice.bsky.social

  # Export the full graph as JSON
  bskygraph graph alice.bsky.social --export json --output graph.json

  # Export as CSV to stdout
  bskygraph graph alice.bsky.social --export csv

  # Authenticated run with a stored account
  bskygraph graph alice.bsky.social --account myhandle.bsky.social

  # The target can also be passed as a flag
  bskygraph graph --actor alice.bsky.social

  # Slow down requests for very large accounts
  bskygraph graph alice.bsky.social --request-delay 1s`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runGraph(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	// Local flags for graph command
	graphCmd.Flags().StringVar(&actorFlag, "actor", "", "target account (alternative to the positional argument)")
	graphCmd.Flags().StringVar(&handleFlag, "handle", "", "Bluesky handle for authentication")
	graphCmd.Flags().StringVar(&passwordFlag, "password", "", "Bluesky app password for authentication")
	graphCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
	graphCmd.Flags().StringVarP(&exportFormat, "export", "e", "", "export format (json, csv)")
	graphCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (default: stdout)")
	graphCmd.Flags().DurationVar(&requestDelay, "request-delay", 400*time.Millisecond, "delay between API requests")
	graphCmd.Flags().DurationVar(&httpTimeout, "timeout", 30*time.Second, "HTTP request timeout")
	graphCmd.Flags().BoolVar(&enableRetry, "retry", false, "retry failed requests with exponential backoff")

	// Also add these flags to the root command so the default-command
	// fallback (bskygraph <actor>) accepts them too
	rootCmd.Flags().StringVar(&actorFlag, "actor", "", "target account (alternative to the positional argument)")
	rootCmd.Flags().StringVar(&handleFlag, "handle", "", "Bluesky handle for authentication")
	rootCmd.Flags().StringVar(&passwordFlag, "password", "", "Bluesky app password for authentication")
	rootCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
	rootCmd.Flags().StringVarP(&exportFormat, "export", "e", "", "export format (json, csv)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (default: stdout)")
	rootCmd.Flags().DurationVar(&requestDelay, "request-delay", 400*time.Millisecond, "delay between API requests")
	rootCmd.Flags().DurationVar(&httpTimeout, "timeout", 30*time.Second, "HTTP request timeout")
	rootCmd.Flags().BoolVar(&enableRetry, "retry", false, "retry failed requests with exponential backoff")
}

func runGraph(cmd *cobra.Command, args []string) {
	target := targetActor(args)
	if target == "" {
		ui.PrintError("Missing actor", "pass an actor argument or use --actor")
		os.Exit(1)
	}

	actor := bluesky.SanitizeActor(strings.TrimSpace(target))

	if !bluesky.IsValidActor(actor) {
		ui.PrintError("Invalid actor", fmt.Sprintf("%q is not a handle or DID", actor))
		os.Exit(1)
	}

	// Validate the export format before any network traffic
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		ui.PrintError("Invalid export format", err.Error())
		os.Exit(1)
	}

	ui.PrintInfo("Target Account", actor)

	// Build flags map from command line
	flags := make(map[string]interface{})
	if handleFlag != "" {
		flags["handle"] = handleFlag
	}
	if passwordFlag != "" {
		flags["password"] = passwordFlag
	}
	if requestDelay != 400*time.Millisecond {
		flags["request-delay"] = requestDelay
	}
	if httpTimeout != 30*time.Second {
		flags["timeout"] = httpTimeout
	}
	if enableRetry {
		flags["retry"] = true
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}
	if verbose {
		flags["log-level"] = "debug"
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	logger.Initialize(&cfg.Logging)
	logger.WithField("version", version).Info("bskygraph starting")

	// Resolve credentials when none were given on the command line
	if cfg.Bluesky.AppPassword == "" {
		resolveStoredCredentials(cfg)
	}

	client := bluesky.NewClientWithConfig(cfg, logger.GetLogger())

	// Sign in when credentials are available; graph requests then go
	// through the authenticated host.
	if cfg.Bluesky.Handle != "" && cfg.Bluesky.AppPassword != "" {
		session, err := client.Login(cfg.Bluesky.Handle, cfg.Bluesky.AppPassword)
		if err != nil {
			logger.WithError(err).Error("Login failed")
			ui.PrintError("LOGIN FAILED", err.Error())
			os.Exit(1)
		}
		logger.WithFields(map[string]interface{}{
			"handle": session.Handle,
			"did":    session.DID,
		}).Info("Authenticated session created")
		ui.PrintInfo("Signed in as", session.Handle)
	} else {
		ui.PrintInfo("Mode", "unauthenticated (public API)")
	}

	logger.WithField("actor", actor).Info("Starting graph fetch")
	ui.PrintHighlight("[FETCHING SOCIAL GRAPH]")

	f := fetcher.New(client, logger.GetLogger())
	f.SetProgress(func(stage string, fetched int) {
		if !ui.IsQuietMode() {
			fmt.Fprintf(os.Stderr, "\r  %s: %d fetched", stage, fetched)
		}
	})

	graph, err := f.Fetch(actor)
	if !ui.IsQuietMode() {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		logger.WithError(err).WithField("actor", actor).Error("Graph fetch failed")
		ui.PrintError("FETCH FAILED", err.Error())
		os.Exit(1)
	}

	result := analyzer.Analyze(graph.Followers, graph.Follows)
	doc := export.NewDocument(graph, result)

	counts := result.Counts()
	logger.WithFields(map[string]interface{}{
		"followers":          counts.Followers,
		"follows":            counts.Follows,
		"mutuals":            counts.Mutuals,
		"fans":               counts.Fans,
		"not_following_back": counts.NotFollowingBack,
	}).Info("Graph analysis completed")

	if format == export.FormatNone {
		export.PrintSummary(doc)
	} else {
		if err := export.Write(doc, format, outputPath); err != nil {
			ui.PrintError("EXPORT FAILED", err.Error())
			os.Exit(1)
		}
		if outputPath != "" {
			ui.PrintSuccess(fmt.Sprintf("Exported %s to %s", format, outputPath))
		}
	}

	ui.PrintSuccess("[ANALYSIS COMPLETED]")
}

// resolveStoredCredentials fills the config from the credential manager.
// Missing credentials are not an error, the tool falls back to the
// public API.
func resolveStoredCredentials(cfg *config.Config) {
	manager, err := auth.NewManager()
	if err != nil {
		logger.WithError(err).Debug("Credential manager unavailable")
		return
	}

	var account *auth.Account
	if accountName != "" {
		account, err = manager.Retrieve(accountName)
		if err != nil {
			ui.PrintError("Account not found", accountName)
			ui.PrintInfo("Available accounts", "Use 'bskygraph auth list' to see stored accounts")
			os.Exit(1)
		}
	} else {
		account, err = manager.RetrieveDefault()
		if err != nil {
			logger.Debug("No stored credentials, using public API")
			return
		}
	}

	cfg.Bluesky.Handle = account.Handle
	cfg.Bluesky.AppPassword = account.AppPassword
	logger.WithField("account", account.Handle).Info("Using stored credentials")
}

// targetActor returns the actor from the positional argument, falling
// back to the --actor flag.
func targetActor(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return actorFlag
}

// Make graph the default command when no subcommand is specified
func init() {
	origRunE := rootCmd.RunE
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if origRunE != nil {
			return origRunE(cmd, args)
		}
		if len(args) == 0 && actorFlag == "" {
			return cmd.Help()
		}
		if len(args) > 0 && isKnownCommand(args[0]) {
			return cmd.Help()
		}
		if len(args) > 1 {
			return fmt.Errorf("accepts at most 1 arg(s), received %d", len(args))
		}
		// Treat a bare argument as an actor to analyze
		return graphCmd.RunE(graphCmd, args)
	}

	rootCmd.Args = cobra.ArbitraryArgs
}

func isKnownCommand(arg string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == arg || cmd.HasAlias(arg) {
			return true
		}
	}
	return false
}
