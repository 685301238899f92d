package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"bskygraph/pkg/config"
	"bskygraph/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage bskygraph configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'bskygraph.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values

Sensitive values like app passwords will be masked for security.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields
  - Value types and ranges`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "bskygraph.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# bskygraph Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with BSKYGRAPH_
# For example: BSKYGRAPH_HANDLE, BSKYGRAPH_APP_PASSWORD

# Bluesky account settings
bluesky:
  # Handle used for authenticated runs (optional)
  # Public accounts can be analyzed without credentials
  handle: ""

  # App password, never your account password (optional)
  # Create one at Settings > Privacy and Security > App Passwords
  app_password: ""

  # User agent string (optional)
  # Leave empty to use default
  user_agent: ""

  # API hosts (rarely need changing)
  public_api_url: "https://public.api.bsky.app/xrpc"
  auth_api_url: "https://bsky.social/xrpc"

# Rate limiting configuration
rate_limit:
  # Fixed delay between consecutive API requests
  request_delay: 400ms

  # Documented API ceiling
  max_requests: 3000
  window: 5m

# HTTP transport settings
http:
  # Request timeout
  timeout: 30s

# Retry configuration
retry:
  # Retry transient failures (network, 429, 5xx)
  enabled: false

  # Maximum number of attempts per request
  max_attempts: 3

  # Initial backoff duration
  base_delay: 1s

  # Maximum backoff duration
  max_delay: 30s

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stderr only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file to taste")
	fmt.Println("2. Run 'bskygraph config validate' to check the configuration")
	fmt.Println("3. Analyze a graph with 'bskygraph graph <actor>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Create a sanitized version for display
	displayCfg := *cfg

	if displayCfg.Bluesky.AppPassword != "" {
		if len(displayCfg.Bluesky.AppPassword) > 8 {
			displayCfg.Bluesky.AppPassword = displayCfg.Bluesky.AppPassword[:4] + "..." + displayCfg.Bluesky.AppPassword[len(displayCfg.Bluesky.AppPassword)-4:]
		} else {
			displayCfg.Bluesky.AppPassword = "***"
		}
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (BSKYGRAPH_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		possiblePaths := []string{
			"bskygraph.yaml",
			"bskygraph.yml",
			".bskygraph.yaml",
			".bskygraph.yml",
			filepath.Join(os.Getenv("HOME"), ".bskygraph.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "bskygraph", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	warnings := []string{}
	errors := []string{}

	if cfg.Bluesky.Handle == "" || cfg.Bluesky.AppPassword == "" {
		warnings = append(warnings, "No credentials configured, only the public API will be used")
	}

	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if cfg.RateLimit.RequestDelay < 0 {
		errors = append(errors, "request_delay must not be negative")
	}
	if cfg.HTTP.Timeout <= 0 {
		errors = append(errors, "http timeout must be positive")
	}

	for _, warning := range warnings {
		ui.PrintWarning("Warning", warning)
	}

	if len(errors) > 0 {
		for _, e := range errors {
			ui.PrintError("Error", e)
		}
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration is valid")
}
