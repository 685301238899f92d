package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"bskygraph/pkg/auth"
	"bskygraph/pkg/bluesky"
	"bskygraph/pkg/logger"
	"bskygraph/pkg/ui"
)

var skipVerify bool

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Bluesky credentials",
	Long: `Manage stored Bluesky credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Use an app password, never your account password. App passwords can be
created at Settings > Privacy and Security > App Passwords and revoked
at any time.`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [handle]",
	Short: "Store Bluesky credentials securely",
	Long: `Store a Bluesky handle and app password in the system keychain or an
encrypted file.

You will be prompted for:
  - Bluesky handle (if not provided)
  - App password (input is hidden)

The credentials are verified against the Bluesky API before storing
unless --no-verify is given.`,
	Example: `  # Interactive login
  bskygraph auth login

  # Login with handle
  bskygraph auth login alice.bsky.social`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [handle]",
	Short: "Remove stored credentials",
	Long: `Remove stored Bluesky credentials.

If no handle is provided, you will be shown a list of stored accounts
to choose from. You can also remove all accounts at once.`,
	Example: `  # Interactive logout
  bskygraph auth logout

  # Logout specific account
  bskygraph auth logout alice.bsky.social`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored Bluesky accounts with masked app passwords.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)

	loginCmd.Flags().BoolVar(&skipVerify, "no-verify", false, "skip verifying credentials against the API")
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var handle string
	if len(args) > 0 {
		handle = bluesky.SanitizeActor(args[0])
	}

	reader := bufio.NewReader(os.Stdin)

	if handle == "" {
		fmt.Print("Bluesky handle: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read handle", err.Error())
			os.Exit(1)
		}
		handle = bluesky.SanitizeActor(strings.TrimSpace(input))
	}

	if handle == "" {
		ui.PrintError("Handle is required", "")
		os.Exit(1)
	}
	if !bluesky.IsValidActor(handle) {
		ui.PrintError("Invalid handle", fmt.Sprintf("%q is not a handle or DID", handle))
		os.Exit(1)
	}

	// Check if account already exists
	if existing, _ := manager.Retrieve(handle); existing != nil {
		fmt.Printf("Account '%s' already exists. Update credentials? (y/N): ", handle)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Print("App password (hidden): ")
	password, err := readPassword()
	if err != nil {
		ui.PrintError("Failed to read app password", err.Error())
		os.Exit(1)
	}
	if password == "" {
		ui.PrintError("App password is required", "")
		os.Exit(1)
	}

	// Verify the credentials actually work before persisting them
	if !skipVerify {
		fmt.Println("Verifying credentials...")
		client := bluesky.NewClient(30*time.Second, logger.NewNopLogger())
		if _, err := client.Login(handle, password); err != nil {
			ui.PrintError("Credential verification failed", err.Error())
			fmt.Println("\nUse --no-verify to store the credentials anyway.")
			os.Exit(1)
		}
		ui.PrintSuccess("Credentials verified")
	}

	account := &auth.Account{
		Handle:       handle,
		AppPassword:  password,
		LastModified: time.Now(),
	}

	if err := manager.Store(account); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", handle))

	fmt.Println("\nYour credentials are stored in:")
	if auth.IsKeyringAvailable() {
		fmt.Println("  - System keychain (primary)")
	}
	fmt.Println("  - Encrypted file (backup)")
	fmt.Println("\nAnalyze a graph with:")
	fmt.Printf("  $ bskygraph graph <actor> --account %s\n", handle)
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if len(args) > 0 {
		handle := bluesky.SanitizeActor(args[0])
		if err := manager.Delete(handle); err != nil {
			ui.PrintError("Failed to remove account", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Account removed: " + handle)
		return
	}

	accounts, err := manager.List()
	if err != nil || len(accounts) == 0 {
		ui.PrintError("No stored accounts found", "")
		return
	}

	reader := bufio.NewReader(os.Stdin)

	if len(accounts) == 1 {
		account := accounts[0]
		fmt.Printf("Remove account '%s'? (y/N): ", account.Handle)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}

		if err := manager.Delete(account.Handle); err != nil {
			ui.PrintError("Failed to remove account", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Account removed: " + account.Handle)
		return
	}

	fmt.Println("Select account to remove:")
	for i, account := range accounts {
		fmt.Printf("  %d. %s\n", i+1, account.Handle)
	}
	fmt.Printf("  %d. Remove all accounts\n", len(accounts)+1)
	fmt.Printf("  0. Cancel\n\n")

	fmt.Print("Choice: ")
	input, _ := reader.ReadString('\n')

	var choice int
	fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

	switch {
	case choice == 0:
		return
	case choice == len(accounts)+1:
		fmt.Print("Remove ALL accounts? This cannot be undone! (yes/N): ")
		confirm, _ := reader.ReadString('\n')
		if strings.TrimSpace(confirm) != "yes" {
			return
		}
		if err := manager.DeleteAll(); err != nil {
			ui.PrintError("Failed to remove all accounts", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("All accounts removed")
	case choice > 0 && choice <= len(accounts):
		account := accounts[choice-1]
		if err := manager.Delete(account.Handle); err != nil {
			ui.PrintError("Failed to remove account", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Account removed: " + account.Handle)
	default:
		ui.PrintError("Invalid choice", "")
		os.Exit(1)
	}
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list accounts", err.Error())
		os.Exit(1)
	}

	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'bskygraph auth login' to add an account")
		return
	}

	ui.PrintHighlight("Stored Accounts")
	fmt.Println()

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("%d. Handle: %s\n", i+1, sanitized.Handle)
		fmt.Printf("   App Password: %s\n", sanitized.AppPassword)
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

// readPassword reads a password from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
