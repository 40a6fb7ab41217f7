package cmd

import (
	"errors"
	"os"

	"github.com/giantswarm/spotauth/internal/cli"
	"github.com/giantswarm/spotauth/pkg/logging"
	"github.com/giantswarm/spotauth/pkg/platform"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates no usable credential is stored.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates an authorization or refresh was rejected.
	ExitCodeAuthFailed = 3
)

// Global flags
var (
	configPath     string
	logLevel       string
	cryptoProvider string
)

// rootCmd represents the base command for the spotauth application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "spotauth",
	Short: "Obtain and manage Web API credentials",
	Long: `spotauth signs in to the accounts service with one of the OAuth 2.0
grant flows, keeps the resulting token on disk and refreshes it when it
expires.

Supported flows are code (confidential clients), pkce (public clients),
client-credentials (app-only access) and implicit.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage:      true,
	PersistentPreRunE: initGlobals,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "spotauth version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var authRequired *cli.AuthRequiredError
	if errors.As(err, &authRequired) {
		return ExitCodeAuthRequired
	}

	var authFailed *cli.AuthFailedError
	if errors.As(err, &authFailed) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func initGlobals(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLogLevel(logLevel)
	if err != nil {
		return err
	}
	logging.InitForCLI(level, cmd.ErrOrStderr())

	_, err = platform.ByName(cryptoProvider)
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "", "Configuration directory (default $HOME/.config/spotauth)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&cryptoProvider, "crypto", "", "Crypto provider for state and PKCE values (default: platform default)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newClientCredentialsCmd())
	rootCmd.AddCommand(newAuthorizeURLCmd())
	rootCmd.AddCommand(newImplicitURLCmd())
	rootCmd.AddCommand(newImplicitParseCmd())
	rootCmd.AddCommand(newRefreshCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newLogoutCmd())
}
