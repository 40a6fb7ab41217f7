package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/giantswarm/spotauth/internal/cli"
	"github.com/giantswarm/spotauth/internal/tokenstore"
	"github.com/giantswarm/spotauth/pkg/oauth"

	"github.com/spf13/cobra"
)

func TestSetVersion(t *testing.T) {
	testVersion := "1.2.3-test"
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()

	SetVersion(testVersion)
	if GetVersion() != testVersion {
		t.Errorf("Expected version to be %s, got %s", testVersion, GetVersion())
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "spotauth" {
		t.Errorf("Expected Use to be 'spotauth', got %s", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}

	if rootCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}

	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "spotauth version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	if err := testCmd.Execute(); err != nil {
		t.Fatalf("Error executing version command: %v", err)
	}

	expected := "spotauth version 1.0.0\n"
	if buf.String() != expected {
		t.Errorf("Expected version output %q, got %q", expected, buf.String())
	}
}

func TestSubcommands(t *testing.T) {
	expectedCommands := []string{
		"version", "login", "client-credentials", "authorize-url",
		"implicit-url", "implicit-parse", "refresh", "status", "whoami", "logout",
	}
	foundCommands := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		foundCommands[cmd.Name()] = true
	}

	for _, expected := range expectedCommands {
		if !foundCommands[expected] {
			t.Errorf("Expected subcommand %s to be registered", expected)
		}
	}
}

func TestRootCommandHelp(t *testing.T) {
	out, _, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("Error executing help command: %v", err)
	}
	if !strings.Contains(out, "grant flows") {
		t.Errorf("Help output should contain the long description. Got: %q", out)
	}
}

func TestInitGlobalsRejectsUnknownValues(t *testing.T) {
	if _, _, err := runCLI(t, "--log-level", "chatty", "version"); err == nil {
		t.Error("Expected an unknown log level to be rejected")
	}
	if _, _, err := runCLI(t, "--crypto", "abacus", "version"); err == nil {
		t.Error("Expected an unknown crypto provider to be rejected")
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"general", errors.New("boom"), ExitCodeError},
		{"auth required", &cli.AuthRequiredError{ClientID: "c"}, ExitCodeAuthRequired},
		{"wrapped auth required", fmt.Errorf("whoami: %w", &cli.AuthRequiredError{ClientID: "c"}), ExitCodeAuthRequired},
		{"auth failed", &cli.AuthFailedError{ClientID: "c", Reason: oauth.ErrInvalidGrant}, ExitCodeAuthFailed},
		{"classified missing token", cli.ClassifyAuthError(tokenstore.ErrNotFound, "c"), ExitCodeAuthRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getExitCode(tt.err); got != tt.want {
				t.Errorf("getExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
