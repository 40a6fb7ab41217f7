package cmd

import (
	"fmt"

	"github.com/giantswarm/spotauth/internal/cli"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the stored token",
		Long: `Exchange the stored refresh token for a new access token and store it.

For app-only tokens a new client credentials exchange is made instead. When
the refresh is rejected the stored token is left untouched and the command
exits with code 3.`,
		Args: cobra.NoArgs,
		RunE: runRefresh,
	}
}

func runRefresh(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	holder, stored, err := env.loadHolder()
	if err != nil {
		return cli.ClassifyAuthError(err, env.cfg.ClientID)
	}

	if _, err := holder.Refresh(cmd.Context()); err != nil {
		return cli.ClassifyAuthError(fmt.Errorf("refresh failed: %w", err), env.cfg.ClientID)
	}

	st := holder.State()
	fmt.Fprintf(cmd.OutOrStdout(), "%s Refreshed %s token (expires %s)\n",
		text.FgGreen.Sprint("✓"), stored.Flow, cli.FormatExpiry(st.ExpiresAt))
	return nil
}
