package cmd

import (
	"fmt"

	"github.com/giantswarm/spotauth/pkg/logging"

	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token",
		Long: `Delete the stored token for the configured client. The token is not
revoked at the accounts service; remove the app from your account settings
to revoke its access.`,
		Args: cobra.NoArgs,
		RunE: runLogout,
	}
}

func runLogout(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	if err := env.store.Delete(env.cfg.ClientID); err != nil {
		logging.Error("CLI", err, "Failed to remove stored token")
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed out client %s\n", env.cfg.ClientID)
	return nil
}
