package cmd

import (
	"fmt"

	"github.com/giantswarm/spotauth/internal/cli"
	"github.com/giantswarm/spotauth/pkg/oauth"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var clientCredentialsPrintToken bool

func newClientCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client-credentials",
		Short: "Obtain an app-only token",
		Long: `Obtain an app-only token with the client credentials flow.

The token carries no user context and has no refresh token; running the
command again, or "spotauth refresh", requests a new one.`,
		Args: cobra.NoArgs,
		RunE: runClientCredentials,
	}
	cmd.Flags().BoolVar(&clientCredentialsPrintToken, "print-token", false, "Print the access token to stdout")
	return cmd
}

func runClientCredentials(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	flow, err := env.newFlow(oauth.FlowClientCredentials)
	if err != nil {
		return err
	}

	tok, err := flow.(*oauth.ClientCredentialsFlow).Exchange(cmd.Context())
	if err != nil {
		audit("client_credentials", "failure", oauth.FlowClientCredentials, env.cfg.ClientID, err)
		return cli.ClassifyAuthError(err, env.cfg.ClientID)
	}
	if err := env.save(oauth.FlowClientCredentials, tok); err != nil {
		return err
	}
	audit("client_credentials", "success", oauth.FlowClientCredentials, env.cfg.ClientID, nil)

	out := cmd.OutOrStdout()
	if clientCredentialsPrintToken {
		fmt.Fprintln(out, tok.AccessToken)
		return nil
	}
	fmt.Fprintf(out, "%s Obtained app-only token (expires %s)\n", text.FgGreen.Sprint("✓"), cli.FormatExpiry(tok.ExpiresAt))
	return nil
}
