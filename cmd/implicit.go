package cmd

import (
	"fmt"

	"github.com/giantswarm/spotauth/internal/cli"
	"github.com/giantswarm/spotauth/pkg/oauth"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var (
	implicitState      string
	implicitShowDialog bool
)

func newImplicitURLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "implicit-url",
		Short: "Print an authorization URL for the implicit flow",
		Long: `Print an implicit-flow authorization URL and its state value.

After signing in, the browser is redirected with the token in the URL
fragment. Pass that redirect to "spotauth implicit-parse" together with the
state printed here.`,
		Args: cobra.NoArgs,
		RunE: runImplicitURL,
	}
	cmd.Flags().BoolVar(&implicitShowDialog, "show-dialog", false, "Ask for consent even if it was granted before")
	return cmd
}

func newImplicitParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "implicit-parse <redirect-url-or-fragment>",
		Short: "Accept the token from an implicit-flow redirect",
		Long: `Verify the state of an implicit-flow redirect and store its token.

Examples:
  spotauth implicit-parse --state S 'http://127.0.0.1:8888/callback#access_token=...&state=S'
  spotauth implicit-parse --state S 'access_token=...&token_type=Bearer&expires_in=3600&state=S'`,
		Args: cobra.ExactArgs(1),
		RunE: runImplicitParse,
	}
	cmd.Flags().StringVar(&implicitState, "state", "", "State value printed by implicit-url")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}

func implicitFlow(env *environment) (*oauth.ImplicitFlow, error) {
	flow, err := env.newFlow(oauth.FlowImplicit)
	if err != nil {
		return nil, err
	}
	return flow.(*oauth.ImplicitFlow), nil
}

func runImplicitURL(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	flow, err := implicitFlow(env)
	if err != nil {
		return err
	}
	req, err := env.authorizationRequest(implicitShowDialog)
	if err != nil {
		return err
	}

	u, err := flow.BuildAuthorizationURL(req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "url:   %s\nstate: %s\n", u, req.State)
	return nil
}

func runImplicitParse(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	flow, err := implicitFlow(env)
	if err != nil {
		return err
	}

	result, err := flow.ParseCallback(args[0], implicitState)
	if err != nil {
		audit("implicit_callback", "failure", oauth.FlowImplicit, env.cfg.ClientID, err)
		return cli.ClassifyAuthError(err, env.cfg.ClientID)
	}
	if err := env.save(oauth.FlowImplicit, result.Token); err != nil {
		return err
	}
	audit("implicit_callback", "success", oauth.FlowImplicit, env.cfg.ClientID, nil)

	fmt.Fprintf(cmd.OutOrStdout(), "%s Stored implicit-flow token (expires %s)\n",
		text.FgGreen.Sprint("✓"), cli.FormatExpiry(result.Token.ExpiresAt))
	return nil
}
