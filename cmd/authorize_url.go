package cmd

import (
	"fmt"

	"github.com/giantswarm/spotauth/pkg/oauth"

	"github.com/spf13/cobra"
)

var (
	authorizeURLFlow       string
	authorizeURLShowDialog bool
)

func newAuthorizeURLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authorize-url",
		Short: "Print an authorization URL for the code flows",
		Long: `Print an authorization URL together with its state value, without
running a callback server. For the pkce flow the code verifier is printed
too; keep it private, it is needed to exchange the returned code.`,
		Args: cobra.NoArgs,
		RunE: runAuthorizeURL,
	}
	cmd.Flags().StringVar(&authorizeURLFlow, "flow", "", "Flow to use: code or pkce (default: configured flow)")
	cmd.Flags().BoolVar(&authorizeURLShowDialog, "show-dialog", false, "Ask for consent even if it was granted before")
	return cmd
}

func runAuthorizeURL(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	kind, err := env.flowKind(authorizeURLFlow)
	if err != nil {
		return err
	}

	flow, err := env.newFlow(kind)
	if err != nil {
		return err
	}
	req, err := env.authorizationRequest(authorizeURLShowDialog)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch f := flow.(type) {
	case *oauth.AuthorizationCodeFlow:
		u, err := f.BuildAuthorizationURL(req)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "url:   %s\nstate: %s\n", u, req.State)
	case *oauth.PKCEFlow:
		pair, err := oauth.GeneratePKCE(env.crypto)
		if err != nil {
			return fmt.Errorf("failed to generate PKCE values: %w", err)
		}
		u, err := f.BuildAuthorizationURL(req.WithPKCE(pair))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "url:           %s\nstate:         %s\ncode_verifier: %s\n", u, req.State, pair.CodeVerifier)
	default:
		return fmt.Errorf("authorize-url supports the code and pkce flows, not %s; use implicit-url for the implicit flow", kind)
	}
	return nil
}
