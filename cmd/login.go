package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/giantswarm/spotauth/internal/browser"
	"github.com/giantswarm/spotauth/internal/callback"
	"github.com/giantswarm/spotauth/internal/cli"
	"github.com/giantswarm/spotauth/pkg/logging"
	"github.com/giantswarm/spotauth/pkg/oauth"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// Login-specific flags
var (
	loginFlow       string
	loginNoBrowser  bool
	loginShowDialog bool
)

// openBrowser is replaced in tests.
var openBrowser = browser.Open

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in through the browser",
		Long: `Sign in with the authorization code flow.

This command starts a local callback server on the configured redirect URI,
opens the authorization page in the browser and exchanges the returned code
for a token. The token is stored for later commands.

Examples:
  spotauth login                 # Use the configured flow
  spotauth login --flow code     # Confidential client with a client secret
  spotauth login --no-browser    # Print the URL instead of opening it`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
	cmd.Flags().StringVar(&loginFlow, "flow", "", "Flow to use: code or pkce (default: configured flow)")
	cmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "Print the authorization URL instead of opening the browser")
	cmd.Flags().BoolVar(&loginShowDialog, "show-dialog", false, "Ask for consent even if it was granted before")
	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	kind, err := env.flowKind(loginFlow)
	if err != nil {
		return err
	}
	if kind != oauth.FlowAuthorizationCode && kind != oauth.FlowPKCE {
		return fmt.Errorf("login supports the code and pkce flows, not %s", kind)
	}

	flow, err := env.newFlow(kind)
	if err != nil {
		return err
	}
	req, err := env.authorizationRequest(loginShowDialog)
	if err != nil {
		return err
	}

	var authURL, verifier string
	switch f := flow.(type) {
	case *oauth.AuthorizationCodeFlow:
		authURL, err = f.BuildAuthorizationURL(req)
	case *oauth.PKCEFlow:
		pair, genErr := oauth.GeneratePKCE(env.crypto)
		if genErr != nil {
			return fmt.Errorf("failed to generate PKCE values: %w", genErr)
		}
		verifier = pair.CodeVerifier
		authURL, err = f.BuildAuthorizationURL(req.WithPKCE(pair))
	}
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), callback.Timeout)
	defer cancel()

	srv, err := callback.NewServer(env.cfg.RedirectURI, req.State)
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer srv.Stop()

	out := cmd.OutOrStdout()
	if loginNoBrowser {
		fmt.Fprintf(out, "Open this URL in your browser to sign in:\n\n  %s\n\n", authURL)
	} else if err := openBrowser(authURL); err != nil {
		logging.Warn("CLI", "Could not open browser: %v", err)
		fmt.Fprintf(out, "Could not open a browser. Open this URL to sign in:\n\n  %s\n\n", authURL)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Waiting for the browser to return..."
	s.Writer = cmd.ErrOrStderr()
	s.Start()
	result, err := srv.Wait(ctx)
	s.Stop()
	if err != nil {
		audit("login", "failure", kind, env.cfg.ClientID, err)
		return cli.ClassifyAuthError(err, env.cfg.ClientID)
	}

	var tok *oauth.TokenResponse
	switch f := flow.(type) {
	case *oauth.AuthorizationCodeFlow:
		tok, err = f.Exchange(ctx, result.Code, env.cfg.RedirectURI)
	case *oauth.PKCEFlow:
		tok, err = f.Exchange(ctx, result.Code, env.cfg.RedirectURI, verifier)
	}
	if err != nil {
		audit("login", "failure", kind, env.cfg.ClientID, err)
		return cli.ClassifyAuthError(fmt.Errorf("code exchange failed: %w", err), env.cfg.ClientID)
	}

	if err := env.save(kind, tok); err != nil {
		return err
	}
	audit("login", "success", kind, env.cfg.ClientID, nil)

	fmt.Fprintf(out, "%s Signed in with the %s flow (token expires %s)\n",
		text.FgGreen.Sprint("✓"), kind, cli.FormatExpiry(tok.ExpiresAt))
	return nil
}

func audit(action, outcome string, kind oauth.FlowKind, clientID string, err error) {
	ev := logging.AuditEvent{Action: action, Outcome: outcome, Flow: kind.String(), Target: clientID}
	if err != nil {
		ev.Error = err.Error()
	}
	logging.Audit(ev)
}
