package cmd

import (
	"strings"

	"github.com/giantswarm/spotauth/internal/cli"
	"github.com/giantswarm/spotauth/pkg/httpclient"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// profile is the subset of the current-user object that whoami prints.
type profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Product     string `json:"product"`
	Type        string `json:"type"`
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Long: `Call the current-user endpoint with the stored token.

An expired token is refreshed once and the request retried; the refreshed
token is stored. App-only tokens have no user and are rejected by the API.`,
		Args: cobra.NoArgs,
		RunE: runWhoami,
	}
}

func runWhoami(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	holder, _, err := env.loadHolder()
	if err != nil {
		return cli.ClassifyAuthError(err, env.cfg.ClientID)
	}

	client, err := httpclient.New(holder,
		httpclient.WithBaseURL(env.cfg.Endpoints.APIURL),
		httpclient.WithTimeout(env.cfg.HTTPTimeout),
	)
	if err != nil {
		return err
	}

	var me profile
	if err := client.GetJSON(cmd.Context(), "/me", &me); err != nil {
		return cli.ClassifyAuthError(err, env.cfg.ClientID)
	}

	t := cli.NewTable(cmd.OutOrStdout())
	t.AppendRow(table.Row{"ID", me.ID})
	t.AppendRow(table.Row{"Name", dashIfEmpty(me.DisplayName)})
	if me.Email != "" {
		t.AppendRow(table.Row{"Email", me.Email})
	}
	if me.Country != "" {
		t.AppendRow(table.Row{"Country", me.Country})
	}
	if me.Product != "" {
		t.AppendRow(table.Row{"Plan", strings.ToLower(me.Product)})
	}
	t.Render()
	return nil
}

