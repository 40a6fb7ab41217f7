package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/giantswarm/spotauth/internal/cli"
	"github.com/giantswarm/spotauth/internal/tokenstore"
	"github.com/giantswarm/spotauth/pkg/auth"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var statusJSON bool

// statusReport is the machine-readable form of "spotauth status". It never
// contains token values.
type statusReport struct {
	ClientID  string       `json:"client_id"`
	Flow      string       `json:"flow,omitempty"`
	TokenFile string       `json:"token_file"`
	UpdatedAt time.Time    `json:"updated_at,omitempty"`
	Token     auth.Summary `json:"token"`
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored credential",
		Long: `Show metadata about the stored credential: flow, scopes, expiry and
whether a refresh token is held. Token values are never printed.`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
	cmd.Flags().BoolVar(&statusJSON, "json", false, "Print the status as JSON")
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	report := statusReport{
		ClientID:  env.cfg.ClientID,
		TokenFile: env.store.Path(env.cfg.ClientID),
		Token:     auth.TokenState{Status: auth.StatusUnauthenticated}.Summarize(),
	}

	stored, err := env.store.Load(env.cfg.ClientID)
	switch {
	case errors.Is(err, tokenstore.ErrNotFound):
	case err != nil:
		return err
	default:
		report.Flow = stored.Flow
		report.UpdatedAt = stored.UpdatedAt
		report.Token = storedState(stored).Summarize()
	}

	out := cmd.OutOrStdout()
	if statusJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	t := cli.NewTable(out)
	t.AppendRow(table.Row{"Client", report.ClientID})
	t.AppendRow(table.Row{"Status", cli.FormatStatus(report.Token.Status)})
	if stored != nil {
		t.AppendRow(table.Row{"Flow", report.Flow})
		t.AppendRow(table.Row{"Scopes", dashIfEmpty(report.Token.Scope)})
		t.AppendRow(table.Row{"Expires", cli.FormatExpiry(report.Token.ExpiresAt)})
		t.AppendRow(table.Row{"Refresh token", cli.Check(report.Token.HasRefreshToken)})
		t.AppendRow(table.Row{"Updated", report.UpdatedAt.Local().Format(time.RFC3339)})
	}
	t.AppendRow(table.Row{"Token file", report.TokenFile})
	t.Render()

	if stored == nil {
		fmt.Fprintln(out, "Not signed in. Run 'spotauth login' to authenticate.")
	}
	return nil
}

// storedState maps a stored token onto holder state so status reports the
// same way a live holder would.
func storedState(stored *tokenstore.StoredToken) auth.TokenState {
	return auth.TokenState{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
		Scope:        stored.Scope,
		ExpiresAt:    stored.ExpiresAt,
		Status:       auth.StatusAuthenticated,
	}
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
