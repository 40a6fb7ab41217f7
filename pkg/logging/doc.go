// Package logging provides subsystem-tagged structured logging built on
// Go's standard slog package.
//
// Until InitForCLI or SetLogger is called the package is silent, so library
// consumers see no output unless they opt in.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Auth", "Token refreshed for %s", clientID)
//	logging.Debug("OAuth", "Exchanged authorization code (expires_in=%ds)", n)
//	logging.Error("TokenStore", err, "Failed to persist token")
//
// Applications that already own a logger route output through it:
//
//	logging.SetLogger(slog.New(myHandler))
//
// # Subsystems
//
//   - OAuth: grant flow requests and callback parsing
//   - Auth: token holder state transitions
//   - HTTP: auth-aware client retries
//   - Config, TokenStore, Callback: CLI support packages
//
// # Audit Logging
//
// Credential lifecycle events are logged with Audit:
//
//	logging.Audit(logging.AuditEvent{
//		Action:  "token_refresh",
//		Outcome: "success",
//		Flow:    "pkce",
//	})
//
// Audit events are logged at INFO level with an [AUDIT] prefix. Token values
// are never part of an event.
package logging
