// Package cli holds the pieces shared by the spotauth commands: error types
// that map to exit codes and the output helpers for tables and durations.
package cli
