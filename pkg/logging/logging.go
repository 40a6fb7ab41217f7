package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String makes LogLevel satisfy the fmt.Stringer interface.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo // Default to INFO for unknown
	}
}

// ParseLogLevel converts a configuration value such as "debug" into a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
)

// InitForCLI initializes the logging system for CLI mode.
// Output is plain text at or above filterLevel.
func InitForCLI(filterLevel LogLevel, output io.Writer) {
	opts := &slog.HandlerOptions{
		Level: filterLevel.SlogLevel(),
	}
	SetLogger(slog.New(slog.NewTextHandler(output, opts)))
}

// SetLogger routes all package output through logger. Library users that
// already own a slog.Logger call this instead of InitForCLI. A nil logger
// silences the package again.
func SetLogger(logger *slog.Logger) {
	mu.Lock()
	defaultLogger = logger
	mu.Unlock()
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

func logInternal(level LogLevel, subsystem string, err error, messageFmt string, args ...interface{}) {
	logger := current()
	if logger == nil || !logger.Enabled(context.Background(), level.SlogLevel()) {
		return // not initialized or level filtered
	}

	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	var slogAttrs []slog.Attr
	slogAttrs = append(slogAttrs, slog.String("subsystem", subsystem))
	if err != nil {
		slogAttrs = append(slogAttrs, slog.String("error", err.Error()))
	}

	logger.LogAttrs(context.Background(), level.SlogLevel(), msg, slogAttrs...)
}

// Debug logs a debug message.
func Debug(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs an informational message.
func Info(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a warning message.
func Warn(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs an error message.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	logInternal(LevelError, subsystem, err, messageFmt, args...)
}

// AuditEvent describes a security-relevant credential operation.
// It must never carry token values.
type AuditEvent struct {
	// Action is what happened, e.g. "token_refresh" or "token_stored".
	Action string
	// Outcome is "success" or "failure".
	Outcome string
	// Flow is the grant flow involved, if any.
	Flow string
	// Target identifies the credential, e.g. a client ID or token file.
	Target string
	// HolderID correlates events from one token holder.
	HolderID string
	// Error is the failure reason, if any.
	Error string
}

// Audit logs a security audit event at INFO level with an [AUDIT] prefix.
func Audit(event AuditEvent) {
	logger := current()
	if logger == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("subsystem", "Audit"),
		slog.String("action", event.Action),
		slog.String("outcome", event.Outcome),
	}
	for _, kv := range [][2]string{
		{"flow", event.Flow},
		{"target", event.Target},
		{"holder_id", event.HolderID},
		{"error", event.Error},
	} {
		if kv[1] != "" {
			attrs = append(attrs, slog.String(kv[0], kv[1]))
		}
	}

	logger.LogAttrs(context.Background(), slog.LevelInfo, "[AUDIT] "+event.Action, attrs...)
}
