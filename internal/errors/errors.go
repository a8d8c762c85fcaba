// Package errors provides the error taxonomy for dialup.
//
// Nothing in this taxonomy is fatal to the process: the worst outcome of
// any of these errors is that a single session is torn down.  Sentinels
// let callers branch with Is; the structured types carry the context
// needed for a useful log line.
package errors

import (
	"errors"
	"fmt"
	"net"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	// ErrInvalidTransition: input arrived in a state with no transition for it.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrAuthFailed: the username/password pair did not match.
	ErrAuthFailed = errors.New("login incorrect")
	// ErrUnknownCommand: unregistered command, or one not allowed in this state.
	ErrUnknownCommand = errors.New("command not found")
	// ErrNoSuchSession: no live session for the connection id.
	ErrNoSuchSession = errors.New("no such session")
	// ErrSessionExists: the connection id already owns a session.
	ErrSessionExists = errors.New("session already exists")
	// ErrSessionClosed: the session has been destroyed.
	ErrSessionClosed = errors.New("session closed")
	// ErrHangup: the participant hung up the line.
	ErrHangup = errors.New("hangup")
)

// ── Structured error types ───────────────────────────────────────────

// TransitionError records which state rejected an input.
type TransitionError struct {
	State string
	Input string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: input %q in state %s", e.Input, e.State)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// CommandError records the name of a command that could not be run.
type CommandError struct {
	Name string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: command not found", e.Name)
}

func (e *CommandError) Unwrap() error { return ErrUnknownCommand }

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op        string // "listen", "accept", "handshake", "read", "write"
	Addr      string // network address involved
	Err       error  // underlying error
	Retryable bool   // whether the caller should retry
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError, automatically detecting retryability
// from the underlying error.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Retryable: classifyRetryable(err),
	}
}

// InvalidTransition builds a TransitionError.
func InvalidTransition(state fmt.Stringer, input string) *TransitionError {
	return &TransitionError{State: state.String(), Input: input}
}

// ── Classification helpers ───────────────────────────────────────────

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	return classifyRetryable(err)
}

// IsTemporary reports whether err represents a temporary condition.
func IsTemporary(err error) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	return classifyRetryable(err)
}

// IsRecoverable reports whether err belongs to the per-session taxonomy
// that is handled locally without tearing the session down.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrAuthFailed) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrNoSuchSession)
}

// classifyRetryable inspects standard library error types.
func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Temporary() //nolint:staticcheck // Temporary is deprecated but still useful
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() //nolint:staticcheck
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
