// Package metrics provides lightweight, lock-free counters and gauges
// for tracking the dial-in sessions a process is serving.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for every session in the process.
// A nil Collector is safe to use: all methods become no-ops.
type Collector struct {
	sessionsActive  atomic.Int64
	sessionsTotal   atomic.Int64
	loginsOK        atomic.Int64
	loginsFailed    atomic.Int64
	commandsRun     atomic.Int64
	commandsUnknown atomic.Int64
	inputsDiscarded atomic.Int64
	bytesIn         atomic.Int64
	bytesOut        atomic.Int64
	errorsTotal     atomic.Int64

	mu              sync.RWMutex
	startTime       time.Time
	lastHealthCheck time.Time
	lastError       time.Time
	lastErrorMsg    string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Session metrics ──────────────────────────────────────────────────

// SessionOpened increments both the active and total counters.
func (c *Collector) SessionOpened() {
	if c == nil {
		return
	}
	c.sessionsActive.Add(1)
	c.sessionsTotal.Add(1)
}

// SessionClosed decrements the active session counter.
func (c *Collector) SessionClosed() {
	if c == nil {
		return
	}
	c.sessionsActive.Add(-1)
}

// ActiveSessions returns the current number of live sessions.
func (c *Collector) ActiveSessions() int64 {
	if c == nil {
		return 0
	}
	return c.sessionsActive.Load()
}

// TotalSessions returns the lifetime session count.
func (c *Collector) TotalSessions() int64 {
	if c == nil {
		return 0
	}
	return c.sessionsTotal.Load()
}

// ── Login metrics ────────────────────────────────────────────────────

// LoginSucceeded records a successful authentication.
func (c *Collector) LoginSucceeded() {
	if c == nil {
		return
	}
	c.loginsOK.Add(1)
}

// LoginFailed records a rejected username/password pair.
func (c *Collector) LoginFailed() {
	if c == nil {
		return
	}
	c.loginsFailed.Add(1)
}

// Logins returns the successful and failed login counts.
func (c *Collector) Logins() (ok, failed int64) {
	if c == nil {
		return 0, 0
	}
	return c.loginsOK.Load(), c.loginsFailed.Load()
}

// ── Command metrics ──────────────────────────────────────────────────

// CommandRun records a dispatched shell command.
func (c *Collector) CommandRun() {
	if c == nil {
		return
	}
	c.commandsRun.Add(1)
}

// CommandUnknown records a command line that matched nothing.
func (c *Collector) CommandUnknown() {
	if c == nil {
		return
	}
	c.commandsUnknown.Add(1)
}

// Commands returns the run and unknown command counts.
func (c *Collector) Commands() (run, unknown int64) {
	if c == nil {
		return 0, 0
	}
	return c.commandsRun.Load(), c.commandsUnknown.Load()
}

// InputDiscarded records input that arrived when no transition could
// take it.
func (c *Collector) InputDiscarded() {
	if c == nil {
		return
	}
	c.inputsDiscarded.Add(1)
}

// DiscardedInputs returns the number of discarded input lines.
func (c *Collector) DiscardedInputs() int64 {
	if c == nil {
		return 0
	}
	return c.inputsDiscarded.Load()
}

// ── I/O metrics ──────────────────────────────────────────────────────

// BytesReceived records n bytes read from a participant.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesIn.Add(n)
}

// BytesSent records n bytes written to a participant.
func (c *Collector) BytesSent(n int64) {
	if c == nil {
		return
	}
	c.bytesOut.Add(n)
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Health ───────────────────────────────────────────────────────────

// RecordHealthCheck updates the last health check timestamp.
func (c *Collector) RecordHealthCheck() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.lastHealthCheck = time.Now()
	c.mu.Unlock()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	SessionsActive   int64  `json:"sessions_active"`
	SessionsTotal    int64  `json:"sessions_total"`
	LoginsOK         int64  `json:"logins_ok"`
	LoginsFailed     int64  `json:"logins_failed"`
	CommandsRun      int64  `json:"commands_run"`
	CommandsUnknown  int64  `json:"commands_unknown"`
	InputsDiscarded  int64  `json:"inputs_discarded"`
	BytesIn          int64  `json:"bytes_in"`
	BytesOut         int64  `json:"bytes_out"`
	ErrorsTotal      int64  `json:"errors_total"`
	LastHealthCheck  string `json:"last_health_check,omitempty"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:          time.Since(c.startTime).Truncate(time.Second).String(),
		SessionsActive:  c.sessionsActive.Load(),
		SessionsTotal:   c.sessionsTotal.Load(),
		LoginsOK:        c.loginsOK.Load(),
		LoginsFailed:    c.loginsFailed.Load(),
		CommandsRun:     c.commandsRun.Load(),
		CommandsUnknown: c.commandsUnknown.Load(),
		InputsDiscarded: c.inputsDiscarded.Load(),
		BytesIn:         c.bytesIn.Load(),
		BytesOut:        c.bytesOut.Load(),
		ErrorsTotal:     c.errorsTotal.Load(),
	}
	if !c.lastHealthCheck.IsZero() {
		s.LastHealthCheck = c.lastHealthCheck.Format(time.RFC3339)
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
