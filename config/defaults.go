package config

import (
	"strconv"
	"time"
)

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultCharDelay is the per-character delay of typed lines, about
	// what a 14.4k modem feels like to a reader.
	DefaultCharDelay = 50 * time.Millisecond

	// DefaultLineDelay follows every printed line.
	DefaultLineDelay = 20 * time.Millisecond

	// DefaultPauseScale multiplies every delay.
	DefaultPauseScale = 1.0

	// DefaultQueueDepth bounds type-ahead per session.
	DefaultQueueDepth = 32

	// MaxQueueDepth caps --queue-depth.
	MaxQueueDepth = 1024

	// DefaultMaxLine bounds one input line.
	DefaultMaxLine = 256

	// MinMaxLine and MaxMaxLine bound --max-line.
	MinMaxLine = 16
	MaxMaxLine = 4096

	// DefaultTCPPort and DefaultSSHPort are the ports suggested in
	// usage text.
	DefaultTCPPort = 2323
	DefaultSSHPort = 2222

	// DefaultKeepAliveInterval is how often SSH callers are pinged.
	DefaultKeepAliveInterval = 30 * time.Second

	// DefaultGracePeriod is how long shutdown waits for sessions to
	// flush their hang-up transcripts.
	DefaultGracePeriod = 5 * time.Second
)

func itoa(n int) string { return strconv.Itoa(n) }

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
