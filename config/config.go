// Package config defines the runtime configuration for dialup and the
// layers it is assembled from: defaults, a YAML file, DIALUP_*
// environment variables and, last, command-line flags.
package config

import (
	"strings"
	"time"

	"dialup/internal/errors"
	"dialup/util"
)

// Config holds every tuneable for one dialup process.
type Config struct {
	// ── Pacing ───────────────────────────────────────────────────────
	CharDelay  time.Duration `yaml:"char_delay" env:"DIALUP_CHAR_DELAY"`
	LineDelay  time.Duration `yaml:"line_delay" env:"DIALUP_LINE_DELAY"`
	PauseScale float64       `yaml:"pause_scale" env:"DIALUP_PAUSE_SCALE"`
	NoPacing   bool          `yaml:"no_pacing" env:"DIALUP_NO_PACING"`

	// ── Sessions ─────────────────────────────────────────────────────
	UsersFile  string `yaml:"users_file" env:"DIALUP_USERS_FILE"`
	AutoLogin  string `yaml:"auto_login" env:"DIALUP_AUTO_LOGIN"`
	QueueDepth int    `yaml:"queue_depth" env:"DIALUP_QUEUE_DEPTH"`
	MaxLine    int    `yaml:"max_line" env:"DIALUP_MAX_LINE"`

	// ── Network ──────────────────────────────────────────────────────
	TCPAddr string `yaml:"listen" env:"DIALUP_LISTEN"`
	SSHAddr string `yaml:"ssh" env:"DIALUP_SSH"`
	HostKey string `yaml:"host_key" env:"DIALUP_HOST_KEY"`
	WebAddr string `yaml:"web" env:"DIALUP_WEB"`

	// ── Output ───────────────────────────────────────────────────────
	Verbose int `yaml:"verbose" env:"DIALUP_VERBOSE"`

	// ConfigFile is where the YAML layer was read from, if anywhere.
	ConfigFile string `yaml:"-" env:"DIALUP_CONFIG"`
}

// Default returns a Config holding every default value.
func Default() *Config {
	return &Config{
		CharDelay:  DefaultCharDelay,
		LineDelay:  DefaultLineDelay,
		PauseScale: DefaultPauseScale,
		QueueDepth: DefaultQueueDepth,
		MaxLine:    DefaultMaxLine,
	}
}

// Networked reports whether any network transport is enabled.
func (c *Config) Networked() bool {
	return c.TCPAddr != "" || c.SSHAddr != "" || c.WebAddr != ""
}

// Scale returns the multiplier applied to every output delay: zero when
// pacing is off.
func (c *Config) Scale() float64 {
	if c.NoPacing {
		return 0
	}
	return c.PauseScale
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent and
// normalizes listen addresses ("2323" becomes ":2323").  Failures are
// *errors.ConfigError values naming the offending flag.
func (c *Config) Validate() error {
	if c.CharDelay < 0 {
		return &errors.ConfigError{Field: "char-delay", Value: c.CharDelay.String(), Message: "must not be negative"}
	}
	if c.LineDelay < 0 {
		return &errors.ConfigError{Field: "line-delay", Value: c.LineDelay.String(), Message: "must not be negative"}
	}
	if c.PauseScale < 0 {
		return &errors.ConfigError{
			Field:   "pause-scale",
			Value:   formatFloat(c.PauseScale),
			Message: "must not be negative",
			Hint:    "use --no-pacing to turn delays off",
		}
	}
	if c.QueueDepth < 1 || c.QueueDepth > MaxQueueDepth {
		return &errors.ConfigError{
			Field:   "queue-depth",
			Value:   itoa(c.QueueDepth),
			Message: "out of range",
			Hint:    "pick a value between 1 and " + itoa(MaxQueueDepth),
		}
	}
	if c.MaxLine < MinMaxLine || c.MaxLine > MaxMaxLine {
		return &errors.ConfigError{
			Field:   "max-line",
			Value:   itoa(c.MaxLine),
			Message: "out of range",
			Hint:    "pick a value between " + itoa(MinMaxLine) + " and " + itoa(MaxMaxLine),
		}
	}
	if c.Verbose < 0 {
		return &errors.ConfigError{Field: "verbose", Value: itoa(c.Verbose), Message: "must not be negative"}
	}

	for _, a := range []struct {
		field string
		addr  *string
	}{
		{"listen", &c.TCPAddr},
		{"ssh", &c.SSHAddr},
		{"web", &c.WebAddr},
	} {
		norm, err := util.NormalizeAddr(*a.addr)
		if err != nil {
			return &errors.ConfigError{
				Field:   a.field,
				Value:   *a.addr,
				Message: "invalid listen address",
				Hint:    "use host:port, :port or a bare port number",
			}
		}
		*a.addr = norm
	}

	if c.HostKey != "" && c.SSHAddr == "" {
		return &errors.ConfigError{
			Field:   "host-key",
			Value:   c.HostKey,
			Message: "only used by the SSH transport",
			Hint:    "add --ssh :2222 or drop --host-key",
		}
	}
	if c.AutoLogin != "" {
		if strings.ContainsAny(c.AutoLogin, " \t") {
			return &errors.ConfigError{Field: "auto-login", Value: c.AutoLogin, Message: "user names are a single word"}
		}
		if c.Networked() {
			return &errors.ConfigError{
				Field:   "auto-login",
				Value:   c.AutoLogin,
				Message: "only applies to the local terminal",
				Hint:    "network callers always get the login prompt",
			}
		}
	}
	return nil
}
