package core

import (
	"io"
	"os"
	"strings"

	"dialup/config"
	"dialup/internal/auth"
	"dialup/internal/errors"
	"dialup/internal/metrics"
	"dialup/internal/pacing"
	"dialup/internal/session"
	"dialup/internal/transport"
	"dialup/util"
)

// Build constructs the appropriate Mode from a validated configuration.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoLogin != "" && !store.Has(cfg.AutoLogin) {
		return nil, &errors.ConfigError{
			Field:   "auto-login",
			Value:   cfg.AutoLogin,
			Message: "no such account",
			Hint:    "accounts come from the built-in table or --users",
		}
	}

	logger.Verbose("%d account(s): %s", store.Len(), strings.Join(store.Users(), ", "))

	collector := metrics.New()
	template := session.Options{
		Store:     store,
		AutoLogin: cfg.AutoLogin,
		Logger:    logger,
		Metrics:   collector,
	}

	if cfg.Networked() {
		return buildServe(cfg, template, logger, collector)
	}
	return buildLocal(cfg, template, logger), nil
}

// ── mode builders ────────────────────────────────────────────────────

func buildLocal(cfg *config.Config, template session.Options, logger *util.Logger) Mode {
	return &LocalMode{
		Options: template,
		Pacing:  pacer(cfg),
		Logger:  logger,
	}
}

func buildServe(cfg *config.Config, template session.Options, logger *util.Logger, collector *metrics.Collector) (Mode, error) {
	m := &ServeMode{
		Manager: session.NewManager(template, cfg.QueueDepth),
		Metrics: collector,
		Logger:  logger,
		Pacing:  pacer(cfg),
		MaxLine: cfg.MaxLine,
		TCPAddr: cfg.TCPAddr,
		SSHAddr: cfg.SSHAddr,
		WebAddr: cfg.WebAddr,
		Grace:   config.DefaultGracePeriod,
	}
	if cfg.SSHAddr != "" {
		signer, err := transport.LoadOrGenerateSigner(cfg.HostKey)
		if err != nil {
			return nil, err
		}
		m.Signer = signer
		m.KeepAlive = config.DefaultKeepAliveInterval
	}
	return m, nil
}

// ── shared helpers ───────────────────────────────────────────────────

func buildStore(cfg *config.Config) (*auth.Store, error) {
	if cfg.UsersFile == "" {
		return auth.Default(), nil
	}
	return auth.LoadFile(cfg.UsersFile)
}

// pacer returns a constructor for per-connection output writers.
func pacer(cfg *config.Config) func(io.Writer) *pacing.Writer {
	return func(w io.Writer) *pacing.Writer {
		pw := pacing.NewWriter(w, cfg.CharDelay, cfg.LineDelay)
		pw.Scale = cfg.Scale()
		return pw
	}
}

func stdin(r io.Reader) io.Reader {
	if r != nil {
		return r
	}
	return os.Stdin
}

func stdout(w io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return os.Stdout
}
