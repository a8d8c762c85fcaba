// Package cmd wires up the CLI flags and dispatches to the dial-in core.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"dialup/config"
	"dialup/internal/core"
	"dialup/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X dialup/cmd.version=1.1.0"
var version = "1.0.0" //nolint:gochecknoglobals

// usageOut is where usage and version text go.
var usageOut io.Writer = os.Stderr //nolint:gochecknoglobals

// Execute parses args and runs the selected dialup mode.
func Execute(ctx context.Context, args []string) error {
	fv := config.Default()
	fs := flag.NewFlagSet("dialup", flag.ContinueOnError)
	fs.SetOutput(usageOut)

	// ── network ──────────────────────────────────────────────────
	fs.StringVarP(&fv.TCPAddr, "listen", "l", "", "Answer raw TCP/telnet calls on `addr`")
	fs.StringVar(&fv.SSHAddr, "ssh", "", "Answer SSH calls on `addr`")
	fs.StringVar(&fv.HostKey, "host-key", "", "SSH host key `file` (created if missing)")
	fs.StringVar(&fv.WebAddr, "web", "", "Serve the browser terminal on `addr`")
	fs.IntVar(&fv.QueueDepth, "queue-depth", fv.QueueDepth, "Type-ahead lines held per session")
	fs.IntVar(&fv.MaxLine, "max-line", fv.MaxLine, "Longest accepted input line in bytes")

	// ── session ──────────────────────────────────────────────────
	fs.StringVarP(&fv.UsersFile, "users", "u", "", "YAML credential `file` merged over the built-in accounts")
	fs.StringVarP(&fv.AutoLogin, "auto-login", "a", "", "Skip the dial and log in as `user` (local terminal only)")

	// ── pacing ───────────────────────────────────────────────────
	fs.DurationVar(&fv.CharDelay, "char-delay", fv.CharDelay, "Delay per typed character")
	fs.DurationVar(&fv.LineDelay, "line-delay", fv.LineDelay, "Delay after each line")
	fs.Float64Var(&fv.PauseScale, "pause-scale", fv.PauseScale, "Multiply every delay by `factor`")
	fs.BoolVarP(&fv.NoPacing, "no-pacing", "f", false, "Print everything at once")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&fv.Verbose, "verbose", "v", "Increase verbosity (repeatable)")

	var configPath string
	var showVersion, showHelp, dryRun bool
	fs.StringVarP(&configPath, "config", "c", "", "YAML config `file` (default $DIALUP_CONFIG)")
	fs.BoolVar(&dryRun, "dry-run", false, "Validate the configuration and exit")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}
	if showHelp {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(usageOut, "dialup %s\n", version)
		return nil
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q (use --help for usage)", fs.Arg(0))
	}

	// ── layer: defaults < file < env < flags ─────────────────────
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(fs, fv, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── build ────────────────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Fprintf(usageOut, "dialup: configuration ok (%T)\n", mode)
		return nil
	}
	return mode.Run(ctx)
}

// applyFlags copies every flag the user actually set from fv to cfg.
func applyFlags(fs *flag.FlagSet, fv, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.TCPAddr = fv.TCPAddr
		case "ssh":
			cfg.SSHAddr = fv.SSHAddr
		case "host-key":
			cfg.HostKey = fv.HostKey
		case "web":
			cfg.WebAddr = fv.WebAddr
		case "queue-depth":
			cfg.QueueDepth = fv.QueueDepth
		case "max-line":
			cfg.MaxLine = fv.MaxLine
		case "users":
			cfg.UsersFile = fv.UsersFile
		case "auto-login":
			cfg.AutoLogin = fv.AutoLogin
		case "char-delay":
			cfg.CharDelay = fv.CharDelay
		case "line-delay":
			cfg.LineDelay = fv.LineDelay
		case "pause-scale":
			cfg.PauseScale = fv.PauseScale
		case "no-pacing":
			cfg.NoPacing = fv.NoPacing
		case "verbose":
			cfg.Verbose = fv.Verbose
		}
	})
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(usageOut, `dialup - 1990s modem dial-in simulator v%s

Dial into a SCO UNIX host from your terminal, or run the host and let
others call in over telnet, SSH or a browser.

Usage:
  dialup [options]                        Dial in on this terminal
  dialup -l :%d [--ssh :%d] [--web :8080]
                                          Answer calls on the network

Options:
`, version, config.DefaultTCPPort, config.DefaultSSHPort)
	fs.PrintDefaults()
	fmt.Fprintf(usageOut, `
Examples:
  dialup                                  Dial in (try root/root)
  dialup -f -a guest                      Skip the modem, straight to a shell
  dialup -l 2323 -v                       Then: telnet localhost 2323
  dialup --ssh :2222 --host-key host.key  Then: ssh -p 2222 localhost
  dialup --web :8080                      Then open http://localhost:8080/

Environment:
  DIALUP_LISTEN, DIALUP_SSH, DIALUP_WEB, DIALUP_USERS_FILE, DIALUP_NO_PACING,
  ... (one per option; flags win over the environment, which wins over
  the config file)
`)
}
