// Package session is the dial-in engine: one Session per participant,
// advanced one input line at a time, plus the driver that feeds it and
// the Manager that keeps one Session per network connection.
//
// A Session never sleeps and never performs I/O.  Every transition
// returns the lines it produced; delivering them (and pacing them) is
// the job of a pacing.Sink.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"dialup/internal/auth"
	"dialup/internal/command"
	"dialup/internal/content"
	"dialup/internal/errors"
	"dialup/internal/metrics"
	"dialup/internal/pacing"
	"dialup/internal/state"
	"dialup/internal/vfs"
	"dialup/util"
)

// DefaultPID is the login shell pid reported by ps when none is assigned.
const DefaultPID = 812

// Options configures a Session.  Zero fields fall back to defaults:
// the default accounts, the builtin commands, a fresh clock and a quiet
// logger.
type Options struct {
	ID        string // connection id, used in log lines only
	Store     *auth.Store
	Registry  *command.Registry
	Clock     *content.Clock
	AutoLogin string // skip dial-in and log straight in as this identity
	PID       int
	Logger    *util.Logger
	Metrics   *metrics.Collector
}

// Session is one participant's lifecycle from dial to hangup.  All
// methods are safe for concurrent use; inputs are applied one at a
// time in the order the calls acquire the session.
type Session struct {
	mu sync.Mutex

	id       string
	store    *auth.Store
	registry *command.Registry
	clock    *content.Clock
	auto     string
	pid      int
	logger   *util.Logger
	metrics  *metrics.Collector

	st              state.State
	identity        string
	pendingUsername string
	pendingPassword string
	failedAttempts  int
	history         []string
	fs              *vfs.FS
	aliases         map[string]string
	connectedAt     time.Time
	loginAt         time.Time
	closed          bool
}

// New returns a Session in DISCONNECTED.
func New(opts Options) *Session {
	s := &Session{
		id:       opts.ID,
		store:    opts.Store,
		registry: opts.Registry,
		clock:    opts.Clock,
		auto:     opts.AutoLogin,
		pid:      opts.PID,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		st:       state.Disconnected,
		fs:       vfs.New(),
		aliases:  make(map[string]string),
	}
	if s.id == "" {
		s.id = "local"
	}
	if s.store == nil {
		s.store = auth.Default()
	}
	if s.registry == nil {
		s.registry = command.Builtins()
	}
	if s.clock == nil {
		s.clock = content.NewClock(nil)
	}
	if s.pid == 0 {
		s.pid = DefaultPID
	}
	if s.logger == nil {
		s.logger = util.NewLogger(0)
	}
	return s
}

// ID returns the connection id the session was created for.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// Identity returns the authenticated identity, if any.
func (s *Session) Identity() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, s.identity != ""
}

// Secret reports whether the participant is answering a no-echo prompt.
func (s *Session) Secret() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st == state.AwaitingPassword
}

// FailedAttempts returns the number of rejected logins so far.
func (s *Session) FailedAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failedAttempts
}

// Closed reports whether the session has been torn down.  A closed
// session accepts no further input.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Start leaves DISCONNECTED and returns the modem initialization
// transcript.  With AutoLogin set the session logs straight in instead.
func (s *Session) Start() ([]pacing.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st != state.Disconnected || s.closed {
		return nil, errors.InvalidTransition(s.st, "")
	}
	s.connectedAt = s.clock.Now()

	if s.auto != "" {
		if !s.store.Has(s.auto) {
			return nil, fmt.Errorf("auto-login %q: %w", s.auto, errors.ErrAuthFailed)
		}
		s.setState(state.Shell)
		s.identity = s.auto
		s.fs.Owner = s.auto
		s.loginAt = s.connectedAt
		s.logger.Info("[%s] auto-login as %s", s.id, s.identity)
		s.metrics.LoginSucceeded()
		return append(content.Welcome(s.identity, s.loginAt), s.prompt()), nil
	}

	s.setState(state.Dialing)
	return content.Init(), nil
}

// Step performs the transition out of an automatic state (DIALING,
// HANDSHAKE, AUTHENTICATING) and returns its output.  It reports false
// when the current state waits for input instead.
func (s *Session) Step() ([]pacing.Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false
	}
	switch s.st {
	case state.Dialing:
		s.setState(state.Handshake)
		return content.Dial(), true

	case state.Handshake:
		s.setState(state.AwaitingUsername)
		return append(content.Banner(s.clock.Now()), pacing.Ask(content.LoginPrompt)), true

	case state.Authenticating:
		return s.authenticate(), true
	}
	return nil, false
}

// authenticate settles a pending login.  Callers hold s.mu.
func (s *Session) authenticate() []pacing.Line {
	user, pass := s.pendingUsername, s.pendingPassword
	s.pendingUsername, s.pendingPassword = "", ""

	if !s.store.Verify(user, pass) {
		s.failedAttempts++
		s.setState(state.AwaitingUsername)
		s.logger.Warn("[%s] login incorrect (attempt %d)", s.id, s.failedAttempts)
		s.metrics.LoginFailed()
		return append(content.Rejected(), pacing.Ask(content.LoginPrompt))
	}

	s.identity = user
	s.fs.Owner = user
	s.loginAt = s.clock.Now()
	s.setState(state.Shell)
	s.logger.Info("[%s] login as %s", s.id, user)
	s.metrics.LoginSucceeded()
	return append(content.Welcome(user, s.loginAt), s.prompt())
}

// Advance applies one line of participant input.  The returned error
// belongs to the recoverable taxonomy (invalid transition, unknown
// command); the returned lines are still meant for the participant.
func (s *Session) Advance(input string) ([]pacing.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.st.AcceptsInput() {
		s.metrics.InputDiscarded()
		return nil, errors.InvalidTransition(s.st, input)
	}

	switch s.st {
	case state.AwaitingUsername:
		user := strings.TrimSpace(input)
		if user == "" {
			return []pacing.Line{pacing.Ask(content.LoginPrompt)}, nil
		}
		if strings.ContainsAny(user, " \t") {
			s.metrics.InputDiscarded()
			return []pacing.Line{pacing.Ask(content.LoginPrompt)}, errors.InvalidTransition(s.st, input)
		}
		s.pendingUsername = user
		s.setState(state.AwaitingPassword)
		return []pacing.Line{pacing.AskSecret(content.PasswordPrompt)}, nil

	case state.AwaitingPassword:
		s.pendingPassword = input
		s.setState(state.Authenticating)
		return content.Authenticating(), nil
	}

	return s.shell(input)
}

// shell runs one command line.  Callers hold s.mu.
func (s *Session) shell(input string) ([]pacing.Line, error) {
	line := strings.TrimSpace(input)
	if line == "" {
		return []pacing.Line{s.prompt()}, nil
	}
	s.history = append(s.history, line)

	env := &command.Env{
		Identity: s.identity,
		Now:      s.clock.Now(),
		LoginAt:  s.loginAt,
		PID:      s.pid,
		History:  append([]string(nil), s.history...),
		Registry: s.registry,
		FS:       s.fs,
		Aliases:  s.aliases,
	}
	res, err := s.registry.Dispatch(s.st, env, line)
	if err != nil {
		s.logger.Debug("[%s] %v", s.id, err)
		s.metrics.CommandUnknown()
		return append(res.Lines, s.prompt()), err
	}
	s.metrics.CommandRun()
	s.logger.Verbose("[%s] %s: %s", s.id, s.identity, line)

	if res.Hangup {
		return append(res.Lines, s.hangup()...), nil
	}
	return append(res.Lines, s.prompt()), nil
}

// Disconnect forces the session into DISCONNECTING and tears it down,
// whatever state it is in.  The first call returns the farewell (for an
// authenticated participant) and the hangup transcript; later calls
// return nothing.
func (s *Session) Disconnect() []pacing.Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if s.st == state.Disconnected {
		s.closed = true
		return nil
	}
	return s.hangup()
}

// hangup moves to DISCONNECTING and closes the session.  Callers hold s.mu.
func (s *Session) hangup() []pacing.Line {
	var lines []pacing.Line
	if s.identity != "" {
		lines = content.Farewell(s.identity, s.clock.Since(s.connectedAt))
	}
	s.pendingUsername, s.pendingPassword = "", ""
	s.setState(state.Disconnecting)
	s.closed = true
	s.logger.Verbose("[%s] hangup", s.id)
	return append(lines, content.Hangup()...)
}

func (s *Session) prompt() pacing.Line {
	return pacing.Ask(content.ShellPrompt(s.identity))
}

func (s *Session) setState(next state.State) {
	s.logger.Debug("[%s] %s -> %s", s.id, s.st, next)
	s.st = next
}
