// Package command is the shell's dispatch table.  A Registry maps a
// case-sensitive command name to a Handler and the session state the
// handler requires; Dispatch refuses to run a handler anywhere else.
package command

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"dialup/internal/errors"
	"dialup/internal/pacing"
	"dialup/internal/state"
	"dialup/internal/vfs"
)

// Env is the view of a session a handler runs against.  FS and Aliases
// belong to the session; handlers may change them.
type Env struct {
	Identity string
	Now      time.Time
	LoginAt  time.Time
	PID      int      // pid of the participant's login shell
	History  []string // previous command lines, oldest first
	Registry *Registry
	FS       *vfs.FS
	Aliases  map[string]string
}

// Result is what a handler produced.
type Result struct {
	Lines []pacing.Line

	// Hangup asks the session to leave SHELL for DISCONNECTING.
	Hangup bool
}

// Handler runs one command.  Handlers must not block or sleep.
type Handler func(env *Env, args Args) Result

// Entry is one registered command.
type Entry struct {
	Name     string
	Usage    string
	Summary  string
	Required state.State
	Handler  Handler
}

// Registry is a static name → Entry table.  It is safe for concurrent
// reads once registration is complete.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds e.  Names must be non-empty single tokens and unique.
func (r *Registry) Register(e Entry) error {
	if e.Name == "" || strings.ContainsAny(e.Name, " \t") {
		return fmt.Errorf("register command: invalid name %q", e.Name)
	}
	if e.Handler == nil {
		return fmt.Errorf("register command %s: nil handler", e.Name)
	}
	if _, dup := r.entries[e.Name]; dup {
		return fmt.Errorf("register command %s: already registered", e.Name)
	}
	r.entries[e.Name] = e
	return nil
}

// MustRegister is Register that panics on error.  For static tables.
func (r *Registry) MustRegister(e Entry) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// Lookup returns the entry for name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Entries returns every entry sorted by name.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Dispatch runs line against the registry.  A leading alias is
// expanded once.  A command that is not registered, or whose required
// state is not current, prints the shell's "not found" message and
// returns a *errors.CommandError.  Handlers requiring SHELL never run
// without an identity.
func (r *Registry) Dispatch(current state.State, env *Env, line string) (Result, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Result{}, nil
	}
	if exp, ok := env.Aliases[fields[0]]; ok {
		fields = append(strings.Fields(exp), fields[1:]...)
		if len(fields) == 0 {
			return Result{}, nil
		}
	}
	name := fields[0]

	e, ok := r.entries[name]
	if !ok || e.Required != current || (e.Required == state.Shell && env.Identity == "") {
		return Result{Lines: []pacing.Line{pacing.Printf("%s: not found", name)}},
			&errors.CommandError{Name: name}
	}
	if env.Registry == nil {
		env.Registry = r
	}
	if env.FS == nil {
		env.FS = vfs.New()
	}
	if env.Aliases == nil {
		env.Aliases = make(map[string]string)
	}
	return e.Handler(env, ParseArgs(fields[1:])), nil
}
