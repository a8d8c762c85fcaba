package core

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"dialup/internal/pacing"
	"dialup/internal/session"
	"dialup/util"
)

// LocalMode dials in once on the local terminal and returns when the
// session hangs up.
type LocalMode struct {
	Options session.Options
	Pacing  func(io.Writer) *pacing.Writer
	Logger  *util.Logger

	// Stdin/Stdout default to os.Stdin/os.Stdout when nil.
	Stdin  io.Reader
	Stdout io.Writer
}

// Run drives one session until logout, end of input or ctx.
func (m *LocalMode) Run(ctx context.Context) error {
	in, out := stdin(m.Stdin), stdout(m.Stdout)

	// A password prompt switches echo off; put the terminal back however
	// the session ends.
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if st, err := term.GetState(int(f.Fd())); err == nil {
			defer term.Restore(int(f.Fd()), st) //nolint:errcheck
		}
	}

	pw := m.Pacing(out)
	src := NewTermSource(in, pw.Echo())
	s := session.New(m.Options)
	m.Logger.Verbose("local session starting")
	return session.Run(ctx, s, pw, src)
}
