package core

import (
	"context"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"dialup/internal/session"
)

// TermSource reads input lines from the local terminal.  Secret reads
// on a real tty go through term.ReadPassword so the password is not
// echoed; anything else (pipes, files) is read as plain lines.
type TermSource struct {
	lines *session.LineSource

	fd      int
	file    *os.File
	echo    io.Writer
	results chan termRead
	pending bool
}

type termRead struct {
	line string
	err  error
}

// NewTermSource returns a Source over in.  echo receives the newline a
// hidden password entry swallows.
func NewTermSource(in io.Reader, echo io.Writer) *TermSource {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return &TermSource{fd: int(f.Fd()), file: f, echo: echo, results: make(chan termRead, 1)}
	}
	return &TermSource{lines: session.NewLineSource(in)}
}

// ReadLine implements session.Source.
func (t *TermSource) ReadLine(ctx context.Context, secret bool) (string, error) {
	if t.lines != nil {
		return t.lines.ReadLine(ctx, secret)
	}
	if !t.pending {
		t.pending = true
		go t.read(secret)
	}
	select {
	case r := <-t.results:
		t.pending = false
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (t *TermSource) read(secret bool) {
	if secret {
		b, err := term.ReadPassword(t.fd)
		if t.echo != nil {
			io.WriteString(t.echo, "\n") //nolint:errcheck
		}
		t.results <- termRead{line: string(b), err: err}
		return
	}
	line, err := readTermLine(t.file)
	t.results <- termRead{line: line, err: err}
}

// readTermLine reads one byte at a time so nothing past the newline is
// consumed; a following ReadPassword must see the next keystrokes.
func readTermLine(r io.Reader) (string, error) {
	var sb strings.Builder
	b := make([]byte, 1)
	for {
		n, err := r.Read(b)
		if n == 1 {
			if b[0] == '\n' {
				return strings.TrimRight(sb.String(), "\r"), nil
			}
			sb.WriteByte(b[0])
		}
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return strings.TrimRight(sb.String(), "\r"), nil
			}
			return "", err
		}
	}
}
