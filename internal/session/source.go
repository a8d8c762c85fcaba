package session

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// LineSource reads newline-terminated input from an io.Reader.  The read
// runs on its own goroutine so ReadLine honours ctx; a read abandoned by
// cancellation is picked up by the next ReadLine call.  Not safe for
// concurrent ReadLine calls.
type LineSource struct {
	r       *bufio.Reader
	results chan readResult
	pending bool
}

type readResult struct {
	line string
	err  error
}

// NewLineSource returns a LineSource over r.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{r: bufio.NewReader(r), results: make(chan readResult, 1)}
}

// ReadLine implements Source.  Trailing CR/LF is removed.
func (l *LineSource) ReadLine(ctx context.Context, _ bool) (string, error) {
	if !l.pending {
		l.pending = true
		go l.read()
	}
	select {
	case r := <-l.results:
		l.pending = false
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (l *LineSource) read() {
	line, err := l.r.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	l.results <- readResult{line: strings.TrimRight(line, "\r\n"), err: err}
}
