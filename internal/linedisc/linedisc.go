// Package linedisc is a minimal terminal line discipline for transports
// that deliver raw keystrokes (a telnet or netcat client, an SSH pty).
// It assembles bytes into lines, echoes what is typed unless the
// session is asking for a secret, and maps the classic control keys:
// backspace erases, ^C abandons the line, ^D on an empty line hangs up.
package linedisc

import (
	"context"
	"io"
	"sync"
	"unicode/utf8"

	"dialup/internal/errors"
	"dialup/util"
)

// DefaultMaxLine bounds a single input line.
const DefaultMaxLine = 256

const (
	ctrlC     = 0x03
	ctrlD     = 0x04
	backspace = 0x08
	escape    = 0x1b
	del       = 0x7f

	// telnet
	iac  = 0xff
	sb   = 0xfa
	se   = 0xf0
	will = 0xfb
	dont = 0xfe
)

type chunk struct {
	data []byte
	err  error
}

// Discipline reads keystrokes from r and echoes to w.  It implements the
// session Source contract: ReadLine(ctx, secret).  ReadLine must not be
// called concurrently.
type Discipline struct {
	// Secret, when set, is consulted before every keystroke and
	// suppresses echo while it returns true.  Servers whose reader runs
	// ahead of the session use it to follow the session's own state.
	Secret func() bool

	echo    io.Writer
	maxLine int

	in      chan chunk
	quit    chan struct{}
	once    sync.Once
	pending []byte
	err     error

	line   []byte
	lastCR bool
	esc    int // 0 none, 1 after ESC, 2 inside CSI
	tel    int // 0 none, 1 after IAC, 2 option byte, 3 subnegotiation, 4 IAC inside SB
}

// New starts reading r in the background.  The reader goroutine exits
// when r returns an error, so closing the underlying connection stops it.
func New(r io.Reader, echo io.Writer, maxLine int) *Discipline {
	if maxLine <= 0 {
		maxLine = DefaultMaxLine
	}
	d := &Discipline{
		echo:    echo,
		maxLine: maxLine,
		in:      make(chan chunk, 4),
		quit:    make(chan struct{}),
	}
	go d.pump(r)
	return d
}

func (d *Discipline) pump(r io.Reader) {
	buf := util.GetBuf()
	defer util.PutBuf(buf)
	for {
		n, err := r.Read(*buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, (*buf)[:n])
			if !d.send(chunk{data: data}) {
				return
			}
		}
		if err != nil {
			d.send(chunk{err: err})
			return
		}
	}
}

func (d *Discipline) send(c chunk) bool {
	select {
	case <-d.quit:
		return false
	default:
	}
	select {
	case d.in <- c:
		return true
	case <-d.quit:
		return false
	}
}

// Close releases the reader goroutine once its current Read returns.
// It does not close the underlying reader.
func (d *Discipline) Close() {
	d.once.Do(func() { close(d.quit) })
}

// ReadLine returns the next completed line without its terminator.  When
// secret is true nothing typed is echoed.  It returns errors.ErrHangup
// on ^D at the start of a line and the reader's error (usually io.EOF)
// once the stream ends.
func (d *Discipline) ReadLine(ctx context.Context, secret bool) (string, error) {
	for {
		for len(d.pending) > 0 {
			b := d.pending[0]
			d.pending = d.pending[1:]
			line, done, err := d.feed(b, secret || (d.Secret != nil && d.Secret()))
			if err != nil || done {
				return line, err
			}
		}
		if d.err != nil {
			return "", d.err
		}

		select {
		case c := <-d.in:
			d.pending = c.data
			d.err = c.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// feed applies one byte.  done reports a completed line.
func (d *Discipline) feed(b byte, secret bool) (line string, done bool, err error) {
	if d.telnet(b) || d.escape(b) {
		return "", false, nil
	}

	wasCR := d.lastCR
	d.lastCR = b == '\r'

	switch {
	case b == '\n' && wasCR:
		return "", false, nil

	case b == '\r' || b == '\n':
		line = string(d.line)
		d.line = d.line[:0]
		return line, true, d.write("\r\n")

	case b == del || b == backspace:
		if len(d.line) == 0 {
			return "", false, nil
		}
		_, size := utf8.DecodeLastRune(d.line)
		d.line = d.line[:len(d.line)-size]
		if secret {
			return "", false, nil
		}
		return "", false, d.write("\b \b")

	case b == ctrlC:
		d.line = d.line[:0]
		return "", true, d.write("^C\r\n")

	case b == ctrlD:
		if len(d.line) == 0 {
			return "", false, errors.ErrHangup
		}
		return "", false, nil

	case b < 0x20:
		return "", false, nil
	}

	if len(d.line) >= d.maxLine {
		return "", false, nil
	}
	d.line = append(d.line, b)
	if secret {
		return "", false, nil
	}
	return "", false, d.write(string([]byte{b}))
}

// telnet swallows telnet option negotiation.  It reports whether b was
// consumed.
func (d *Discipline) telnet(b byte) bool {
	switch d.tel {
	case 0:
		if b == iac {
			d.tel = 1
			return true
		}
		return false
	case 1:
		switch {
		case b == sb:
			d.tel = 3
		case b >= will && b <= dont:
			d.tel = 2
		default:
			d.tel = 0
		}
	case 2:
		d.tel = 0
	case 3:
		if b == iac {
			d.tel = 4
		}
	case 4:
		if b == se {
			d.tel = 0
		} else {
			d.tel = 3
		}
	}
	return true
}

// escape swallows ANSI escape sequences (arrow keys, function keys).
func (d *Discipline) escape(b byte) bool {
	switch d.esc {
	case 0:
		if b == escape {
			d.esc = 1
			return true
		}
		return false
	case 1:
		if b == '[' || b == 'O' {
			d.esc = 2
		} else {
			d.esc = 0
		}
	case 2:
		if b >= 0x40 && b <= 0x7e {
			d.esc = 0
		}
	}
	return true
}

func (d *Discipline) write(s string) error {
	if d.echo == nil {
		return nil
	}
	_, err := io.WriteString(d.echo, s)
	return err
}
