package pacing

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// ANSI "erase display, cursor home".
const clearSequence = "\x1b[2J\x1b[H"

// Writer is a Sink that renders lines onto an io.Writer with
// typewriter pacing.  Delays are cancellable through the context passed
// to Write, so a hang-up aborts the transcript mid-character.
type Writer struct {
	// CharDelay is the default per-character delay for Typed lines.
	CharDelay time.Duration
	// LineDelay is inserted after every Instant or Typed line.
	LineDelay time.Duration
	// Scale multiplies every delay (0 disables pacing entirely).
	Scale float64
	// CRLF translates "\n" to "\r\n" for network terminals.
	CRLF bool

	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer with the given delays and a scale of 1.
func NewWriter(w io.Writer, charDelay, lineDelay time.Duration) *Writer {
	return &Writer{w: w, CharDelay: charDelay, LineDelay: lineDelay, Scale: 1}
}

// Write renders lines in order.  It stops at the first write error or
// when ctx is done.  Batches must not be written concurrently; echo from
// Echo may interleave with a batch between characters.
func (pw *Writer) Write(ctx context.Context, lines []Line) error {
	for _, l := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := pw.line(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func (pw *Writer) line(ctx context.Context, l Line) error {
	switch l.Style {
	case Pause:
		return pw.sleep(ctx, l.Delay)
	case Clear:
		return pw.emit(clearSequence)
	case Prompt:
		return pw.emit(l.Text)
	case Typed:
		delay := l.Delay
		if delay == 0 {
			delay = pw.CharDelay
		}
		if pw.scaled(delay) <= 0 {
			if err := pw.emit(l.Text + "\n"); err != nil {
				return err
			}
			return pw.sleep(ctx, pw.LineDelay)
		}
		for i, w := 0, 0; i < len(l.Text); i += w {
			_, w = utf8.DecodeRuneInString(l.Text[i:])
			if err := pw.emit(l.Text[i : i+w]); err != nil {
				return err
			}
			if err := pw.sleep(ctx, delay); err != nil {
				return err
			}
		}
		if err := pw.emit("\n"); err != nil {
			return err
		}
		return pw.sleep(ctx, pw.LineDelay)
	default:
		if err := pw.emit(l.Text + "\n"); err != nil {
			return err
		}
		return pw.sleep(ctx, pw.LineDelay)
	}
}

func (pw *Writer) emit(s string) error {
	if s == "" {
		return nil
	}
	if pw.CRLF {
		s = strings.ReplaceAll(s, "\n", "\r\n")
	}
	pw.mu.Lock()
	defer pw.mu.Unlock()
	_, err := io.WriteString(pw.w, s)
	return err
}

// Echo returns an io.Writer that writes straight through to the
// destination, bypassing pacing and newline translation.  Line
// disciplines use it to echo keystrokes.
func (pw *Writer) Echo() io.Writer { return echo{pw} }

type echo struct{ pw *Writer }

func (e echo) Write(p []byte) (int, error) {
	e.pw.mu.Lock()
	defer e.pw.mu.Unlock()
	return e.pw.w.Write(p)
}

func (pw *Writer) scaled(d time.Duration) time.Duration {
	return time.Duration(float64(d) * pw.Scale)
}

func (pw *Writer) sleep(ctx context.Context, d time.Duration) error {
	return Sleep(ctx, pw.scaled(d))
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
