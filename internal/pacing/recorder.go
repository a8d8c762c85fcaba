package pacing

import (
	"context"
	"sync"
)

// Recorder is a Sink that keeps every line it is given.  It never
// sleeps, which makes it the sink of choice in tests.
type Recorder struct {
	mu    sync.Mutex
	lines []Line
}

// Write appends lines.
func (r *Recorder) Write(ctx context.Context, lines []Line) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.lines = append(r.lines, lines...)
	r.mu.Unlock()
	return nil
}

// Lines returns a copy of everything recorded so far.
func (r *Recorder) Lines() []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Line, len(r.lines))
	copy(out, r.lines)
	return out
}

// Text renders everything recorded so far.
func (r *Recorder) Text() string {
	return Render(r.Lines())
}
