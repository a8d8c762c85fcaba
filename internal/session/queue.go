package session

import (
	"context"
	"fmt"
	"io"
	"sync"

	"dialup/internal/errors"
)

// DefaultQueueDepth bounds type-ahead per session.
const DefaultQueueDepth = 32

// Queue is a Source fed by pushes, for transports that deliver input as
// discrete messages.  Lines typed while output is still being paced wait
// here in order.
type Queue struct {
	lines chan string
	done  chan struct{}
	once  sync.Once
}

// NewQueue returns a Queue holding up to depth pending lines.
func NewQueue(depth int) *Queue {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	return &Queue{
		lines: make(chan string, depth),
		done:  make(chan struct{}),
	}
}

// Push enqueues line.  It never blocks: a full queue drops the line.
func (q *Queue) Push(line string) error {
	select {
	case <-q.done:
		return errors.ErrSessionClosed
	default:
	}
	select {
	case q.lines <- line:
		return nil
	default:
		return fmt.Errorf("input queue full (%d lines)", cap(q.lines))
	}
}

// ReadLine implements Source.  It returns io.EOF once the queue is
// closed and drained.
func (q *Queue) ReadLine(ctx context.Context, _ bool) (string, error) {
	select {
	case line := <-q.lines:
		return line, nil
	default:
	}
	select {
	case line := <-q.lines:
		return line, nil
	case <-q.done:
		select {
		case line := <-q.lines:
			return line, nil
		default:
			return "", io.EOF
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Len returns the number of pending lines.
func (q *Queue) Len() int { return len(q.lines) }

// Close stops the queue.  Safe to call more than once.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.done) })
}
