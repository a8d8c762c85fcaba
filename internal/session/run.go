package session

import (
	"context"
	"io"

	"dialup/internal/errors"
	"dialup/internal/pacing"
)

// Source supplies participant input one line at a time.  secret is true
// while the participant answers a no-echo prompt.  ReadLine returns
// io.EOF or errors.ErrHangup when the participant is gone.
type Source interface {
	ReadLine(ctx context.Context, secret bool) (string, error)
}

// Run drives s from DISCONNECTED to teardown: it starts the session,
// writes every batch of output to sink, steps through the automatic
// states and feeds it lines from src.  Run returns nil when the
// session hangs up, the participant leaves, or ctx is cancelled; any
// of those leaves s closed.
func Run(ctx context.Context, s *Session, sink pacing.Sink, src Source) error {
	out, err := s.Start()
	if err != nil {
		s.Disconnect()
		return err
	}

	for {
		if err := sink.Write(ctx, out); err != nil {
			s.Disconnect()
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap("write", s.ID(), err)
		}
		if s.Closed() {
			return nil
		}

		if next, ok := s.Step(); ok {
			out = next
			continue
		}

		line, err := src.ReadLine(ctx, s.Secret())
		if err != nil {
			return hangup(ctx, s, sink, err)
		}

		out, err = s.Advance(line)
		if err != nil {
			if errors.IsRecoverable(err) {
				s.logger.Debug("[%s] %v", s.ID(), err)
			} else {
				s.logger.Warn("[%s] %v", s.ID(), err)
			}
		}
	}
}

// hangup handles the participant going away mid-session: the session is
// torn down exactly as a logout would, and the transcript is flushed if
// the sink can still take it.
func hangup(ctx context.Context, s *Session, sink pacing.Sink, cause error) error {
	lines := s.Disconnect()
	if ctx.Err() != nil {
		return nil
	}
	if len(lines) > 0 {
		_ = sink.Write(ctx, lines)
	}
	if errors.Is(cause, io.EOF) || errors.Is(cause, errors.ErrHangup) || errors.Is(cause, errors.ErrSessionClosed) {
		return nil
	}
	return errors.Wrap("read", s.ID(), cause)
}
