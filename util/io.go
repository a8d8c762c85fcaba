package util

import (
	"errors"
	"io"
	"net"
	"sync/atomic"
	"syscall"
)

// IsClosed reports whether err is the expected result of a participant
// hanging up or of the server closing the stream during shutdown.
func IsClosed(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	// net.OpError wrapping "use of closed network connection"
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}

// Meter wraps a participant stream and counts the bytes crossing it.
// OnRead and OnWrite, when set, receive each non-zero transfer size.
type Meter struct {
	RW      io.ReadWriter
	OnRead  func(n int)
	OnWrite func(n int)

	in, out atomic.Int64
}

func (m *Meter) Read(p []byte) (int, error) {
	n, err := m.RW.Read(p)
	if n > 0 {
		m.in.Add(int64(n))
		if m.OnRead != nil {
			m.OnRead(n)
		}
	}
	return n, err
}

func (m *Meter) Write(p []byte) (int, error) {
	n, err := m.RW.Write(p)
	if n > 0 {
		m.out.Add(int64(n))
		if m.OnWrite != nil {
			m.OnWrite(n)
		}
	}
	return n, err
}

// Totals returns the bytes read and written so far.
func (m *Meter) Totals() (in, out int64) {
	return m.in.Load(), m.out.Load()
}
