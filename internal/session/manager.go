package session

import (
	"context"
	"sync"
	"sync/atomic"

	"dialup/internal/errors"
	"dialup/internal/metrics"
	"dialup/internal/pacing"
	"dialup/util"
)

// Manager owns one Session per live connection.  Sessions are created
// on Connect, fed by Input and destroyed on Disconnect or when they
// hang up by themselves; none outlives its connection.
type Manager struct {
	template   Options
	queueDepth int
	logger     *util.Logger
	metrics    *metrics.Collector

	mu    sync.RWMutex
	conns map[string]*conn
	wg    sync.WaitGroup
	pids  atomic.Int64
}

type conn struct {
	s      *Session
	q      *Queue
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager returns a Manager that builds each Session from template.
// template.ID and template.PID are assigned per connection.
func NewManager(template Options, queueDepth int) *Manager {
	if template.Logger == nil {
		template.Logger = util.NewLogger(0)
	}
	return &Manager{
		template:   template,
		queueDepth: queueDepth,
		logger:     template.Logger,
		metrics:    template.Metrics,
		conns:      make(map[string]*conn),
	}
}

// Connect creates the Session for id and starts driving it in the
// background, writing its output to sink.  The returned channel is
// closed once the session is torn down.  Cancelling ctx disconnects.
func (m *Manager) Connect(ctx context.Context, id string, sink pacing.Sink) (<-chan struct{}, error) {
	opts := m.template
	opts.ID = id
	opts.PID = 800 + int(m.pids.Add(1)%100)

	ctx, cancel := context.WithCancel(ctx)
	c := &conn{
		s:      New(opts),
		q:      NewQueue(m.queueDepth),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	m.mu.Lock()
	if _, dup := m.conns[id]; dup {
		m.mu.Unlock()
		cancel()
		return nil, errors.ErrSessionExists
	}
	m.conns[id] = c
	m.wg.Add(1)
	m.mu.Unlock()

	m.metrics.SessionOpened()
	m.logger.Verbose("[%s] connected (%d live)", id, m.Len())

	go m.run(ctx, id, c, sink)
	return c.done, nil
}

func (m *Manager) run(ctx context.Context, id string, c *conn, sink pacing.Sink) {
	defer m.wg.Done()
	defer close(c.done)

	if err := Run(ctx, c.s, sink, c.q); err != nil {
		if util.IsClosed(err) {
			m.logger.Verbose("[%s] line dropped: %v", id, err)
		} else {
			m.logger.Warn("[%s] %v", id, err)
			m.metrics.RecordError(err.Error())
		}
	}

	m.remove(id, c)
	c.s.Disconnect()
	c.q.Close()
	c.cancel()
	m.metrics.SessionClosed()
	m.logger.Verbose("[%s] disconnected", id)
}

// remove deletes id from the index if it still maps to c.
func (m *Manager) remove(id string, c *conn) {
	m.mu.Lock()
	if m.conns[id] == c {
		delete(m.conns, id)
	}
	m.mu.Unlock()
}

// Input queues one line for the session for id.  Lines are consumed in
// arrival order the next time the session waits for input, so a line
// typed while output is still being paced (mid-dial, mid-login) is
// held rather than lost.  It returns errors.ErrNoSuchSession when id
// has no live session and errors.ErrSessionClosed once the session is
// hanging up; in both cases the line is discarded.
func (m *Manager) Input(id, line string) error {
	m.mu.RLock()
	c, ok := m.conns[id]
	m.mu.RUnlock()
	if !ok {
		return errors.ErrNoSuchSession
	}

	m.metrics.BytesReceived(int64(len(line)))
	if c.s.Closed() {
		m.metrics.InputDiscarded()
		return errors.ErrSessionClosed
	}
	if err := c.q.Push(line); err != nil {
		m.metrics.InputDiscarded()
		return err
	}
	return nil
}

// Disconnect forces the session for id to hang up and removes it.
// Disconnecting an unknown or already removed id is a no-op.
func (m *Manager) Disconnect(id string) {
	m.mu.Lock()
	c, ok := m.conns[id]
	delete(m.conns, id)
	m.mu.Unlock()
	if !ok {
		return
	}
	c.s.Disconnect()
	c.q.Close()
	c.cancel()
}

// Hangup ends the input stream for id, as when a participant closes
// their end of the line.  Lines already queued are still processed and
// the session then hangs up through its normal transcript, so the sink
// sees NO CARRIER.  Unknown ids are a no-op.
func (m *Manager) Hangup(id string) {
	m.mu.RLock()
	c, ok := m.conns[id]
	m.mu.RUnlock()
	if ok {
		c.q.Close()
	}
}

// Get returns the live session for id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conns[id]
	if !ok {
		return nil, false
	}
	return c.s, true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Shutdown disconnects every session and waits for their drivers to
// finish or ctx to expire.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.RLock()
	ids := make([]string, 0, len(m.conns))
	for id := range m.conns {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		m.Disconnect(id)
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
