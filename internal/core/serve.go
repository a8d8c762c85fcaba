package core

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"
	"golang.org/x/sync/errgroup"

	"dialup/internal/linedisc"
	"dialup/internal/metrics"
	"dialup/internal/pacing"
	"dialup/internal/session"
	"dialup/internal/transport"
	"dialup/internal/web"
	"dialup/util"
)

// ServeMode answers calls on every configured network front end.  All
// front ends share one session Manager.
type ServeMode struct {
	Manager *session.Manager
	Metrics *metrics.Collector
	Logger  *util.Logger
	Pacing  func(io.Writer) *pacing.Writer
	MaxLine int

	TCPAddr   string
	SSHAddr   string
	Signer    ssh.Signer
	KeepAlive time.Duration
	WebAddr   string

	// Grace bounds how long shutdown waits for sessions to hang up.
	Grace time.Duration
}

// Run serves until ctx is done or a front end fails, then disconnects
// every remaining session.
func (m *ServeMode) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if m.TCPAddr != "" {
		srv := &transport.TCPServer{
			Handler: m.streamHandler("tcp"),
			Logger:  m.Logger,
		}
		g.Go(func() error { return srv.ListenAndServe(gctx, m.TCPAddr) })
	}
	if m.SSHAddr != "" {
		srv := &transport.SSHServer{
			Handler:   m.streamHandler("ssh"),
			Logger:    m.Logger,
			Signer:    m.Signer,
			KeepAlive: m.KeepAlive,
		}
		g.Go(func() error { return srv.ListenAndServe(gctx, m.SSHAddr) })
	}
	if m.WebAddr != "" {
		srv := web.New(web.Options{
			Manager: m.Manager,
			Metrics: m.Metrics,
			Logger:  m.Logger,
			Pacing:  m.Pacing,
			MaxLine: m.MaxLine,
		})
		g.Go(func() error { return srv.ListenAndServe(gctx, m.WebAddr) })
	}

	err := g.Wait()

	grace := m.Grace
	if grace <= 0 {
		grace = 5 * time.Second
	}
	sctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if serr := m.Manager.Shutdown(sctx); serr != nil {
		m.Logger.Warn("shutdown: %d session(s) still open: %v", m.Manager.Len(), serr)
	}
	m.Logger.Verbose("served %d session(s)", m.Metrics.TotalSessions())
	m.Logger.Debug("final metrics:\n%s", m.Metrics.JSON())
	return err
}

// streamHandler returns the transport Handler that runs one raw byte
// stream (a TCP or SSH line) as a session.
func (m *ServeMode) streamHandler(via string) transport.Handler {
	return func(ctx context.Context, rw io.ReadWriter, remote string) {
		m.serveStream(ctx, rw, remote, via)
	}
}

// serveStream connects a session for the participant on rw, feeds it
// the lines the line discipline assembles, and returns once the session
// is gone.  End of input hangs up through the normal transcript.
func (m *ServeMode) serveStream(ctx context.Context, rw io.ReadWriter, remote, via string) {
	id := uuid.NewString()
	log := m.Logger.With(via + " " + id[:8])

	meter := &util.Meter{RW: rw, OnWrite: func(n int) { m.Metrics.BytesSent(int64(n)) }}
	out := m.Pacing(meter)
	out.CRLF = true

	done, err := m.Manager.Connect(ctx, id, out)
	if err != nil {
		log.Error("connect: %v", err)
		m.Metrics.RecordError(err.Error())
		return
	}
	log.Verbose("call from %s", remote)

	disc := linedisc.New(meter, out.Echo(), m.MaxLine)
	defer disc.Close()
	disc.Secret = func() bool {
		s, ok := m.Manager.Get(id)
		return ok && s.Secret()
	}

	go func() {
		for {
			line, err := disc.ReadLine(ctx, false)
			if err != nil {
				if !util.IsClosed(err) && ctx.Err() == nil {
					log.Debug("read: %v", err)
				}
				m.Manager.Hangup(id)
				return
			}
			if err := m.Manager.Input(id, line); err != nil {
				log.Debug("input discarded: %v", err)
			}
		}
	}()

	<-done
	in, sent := meter.Totals()
	log.Verbose("%s hung up (%d bytes in, %d out)", remote, in, sent)
}
