package transport

import (
	"context"
	"net"

	"dialup/util"
)

// TCPServer serves participants over plain TCP: telnet, netcat, or any
// raw terminal client.
type TCPServer struct {
	Handler Handler
	Logger  *util.Logger
}

// Serve accepts on ln until ctx is done.
func (s *TCPServer) Serve(ctx context.Context, ln net.Listener) error {
	s.Logger.Info("dial-in (tcp) listening on %s", ln.Addr())
	return acceptLoop(ctx, ln, s.Logger, func(conn net.Conn) {
		defer conn.Close()
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetNoDelay(true) //nolint:errcheck
		}
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		s.Handler(ctx, conn, conn.RemoteAddr().String())
	})
}

// ListenAndServe binds address and serves it.
func (s *TCPServer) ListenAndServe(ctx context.Context, address string) error {
	ln, err := Listen(ctx, address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}
