// Package transport accepts dial-in participants over the network.
// Transports handle the "how" of getting a participant's byte stream
// to the server (plain TCP, SSH) independent of what happens over
// that stream, which is the session engine's job.
package transport

import (
	"context"
	"io"
	"net"
	"sync"

	"dialup/internal/errors"
	"dialup/internal/retry"
	"dialup/util"
)

// Handler serves one participant.  rw is closed by the transport once
// Handler returns; Handler should return when ctx is done.
type Handler func(ctx context.Context, rw io.ReadWriter, remote string)

// Listen binds address, retrying briefly while it is still held by a
// previous process.
func Listen(ctx context.Context, address string) (net.Listener, error) {
	var ln net.Listener
	var lc net.ListenConfig
	err := retry.BindBackoff().Do(ctx, func(int) error {
		var err error
		ln, err = lc.Listen(ctx, "tcp", address)
		if err != nil && !errors.IsRetryable(err) && !addrInUse(err) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrap("listen", address, err)
	}
	return ln, nil
}

// acceptLoop accepts until ctx is done, pausing with backoff on
// temporary errors, and runs serve on its own goroutine per connection.
// It waits for every serve call to return before returning.
func acceptLoop(ctx context.Context, ln net.Listener, logger *util.Logger, serve func(net.Conn)) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	backoff := retry.DefaultBackoff()
	failures := 0
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.IsTemporary(err) {
				failures++
				logger.Warn("accept on %s: %v; retrying", ln.Addr(), err)
				if werr := backoff.Wait(ctx, failures); werr != nil {
					return nil
				}
				continue
			}
			return errors.Wrap("accept", ln.Addr().String(), err)
		}
		failures = 0

		logger.Verbose("connection from %s", conn.RemoteAddr())
		wg.Add(1)
		go func() {
			defer wg.Done()
			serve(conn)
		}()
	}
}
