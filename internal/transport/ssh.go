package transport

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"dialup/util"
)

// DefaultHandshakeTimeout bounds the SSH key exchange for one client.
const DefaultHandshakeTimeout = 10 * time.Second

// SSHServer serves participants over SSH.  SSH-level authentication is
// open: any user name and password are accepted, because the dial-in
// session runs its own login prompt over the shell channel.
type SSHServer struct {
	Handler          Handler
	Logger           *util.Logger
	Signer           ssh.Signer
	HandshakeTimeout time.Duration
	// KeepAlive, when positive, pings each client at this interval
	// and drops connections that stop answering.
	KeepAlive time.Duration
}

func (s *SSHServer) config() *ssh.ServerConfig {
	cfg := &ssh.ServerConfig{
		NoClientAuth: true,
		PasswordCallback: func(ssh.ConnMetadata, []byte) (*ssh.Permissions, error) {
			return nil, nil
		},
		KeyboardInteractiveCallback: func(ssh.ConnMetadata, ssh.KeyboardInteractiveChallenge) (*ssh.Permissions, error) {
			return nil, nil
		},
		ServerVersion: "SSH-2.0-dialup",
	}
	cfg.AddHostKey(s.Signer)
	return cfg
}

// Serve accepts on ln until ctx is done.
func (s *SSHServer) Serve(ctx context.Context, ln net.Listener) error {
	if s.Signer == nil {
		return fmt.Errorf("ssh: no host key")
	}
	cfg := s.config()
	s.Logger.Info("dial-in (ssh) listening on %s, host key %s", ln.Addr(), ssh.FingerprintSHA256(s.Signer.PublicKey()))
	return acceptLoop(ctx, ln, s.Logger, func(conn net.Conn) {
		s.serveConn(ctx, conn, cfg)
	})
}

// ListenAndServe binds address and serves it.
func (s *SSHServer) ListenAndServe(ctx context.Context, address string) error {
	ln, err := Listen(ctx, address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *SSHServer) serveConn(ctx context.Context, conn net.Conn, cfg *ssh.ServerConfig) {
	defer conn.Close()

	timeout := s.HandshakeTimeout
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}
	conn.SetDeadline(time.Now().Add(timeout)) //nolint:errcheck
	sconn, chans, reqs, err := ssh.NewServerConn(conn, cfg)
	if err != nil {
		s.Logger.Verbose("ssh handshake with %s: %v", conn.RemoteAddr(), err)
		return
	}
	conn.SetDeadline(time.Time{}) //nolint:errcheck
	defer sconn.Close()
	s.Logger.Verbose("ssh client %s as %q (%s)", sconn.RemoteAddr(), sconn.User(), sconn.ClientVersion())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		sconn.Close()
	}()
	go ssh.DiscardRequests(reqs)
	if s.KeepAlive > 0 {
		go s.keepalive(ctx, sconn)
	}

	var wg sync.WaitGroup
	defer wg.Wait()
	for nc := range chans {
		if nc.ChannelType() != "session" {
			nc.Reject(ssh.UnknownChannelType, "only session channels are supported") //nolint:errcheck
			continue
		}
		ch, requests, err := nc.Accept()
		if err != nil {
			s.Logger.Warn("ssh accept channel from %s: %v", sconn.RemoteAddr(), err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.serveChannel(ctx, ch, requests, sconn.RemoteAddr().String())
		}()
	}
}

// keepalive closes sconn once the client stops answering keep-alive
// requests, so a dropped line hangs up its sessions.
func (s *SSHServer) keepalive(ctx context.Context, sconn *ssh.ServerConn) {
	ticker := time.NewTicker(s.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := sconn.SendRequest("keepalive@openssh.com", true, nil); err != nil {
				s.Logger.Verbose("ssh keepalive to %s failed: %v", sconn.RemoteAddr(), err)
				sconn.Close()
				return
			}
			s.Logger.Debug("ssh keepalive to %s ok", sconn.RemoteAddr())
		}
	}
}

// serveChannel waits for the client's shell request, then hands the
// channel to the Handler.  exec and subsystem requests are refused.
func (s *SSHServer) serveChannel(ctx context.Context, ch ssh.Channel, requests <-chan *ssh.Request, remote string) {
	defer ch.Close()

	shell := make(chan struct{})
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		started := false
		for req := range requests {
			switch req.Type {
			case "shell":
				ok := !started
				req.Reply(ok, nil) //nolint:errcheck
				if ok {
					started = true
					close(shell)
				}
			case "pty-req", "env", "window-change":
				req.Reply(true, nil) //nolint:errcheck
			default:
				s.Logger.Verbose("ssh %s: refusing %q request", remote, req.Type)
				req.Reply(false, nil) //nolint:errcheck
			}
		}
	}()

	select {
	case <-shell:
	case <-gone:
		return
	case <-ctx.Done():
		return
	}

	s.Handler(ctx, ch, remote)

	status := struct{ Status uint32 }{0}
	ch.SendRequest("exit-status", false, ssh.Marshal(&status)) //nolint:errcheck
}

// LoadOrGenerateSigner returns the host key stored at path, creating an
// ed25519 key there first if the file does not exist.  An empty path
// yields an ephemeral key that is never written.
func LoadOrGenerateSigner(path string) (ssh.Signer, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			signer, err := ssh.ParsePrivateKey(data)
			if err != nil {
				return nil, fmt.Errorf("host key %s: %w", path, err)
			}
			return signer, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("host key %s: %w", path, err)
		}
	}

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating host key: %w", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		return nil, fmt.Errorf("generating host key: %w", err)
	}
	if path == "" {
		return signer, nil
	}

	block, err := ssh.MarshalPrivateKey(priv, "dialup host key")
	if err != nil {
		return nil, fmt.Errorf("encoding host key: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("host key %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return nil, fmt.Errorf("host key %s: %w", path, err)
	}
	return signer, nil
}
