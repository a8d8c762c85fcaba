package web

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"dialup/internal/metrics"
)

const (
	writeWait = 10 * time.Second
	closeWait = 2 * time.Second
)

// socketWriter sends every Write as one text message.
type socketWriter struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	metrics *metrics.Collector
}

func (w *socketWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	w.metrics.BytesSent(int64(len(p)))
	return len(p), nil
}

// serveSocket runs one browser connection: connect opens a session,
// every inbound message is one input line, and the socket closes once
// the session hangs up.
func (s *Server) serveSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade from %s: %v", c.ClientIP(), err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(int64(4 * s.maxLine))

	id := uuid.NewString()
	log := s.logger.With("web " + id[:8])
	log.Verbose("connected from %s", c.ClientIP())

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	out := s.pacing(&socketWriter{conn: conn, metrics: s.metrics})
	done, err := s.manager.Connect(ctx, id, out)
	if err != nil {
		log.Error("connect: %v", err)
		s.metrics.RecordError(err.Error())
		return
	}

	go func() {
		<-done
		deadline := time.Now().Add(closeWait)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "NO CARRIER")
		conn.WriteControl(websocket.CloseMessage, msg, deadline) //nolint:errcheck
		conn.SetReadDeadline(deadline)                           //nolint:errcheck
	}()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("read: %v", err)
			}
			break
		}
		if kind != websocket.TextMessage {
			continue
		}
		if err := s.manager.Input(id, Sanitize(data, s.maxLine)); err != nil {
			log.Debug("input discarded: %v", err)
		}
	}

	s.manager.Disconnect(id)
	<-done
	log.Verbose("disconnected")
}

// Sanitize turns one WebSocket message into one input line.  Invalid
// UTF-8 is dropped, only the text before the first line break is kept,
// control characters are removed, and the result is cut to max bytes
// on a rune boundary.
func Sanitize(data []byte, max int) string {
	s := strings.ToValidUTF8(string(data), "")
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	if max > 0 && len(s) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}
