// Package web is the browser form of the dial-in service: a gin router
// serving a terminal page, a WebSocket relay into the session Manager,
// and the health and Prometheus endpoints.
package web

import (
	"context"
	"embed"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dialup/internal/linedisc"
	"dialup/internal/metrics"
	"dialup/internal/pacing"
	"dialup/internal/session"
	"dialup/internal/transport"
	"dialup/util"
)

//go:embed static/index.html
var static embed.FS

const shutdownGrace = 5 * time.Second

// Options configures a Server.
type Options struct {
	Manager *session.Manager
	Metrics *metrics.Collector
	Logger  *util.Logger
	// Pacing builds the output writer for one connection.  Nil means
	// unpaced output.
	Pacing  func(w io.Writer) *pacing.Writer
	MaxLine int
}

// Server relays browser WebSocket connections into dial-in sessions.
type Server struct {
	manager  *session.Manager
	metrics  *metrics.Collector
	exporter *metrics.Exporter
	logger   *util.Logger
	pacing   func(w io.Writer) *pacing.Writer
	maxLine  int
	upgrader websocket.Upgrader
	router   *gin.Engine
}

// New builds a Server and its routes.
func New(opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		manager:  opts.Manager,
		metrics:  opts.Metrics,
		exporter: metrics.NewExporter(opts.Metrics),
		logger:   opts.Logger,
		pacing:   opts.Pacing,
		maxLine:  opts.MaxLine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The terminal page may be served from anywhere; sessions
			// carry no ambient credentials.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	if s.pacing == nil {
		s.pacing = func(w io.Writer) *pacing.Writer {
			pw := pacing.NewWriter(w, 0, 0)
			pw.Scale = 0
			return pw
		}
	}
	if s.maxLine <= 0 {
		s.maxLine = linedisc.DefaultMaxLine
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())
	r.GET("/", s.index)
	r.GET("/ws", s.serveSocket)
	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.exporter.Registry(), promhttp.HandlerOpts{})))
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Serve serves HTTP on ln until ctx is done.  Requests, including open
// WebSocket sessions, see ctx as their parent context.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		srv.Shutdown(sctx) //nolint:errcheck
	}()

	s.logger.Info("dial-in (web) listening on http://%s", ln.Addr())
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// ListenAndServe binds address and serves it.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	ln, err := transport.Listen(ctx, address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) index(c *gin.Context) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) health(c *gin.Context) {
	s.metrics.RecordHealthCheck()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.manager.Len(),
		"metrics":  s.metrics.Snapshot(),
	})
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Verbose("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Truncate(time.Microsecond))
	}
}
