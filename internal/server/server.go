// Package server is the HTTP API over a comparison session.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jjtimmons/seqcmp/internal/metrics"
	"github.com/jjtimmons/seqcmp/internal/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// maxBody caps uploaded FASTA files.
const maxBody = 256 << 20

// Options configure a Server.
type Options struct {
	// Session is shared by every request
	Session *session.Session

	// Logger gets one line per request. slog.Default() if nil
	Logger *slog.Logger

	// ExportFile is the attachment name of exported history entries
	ExportFile string
}

// Server routes API requests to a session.
type Server struct {
	session    *session.Session
	logger     *slog.Logger
	exportFile string
	router     *gin.Engine
}

// New returns a Server with its routes registered.
func New(opts Options) (*Server, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	s := &Server{
		session:    opts.Session,
		logger:     opts.Logger,
		exportFile: opts.ExportFile,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.exportFile == "" {
		s.exportFile = "comparison.txt"
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("seqcmp"))
	router.Use(metrics.Middleware())
	router.Use(s.logRequests())

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.GET("/records", s.listRecords)
		v1.POST("/records", s.loadRecords)
		v1.GET("/selection", s.getSelection)
		v1.PUT("/selection", s.putSelection)
		v1.POST("/compare", s.compare)
		v1.POST("/align", s.align)

		v1.GET("/history", s.listHistory)
		v1.GET("/history/:id", s.getHistory)
		v1.PUT("/history/:id/notes", s.putNotes)
		v1.GET("/history/:id/export", s.exportHistory)
		v1.DELETE("/history/:id", s.deleteHistory)
	}

	s.router = router
	return s, nil
}

// Handler is the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
		for _, err := range c.Errors {
			s.logger.Warn("request failed", "path", c.Request.URL.Path, "error", err.Err)
		}
	}
}
