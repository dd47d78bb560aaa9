package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"glossaudio/internal/cdrstore"
	"glossaudio/internal/config"
	"glossaudio/internal/logging"
	"glossaudio/internal/pipeline"
)

//go:embed templates/page.html
var templateFS embed.FS

// UserHeader carries the CDR account when a fronting proxy authenticates users.
const UserHeader = "X-CDR-User"

// PipelineFactory builds a pipeline acting for user.
type PipelineFactory func(user string) (*pipeline.Pipeline, error)

// Server represents the HTTP server.
type Server struct {
	engine      *gin.Engine
	httpServer  *http.Server
	cfg         *config.Config
	store       *cdrstore.Store
	logger      *slog.Logger
	newPipeline PipelineFactory
}

// NewServer creates a server bound to cfg.Server.Bind. Each request gets a
// fresh pipeline so permission and creator caches never outlive a request.
func NewServer(cfg *config.Config, store *cdrstore.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "web"),
	}
	s.newPipeline = func(user string) (*pipeline.Pipeline, error) {
		return pipeline.FromConfig(cfg, store.ForUser(user), logger)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	engine.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/page.html")))
	s.engine = engine
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              cfg.Server.Bind,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return s
}

// Engine returns the Gin engine for testing.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) setupRoutes() {
	s.engine.GET("/", s.form)
	s.engine.POST("/run", s.run)
	s.engine.GET("/healthz", s.health)
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("serving confirmation form", logging.String("addr", listener.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.String("elapsed", time.Since(start).String()),
		)
	}
}
