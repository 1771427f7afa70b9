package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"

	"github.com/nahidhasan98/changed-files/internal/config"
	"github.com/nahidhasan98/changed-files/internal/handlers"
	"github.com/nahidhasan98/changed-files/internal/logger"
	"github.com/nahidhasan98/changed-files/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	handler    *handlers.Handler
	middleware *middleware.Middleware
	log        *logger.Logger
}

// New creates a new HTTP server
func New(cfg *config.Config, handler *handlers.Handler, log *logger.Logger) *Server {
	mw := middleware.New(log, cfg.Server.RequestsPerMin)
	mw.SetAPIKeys(cfg.Security.APIKeys)
	mw.SetTrustedProxies(cfg.Server.TrustedProxies)

	s := &Server{
		handler:    handler,
		middleware: mw,
		log:        log,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      s.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Routes returns the routed handler wrapped in the middleware chain
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Register routes
	mux.HandleFunc("GET /health", s.handler.HealthCheck)
	mux.HandleFunc("POST /classify", s.handler.Classify)
	mux.HandleFunc("POST /webhook/gitea", s.handler.GiteaWebhook)
	mux.HandleFunc("POST /webhook/github", s.handler.GitHubWebhook)

	// Apply middleware chain
	handler := s.middleware.Recovery(mux)
	handler = s.middleware.Security(handler)
	handler = s.middleware.CORS(handler)
	handler = s.middleware.RateLimit(handler)
	handler = s.middleware.APIKeyAuth(handler)
	handler = s.middleware.Logging(handler)

	return handler
}

// Start listens on the configured address and serves in the background.
// Serve errors other than a clean shutdown are sent on the returned channel.
func (s *Server) Start() (<-chan error, error) {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	s.log.Infof("HTTP server listening on %s", ln.Addr())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return errCh, nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.log.Info("HTTP server shutdown complete")
	return nil
}
