package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kartoza/wine-quality/internal/api"
	"github.com/kartoza/wine-quality/internal/config"
	"github.com/kartoza/wine-quality/internal/predictor"
	"github.com/kartoza/wine-quality/internal/view"
)

//go:embed static/*
var staticFS embed.FS

// Server holds all the components for the web application
type Server struct {
	cfg        config.Config
	httpServer *http.Server
	router     *mux.Router
	handler    http.Handler
	logger     *zap.Logger
	renderer   *view.Renderer
	predictor  *predictor.Client
}

// New creates a new Server with all components initialized
func New(cfg config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		router:    mux.NewRouter(),
		logger:    logger,
		renderer:  renderer,
		predictor: predictor.NewClient(cfg.Endpoint, nil, logger),
	}

	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() error {
	// API routes
	apiRouter := s.router.PathPrefix("/api").Subrouter()
	apiHandler := api.NewHandler(s.predictor, s.cfg, s.logger)
	apiHandler.RegisterRoutes(apiRouter)

	// Static assets (embedded)
	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("could not load embedded static files: %w", err)
	}
	s.router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))

	// The prediction page
	s.router.HandleFunc("/", s.handlePage).Methods("GET")
	s.router.HandleFunc("/", s.handleSubmit).Methods("POST")

	// Wrapped outside the router so unmatched routes are logged too
	s.handler = s.wrap(s.router)
	return nil
}

// wrap applies the middleware chain. The request logger is outermost so a
// recovered panic is still logged with its request id.
func (s *Server) wrap(h http.Handler) http.Handler {
	return requestLogger(s.logger)(recoverer(s.logger)(h))
}

// Handler returns the root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for HTTP connections. It returns nil once Stop
// has closed the server.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", s.cfg.Port),
		Handler:     s.handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	s.logger.Info("server listening",
		zap.String("url", fmt.Sprintf("http://localhost:%d", s.cfg.Port)),
		zap.String("endpoint", s.cfg.Endpoint))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}
