package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/productmesh/services/composite/config"
	"example.com/productmesh/services/composite/internal/auth"
	"example.com/productmesh/services/composite/internal/health"
	"example.com/productmesh/services/composite/internal/service"
	"example.com/productmesh/services/composite/internal/tracing"
)

// Server is the composite HTTP server.
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer creates the HTTP server.
func NewServer(cfg config.Config, aggregator *service.Aggregator, monitor *health.Monitor, tracer tracing.Tracer) *Server {
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger())

	if app := tracer.Application(); app != nil {
		router.Use(nrgin.Middleware(app))
	}

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)
	handler := NewCompositeHandler(aggregator, monitor)

	read := router.Group("/", RequireScope(verifier, auth.ScopeProductRead))
	write := router.Group("/", RequireScope(verifier, auth.ScopeProductWrite))
	handler.RegisterRoutes(read, write)

	router.GET("/health", handler.Health)

	return &Server{
		config: cfg,
		router: router,
		httpServer: &http.Server{
			Addr:    cfg.ServerAddress,
			Handler: router,
		},
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Info().Str("address", s.config.ServerAddress).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("HTTP server shut down successfully")
	return nil
}
