package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/productmesh/services/recommendation/config"
	"example.com/productmesh/services/recommendation/internal/service"
)

// Server is the recommendation HTTP server.
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
	service    *service.RecommendationService
}

// NewServer creates the HTTP server.
func NewServer(cfg config.Config, svc *service.RecommendationService) *Server {
	server := &Server{
		config:  cfg,
		service: svc,
	}

	router := server.setupRouter()
	server.router = router
	server.httpServer = &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: router,
	}

	return server
}

func (s *Server) setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())

	handler := NewRecommendationHandler(s.service)
	handler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
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
