package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"example.com/productmesh/pkg/serviceutil"
	"example.com/productmesh/services/review/config"
	"example.com/productmesh/services/review/internal/api"
	"example.com/productmesh/services/review/internal/db"
	"example.com/productmesh/services/review/internal/repository"
	"example.com/productmesh/services/review/internal/search"
	"example.com/productmesh/services/review/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger()

		cfg, err := config.Load()
		if err != nil {
			logger.Fatalf("Failed to load configuration: %v", err)
		}

		dbConn, err := db.Connect(&cfg.Database)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}

		if err := db.Migrate(dbConn); err != nil {
			logger.Fatalf("Failed to run database migrations: %v", err)
		}

		indexer, err := search.NewElasticIndexer(cfg.Elasticsearch, logger)
		if err != nil {
			logger.Fatalf("Failed to connect to Elasticsearch: %v", err)
		}
		if indexer == nil {
			logger.Info("Search indexing disabled")
		}

		repo := repository.NewRepository(dbConn)
		address := serviceutil.NewAddressResolver(strconv.Itoa(cfg.Server.Port))
		svc := service.NewReviewService(repo, toIndexer(indexer), address, logger)

		handler := api.NewHandler(svc, logger)
		router := mux.NewRouter()
		handler.RegisterRoutes(router)

		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		server := &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		go func() {
			logger.Infof("Starting server on %s", addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatalf("Failed to start server: %v", err)
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		logger.Info("Shutting down server...")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Fatalf("Server shutdown failed: %v", err)
		}

		logger.Info("Server shutdown complete")
	},
}

// toIndexer keeps a nil *ElasticIndexer from becoming a non-nil interface.
func toIndexer(indexer *search.ElasticIndexer) search.Indexer {
	if indexer == nil {
		return nil
	}
	return indexer
}
