package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"example.com/productmesh/pkg/serviceutil"
	"example.com/productmesh/services/recommendation/config"
	"example.com/productmesh/services/recommendation/internal/api"
	"example.com/productmesh/services/recommendation/internal/service"
	"example.com/productmesh/services/recommendation/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server for the recommendation endpoints`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	svc, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}

	server := api.NewServer(cfg, svc)
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	}()

	<-ctx.Done()

	if err := server.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Shutting down API server")
	return nil
}

func buildService(ctx context.Context, cfg config.Config) (*service.RecommendationService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	engine, err := store.NewRedisEngine(ctx, client)
	if err != nil {
		return nil, err
	}

	address := serviceutil.NewAddressResolver(cfg.ServerPort)
	return service.NewRecommendationService(store.New(engine), address), nil
}
