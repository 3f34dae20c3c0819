package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"example.com/productmesh/pkg/messaging"
	"example.com/productmesh/services/recommendation/config"
	recmessaging "example.com/productmesh/services/recommendation/internal/messaging"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the event worker",
	Long:  `Start the background worker applying data events from the event channel`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
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

	g, ctx := errgroup.WithContext(ctx)

	svc, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}

	bus, err := messaging.NewServiceBusClient(cfg.Azure.QueueConnStr, cfg.Azure.QueueName, "recommendation-worker")
	if err != nil {
		return err
	}
	defer bus.Close()

	processor := recmessaging.NewProcessor(svc)

	g.Go(func() error {
		log.Info().Str("queue", cfg.Azure.QueueName).Msg("Starting event channel processor")
		return bus.Consume(ctx, processor.Process)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}
