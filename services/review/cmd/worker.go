package cmd

import (
	"context"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	pkgmessaging "example.com/productmesh/pkg/messaging"
	"example.com/productmesh/pkg/serviceutil"
	"example.com/productmesh/services/review/config"
	"example.com/productmesh/services/review/internal/db"
	"example.com/productmesh/services/review/internal/messaging"
	"example.com/productmesh/services/review/internal/repository"
	"example.com/productmesh/services/review/internal/search"
	"example.com/productmesh/services/review/internal/service"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the event consumer",
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

		bus, err := pkgmessaging.NewServiceBusClient(
			cfg.ServiceBus.ConnectionString, cfg.ServiceBus.QueueName, "review-service")
		if err != nil {
			logger.Fatalf("Failed to connect to Service Bus: %v", err)
		}
		defer bus.Close()

		repo := repository.NewRepository(dbConn)
		address := serviceutil.NewAddressResolver(strconv.Itoa(cfg.Server.Port))
		svc := service.NewReviewService(repo, toIndexer(indexer), address, logger)
		processor := messaging.NewProcessor(svc, logger)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Infof("Starting event consumer on queue %s", cfg.ServiceBus.QueueName)
		if err := bus.Consume(ctx, processor.Process); err != nil && ctx.Err() == nil {
			logger.Fatalf("Consumer stopped: %v", err)
		}

		logger.Info("Event consumer shutdown complete")
	},
}
