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

	"example.com/productmesh/pkg/discovery"
	"example.com/productmesh/pkg/messaging"
	"example.com/productmesh/pkg/serviceutil"
	"example.com/productmesh/services/composite/config"
	"example.com/productmesh/services/composite/internal/api"
	"example.com/productmesh/services/composite/internal/health"
	"example.com/productmesh/services/composite/internal/integration"
	"example.com/productmesh/services/composite/internal/service"
	"example.com/productmesh/services/composite/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server for the product aggregate endpoints`,
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

	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		tracer = noopTracer()
	}
	defer tracer.Close()

	publishers, closers, err := buildPublishers(cfg)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close publisher")
			}
		}
	}()

	resolver := discovery.NewStaticResolver(cfg.Integration.Services)
	client := integration.NewClient(resolver, cfg.Integration.Timeout, cfg.Integration.Transport, publishers)

	address := serviceutil.NewAddressResolver(cfg.ServerPort)
	aggregator := service.NewAggregator(client, address, tracer)

	monitor := health.NewMonitor(client, []string{
		integration.ServiceProduct,
		integration.ServiceRecommendation,
		integration.ServiceReview,
	})

	server := api.NewServer(cfg, aggregator, monitor, tracer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return monitor.Run(gctx, cfg.Health.RefreshInterval)
	})
	g.Go(func() error {
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}

	log.Info().Msg("Shutting down API server")
	return nil
}

// buildPublishers opens one Service Bus sender per core queue when the
// event transport is selected. Direct mode needs none.
func buildPublishers(cfg config.Config) (integration.Publishers, []messaging.Publisher, error) {
	if cfg.Integration.Transport != integration.TransportEvent {
		return integration.Publishers{}, nil, nil
	}

	product, err := messaging.NewServiceBusClient(cfg.Azure.QueueConnStr, cfg.Azure.ProductQueue, "composite-service")
	if err != nil {
		return integration.Publishers{}, nil, err
	}
	recommendation, err := messaging.NewServiceBusClient(cfg.Azure.QueueConnStr, cfg.Azure.RecommendationQueue, "composite-service")
	if err != nil {
		return integration.Publishers{}, nil, err
	}
	review, err := messaging.NewServiceBusClient(cfg.Azure.QueueConnStr, cfg.Azure.ReviewQueue, "composite-service")
	if err != nil {
		return integration.Publishers{}, nil, err
	}

	publishers := integration.Publishers{
		Product:        product,
		Recommendation: recommendation,
		Review:         review,
	}
	closers := []messaging.Publisher{product, recommendation, review}
	return publishers, closers, nil
}

func noopTracer() tracing.Tracer {
	tracer, _ := tracing.NewTracer(config.TracingConfig{})
	return tracer
}
