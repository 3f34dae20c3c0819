package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/serviceutil"
	"example.com/productmesh/services/composite/internal/tracing"
)

// Integration is the slice of the integration client the aggregator
// depends on.
type Integration interface {
	GetProduct(ctx context.Context, productID, delay, faultPercent int) (api.Product, error)
	GetRecommendations(ctx context.Context, productID int) []api.Recommendation
	GetReviews(ctx context.Context, productID int) []api.Review

	CreateProduct(ctx context.Context, body api.Product) (api.Product, error)
	CreateRecommendation(ctx context.Context, body api.Recommendation) (api.Recommendation, error)
	CreateReview(ctx context.Context, body api.Review) (api.Review, error)

	DeleteProduct(ctx context.Context, productID int) error
	DeleteRecommendations(ctx context.Context, productID int) error
	DeleteReviews(ctx context.Context, productID int) error
}

// Aggregator assembles and decomposes product aggregates across the three
// core services.
type Aggregator struct {
	integration Integration
	address     *serviceutil.AddressResolver
	tracer      tracing.Tracer
}

// NewAggregator creates the aggregator.
func NewAggregator(integration Integration, address *serviceutil.AddressResolver, tracer tracing.Tracer) *Aggregator {
	return &Aggregator{
		integration: integration,
		address:     address,
		tracer:      tracer,
	}
}

// GetProduct fans out to the three core services concurrently and joins
// the results. The product call is mandatory: its failure fails the
// aggregate. Recommendations and reviews degrade to empty lists inside
// the integration client, so the aggregate survives their outages.
func (a *Aggregator) GetProduct(ctx context.Context, productID, delay, faultPercent int) (api.ProductAggregate, error) {
	txn := a.tracer.StartTransaction("get-product-aggregate")
	defer a.tracer.EndTransaction(txn)
	a.tracer.AddAttribute(txn, "productId", productID)

	var (
		product         api.Product
		recommendations []api.Recommendation
		reviews         []api.Review
	)

	// The secondary reads deliberately use the caller's context, not the
	// group's: a product failure must not abort their in-flight work, they
	// degrade to empty on their own.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		span := a.tracer.StartSpan("get-product", txn)
		defer span.End()

		var err error
		product, err = a.integration.GetProduct(gctx, productID, delay, faultPercent)
		return err
	})

	g.Go(func() error {
		span := a.tracer.StartSpan("get-recommendations", txn)
		defer span.End()

		recommendations = a.integration.GetRecommendations(ctx, productID)
		return nil
	})

	g.Go(func() error {
		span := a.tracer.StartSpan("get-reviews", txn)
		defer span.End()

		reviews = a.integration.GetReviews(ctx, productID)
		return nil
	})

	if err := g.Wait(); err != nil {
		a.tracer.RecordError(txn, err)
		return api.ProductAggregate{}, err
	}

	log.Debug().Int("productId", productID).
		Int("recommendations", len(recommendations)).
		Int("reviews", len(reviews)).
		Msg("Product aggregate assembled")

	return a.assemble(product, recommendations, reviews), nil
}

// CreateProduct decomposes an aggregate and creates its parts in the core
// services: the product first, then every recommendation and review with
// the aggregate's product id stamped on them.
func (a *Aggregator) CreateProduct(ctx context.Context, body api.ProductAggregate) error {
	txn := a.tracer.StartTransaction("create-product-aggregate")
	defer a.tracer.EndTransaction(txn)
	a.tracer.AddAttribute(txn, "productId", body.ProductID)

	product := api.Product{
		ProductID: body.ProductID,
		Name:      body.Name,
		Weight:    body.Weight,
	}
	if _, err := a.integration.CreateProduct(ctx, product); err != nil {
		a.tracer.RecordError(txn, err)
		return err
	}

	for _, r := range body.Recommendations {
		recommendation := api.Recommendation{
			ProductID:        body.ProductID,
			RecommendationID: r.RecommendationID,
			Author:           r.Author,
			Rate:             r.Rate,
			Content:          r.Content,
		}
		if _, err := a.integration.CreateRecommendation(ctx, recommendation); err != nil {
			a.tracer.RecordError(txn, err)
			return err
		}
	}

	for _, r := range body.Reviews {
		review := api.Review{
			ProductID: body.ProductID,
			ReviewID:  r.ReviewID,
			Author:    r.Author,
			Subject:   r.Subject,
			Content:   r.Content,
		}
		if _, err := a.integration.CreateReview(ctx, review); err != nil {
			a.tracer.RecordError(txn, err)
			return err
		}
	}

	log.Info().Int("productId", body.ProductID).Msg("Product aggregate created")
	return nil
}

// DeleteProduct tears an aggregate down across all three services. Every
// delete is issued unconditionally and each is idempotent downstream, so
// repeating the whole operation succeeds too.
func (a *Aggregator) DeleteProduct(ctx context.Context, productID int) error {
	txn := a.tracer.StartTransaction("delete-product-aggregate")
	defer a.tracer.EndTransaction(txn)
	a.tracer.AddAttribute(txn, "productId", productID)

	if err := a.integration.DeleteProduct(ctx, productID); err != nil {
		a.tracer.RecordError(txn, err)
		return err
	}
	if err := a.integration.DeleteRecommendations(ctx, productID); err != nil {
		a.tracer.RecordError(txn, err)
		return err
	}
	if err := a.integration.DeleteReviews(ctx, productID); err != nil {
		a.tracer.RecordError(txn, err)
		return err
	}

	log.Info().Int("productId", productID).Msg("Product aggregate deleted")
	return nil
}

// assemble joins the three results into the response shape. The per-service
// addresses come from the first element of each list; an empty list leaves
// an empty address.
func (a *Aggregator) assemble(product api.Product, recommendations []api.Recommendation, reviews []api.Review) api.ProductAggregate {
	recommendationSummaries := make([]api.RecommendationSummary, 0, len(recommendations))
	for _, r := range recommendations {
		recommendationSummaries = append(recommendationSummaries, api.RecommendationSummary{
			RecommendationID: r.RecommendationID,
			Author:           r.Author,
			Rate:             r.Rate,
			Content:          r.Content,
		})
	}

	reviewSummaries := make([]api.ReviewSummary, 0, len(reviews))
	for _, r := range reviews {
		reviewSummaries = append(reviewSummaries, api.ReviewSummary{
			ReviewID: r.ReviewID,
			Author:   r.Author,
			Subject:  r.Subject,
			Content:  r.Content,
		})
	}

	addresses := &api.ServiceAddresses{
		CompositeAddress: a.address.ServiceAddress(),
		ProductAddress:   product.ServiceAddress,
	}
	if len(reviews) > 0 {
		addresses.ReviewAddress = reviews[0].ServiceAddress
	}
	if len(recommendations) > 0 {
		addresses.RecommendationAddress = recommendations[0].ServiceAddress
	}

	return api.ProductAggregate{
		ProductID:        product.ProductID,
		Name:             product.Name,
		Weight:           product.Weight,
		Recommendations:  recommendationSummaries,
		Reviews:          reviewSummaries,
		ServiceAddresses: addresses,
	}
}
