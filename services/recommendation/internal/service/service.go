package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/apperrors"
	"example.com/productmesh/pkg/serviceutil"
	"example.com/productmesh/services/recommendation/internal/store"
)

// RecommendationService owns the recommendation collection and maps store
// conflicts into the domain error taxonomy.
type RecommendationService struct {
	store   *store.Store
	address *serviceutil.AddressResolver
}

// NewRecommendationService creates the service over its store.
func NewRecommendationService(s *store.Store, address *serviceutil.AddressResolver) *RecommendationService {
	return &RecommendationService{store: s, address: address}
}

// GetRecommendations returns the recommendations for a product, ascending
// by recommendation id. An empty result is valid, not an error.
func (s *RecommendationService) GetRecommendations(ctx context.Context, productID int) ([]api.Recommendation, error) {
	if productID < 1 {
		return nil, apperrors.NewInvalidInput("Invalid productId: %d", productID)
	}

	entities, err := s.store.FindByProductID(ctx, productID)
	if err != nil {
		return nil, apperrors.NewInternal("failed to read recommendations: %v", err)
	}

	recommendations := make([]api.Recommendation, 0, len(entities))
	for _, e := range entities {
		recommendations = append(recommendations, entityToAPI(e, s.address.ServiceAddress()))
	}

	log.Debug().Int("productId", productID).Int("count", len(recommendations)).
		Msg("getRecommendations found recommendations")
	return recommendations, nil
}

// CreateRecommendation persists a new recommendation. A duplicate
// (productId, recommendationId) pair fails with a BadRequest naming both
// keys.
func (s *RecommendationService) CreateRecommendation(ctx context.Context, body api.Recommendation) (api.Recommendation, error) {
	if body.ProductID < 1 {
		return api.Recommendation{}, apperrors.NewInvalidInput("Invalid productId: %d", body.ProductID)
	}

	entity := &store.Entity{
		ProductID:        body.ProductID,
		RecommendationID: body.RecommendationID,
		Author:           body.Author,
		Rate:             body.Rate,
		Content:          body.Content,
	}

	saved, err := s.store.Save(ctx, entity)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			return api.Recommendation{}, apperrors.NewBadRequest(
				"Duplicate key, Product Id: %d, Recommendation Id: %d", body.ProductID, body.RecommendationID)
		}
		return api.Recommendation{}, apperrors.NewInternal("failed to save recommendation: %v", err)
	}

	log.Debug().Int("productId", saved.ProductID).Str("id", saved.ID).
		Msg("createRecommendation: entity created")
	return entityToAPI(*saved, ""), nil
}

// DeleteRecommendations removes every recommendation for a product.
// Deleting an unknown product id is a no-op success.
func (s *RecommendationService) DeleteRecommendations(ctx context.Context, productID int) error {
	if productID < 1 {
		return apperrors.NewInvalidInput("Invalid productId: %d", productID)
	}

	log.Debug().Int("productId", productID).Msg("deleteRecommendations: deleting recommendations")
	if err := s.store.DeleteByProductID(ctx, productID); err != nil {
		return apperrors.NewInternal("failed to delete recommendations: %v", err)
	}
	return nil
}

func entityToAPI(e store.Entity, serviceAddress string) api.Recommendation {
	return api.Recommendation{
		ProductID:        e.ProductID,
		RecommendationID: e.RecommendationID,
		Author:           e.Author,
		Rate:             e.Rate,
		Content:          e.Content,
		ServiceAddress:   serviceAddress,
	}
}
