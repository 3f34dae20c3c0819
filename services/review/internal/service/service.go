package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/apperrors"
	"example.com/productmesh/pkg/serviceutil"
	"example.com/productmesh/services/review/internal/models"
	"example.com/productmesh/services/review/internal/repository"
	"example.com/productmesh/services/review/internal/search"
)

// ReviewService owns the review collection.
type ReviewService struct {
	repo    repository.Repository
	indexer search.Indexer
	address *serviceutil.AddressResolver
	log     *logrus.Logger
}

// NewReviewService creates the service. indexer may be nil when search is
// disabled.
func NewReviewService(repo repository.Repository, indexer search.Indexer, address *serviceutil.AddressResolver, log *logrus.Logger) *ReviewService {
	return &ReviewService{
		repo:    repo,
		indexer: indexer,
		address: address,
		log:     log,
	}
}

// GetReviews returns the reviews for a product, ascending by review id.
// An empty result is valid, not an error.
func (s *ReviewService) GetReviews(ctx context.Context, productID int) ([]api.Review, error) {
	if productID < 1 {
		return nil, apperrors.NewInvalidInput("Invalid productId: %d", productID)
	}

	entities, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, apperrors.NewInternal("failed to read reviews: %v", err)
	}

	reviews := make([]api.Review, 0, len(entities))
	for _, e := range entities {
		reviews = append(reviews, entityToAPI(&e, s.address.ServiceAddress()))
	}

	s.log.WithFields(logrus.Fields{"productId": productID, "count": len(reviews)}).
		Debug("getReviews found reviews")
	return reviews, nil
}

// CreateReview persists a new review. A duplicate (productId, reviewId)
// pair fails with a BadRequest naming both keys.
func (s *ReviewService) CreateReview(ctx context.Context, body api.Review) (api.Review, error) {
	if body.ProductID < 1 {
		return api.Review{}, apperrors.NewInvalidInput("Invalid productId: %d", body.ProductID)
	}

	entity := &models.ReviewEntity{
		ProductID: body.ProductID,
		ReviewID:  body.ReviewID,
		Author:    body.Author,
		Subject:   body.Subject,
		Content:   body.Content,
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return api.Review{}, apperrors.NewBadRequest(
				"Duplicate key, Product Id: %d, Review Id: %d", body.ProductID, body.ReviewID)
		}
		return api.Review{}, apperrors.NewInternal("failed to create review: %v", err)
	}

	// Search mirroring is best-effort and never fails the write.
	if s.indexer != nil {
		if err := s.indexer.IndexReview(ctx, entity); err != nil {
			s.log.WithError(err).Warn("Failed to index review")
		}
	}

	s.log.WithField("productId", body.ProductID).Debug("createReview: entity created")
	return entityToAPI(entity, ""), nil
}

// DeleteReviews removes every review for a product. Deleting an unknown
// productId is a no-op success.
func (s *ReviewService) DeleteReviews(ctx context.Context, productID int) error {
	if productID < 1 {
		return apperrors.NewInvalidInput("Invalid productId: %d", productID)
	}

	s.log.WithField("productId", productID).Debug("deleteReviews: deleting reviews")
	if err := s.repo.DeleteByProductID(ctx, productID); err != nil {
		return apperrors.NewInternal("failed to delete reviews: %v", err)
	}

	if s.indexer != nil {
		if err := s.indexer.DeleteByProductID(ctx, productID); err != nil {
			s.log.WithError(err).Warn("Failed to purge reviews from index")
		}
	}
	return nil
}

func entityToAPI(e *models.ReviewEntity, serviceAddress string) api.Review {
	return api.Review{
		ProductID:      e.ProductID,
		ReviewID:       e.ReviewID,
		Author:         e.Author,
		Subject:        e.Subject,
		Content:        e.Content,
		ServiceAddress: serviceAddress,
	}
}
