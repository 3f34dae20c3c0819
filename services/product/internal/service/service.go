package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/apperrors"
	"example.com/productmesh/pkg/serviceutil"
	"example.com/productmesh/services/product/internal/cache"
	"example.com/productmesh/services/product/internal/models"
	"example.com/productmesh/services/product/internal/repository"
)

const cacheTTL = 24 * time.Hour

// ProductService owns the product collection.
type ProductService struct {
	repo    repository.Repository
	cache   cache.Cache
	address *serviceutil.AddressResolver

	// Fault injection source for the read path. Seeded by tests for
	// reproducible failures; rand.Rand is not goroutine safe, hence the
	// mutex.
	mu   sync.Mutex
	rand *rand.Rand
}

// NewProductService creates the service. The rand source drives the
// read-path fault injection hook.
func NewProductService(repo repository.Repository, c cache.Cache, address *serviceutil.AddressResolver, src rand.Source) *ProductService {
	return &ProductService{
		repo:    repo,
		cache:   c,
		address: address,
		rand:    rand.New(src),
	}
}

// GetProduct returns the product for productID.
//
// delay (milliseconds) and faultPercent are test hooks used to exercise the
// composite's timeout and partial-failure handling: delay suspends the read
// without blocking on context cancellation, and faultPercent randomly fails
// the given percentage of calls.
func (s *ProductService) GetProduct(ctx context.Context, productID, delay, faultPercent int) (api.Product, error) {
	if productID < 1 {
		return api.Product{}, apperrors.NewInvalidInput("Invalid productId: %d", productID)
	}

	if delay > 0 {
		select {
		case <-time.After(time.Duration(delay) * time.Millisecond):
		case <-ctx.Done():
			return api.Product{}, apperrors.NewInternal("request cancelled during delay: %v", ctx.Err())
		}
	}

	if faultPercent > 0 && s.throwDice() <= faultPercent {
		log.Warn().Int("productId", productID).Int("faultPercent", faultPercent).
			Msg("Bad luck, an error occurred")
		return api.Product{}, apperrors.NewInternal("Something went wrong...")
	}

	cacheKey := cache.ProductCacheKey(productID)
	var cached api.Product
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		cached.ServiceAddress = s.address.ServiceAddress()
		return cached, nil
	}

	entity, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return api.Product{}, apperrors.NewNotFound("No product found for productId: %d", productID)
		}
		return api.Product{}, apperrors.NewInternal("failed to read product: %v", err)
	}

	product := entityToAPI(entity)
	if err := s.cache.Set(ctx, cacheKey, product, cacheTTL); err != nil {
		log.Warn().Err(err).Int("productId", productID).Msg("Failed to update product cache")
	}

	product.ServiceAddress = s.address.ServiceAddress()
	return product, nil
}

// CreateProduct persists a new product. A duplicate productId fails with a
// BadRequest naming the key.
func (s *ProductService) CreateProduct(ctx context.Context, body api.Product) (api.Product, error) {
	if body.ProductID < 1 {
		return api.Product{}, apperrors.NewInvalidInput("Invalid productId: %d", body.ProductID)
	}

	entity := &models.ProductEntity{
		ProductID: body.ProductID,
		Name:      body.Name,
		Weight:    body.Weight,
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			return api.Product{}, apperrors.NewBadRequest("Duplicate key, Product Id: %d", body.ProductID)
		}
		return api.Product{}, apperrors.NewInternal("failed to create product: %v", err)
	}

	log.Debug().Int("productId", body.ProductID).Msg("createProduct: entity created")
	return entityToAPI(entity), nil
}

// DeleteProduct removes the product. Deleting an unknown productId is a
// no-op success.
func (s *ProductService) DeleteProduct(ctx context.Context, productID int) error {
	if productID < 1 {
		return apperrors.NewInvalidInput("Invalid productId: %d", productID)
	}

	log.Debug().Int("productId", productID).Msg("deleteProduct: deleting product")
	if err := s.repo.DeleteByProductID(ctx, productID); err != nil {
		return apperrors.NewInternal("failed to delete product: %v", err)
	}

	if err := s.cache.Delete(ctx, cache.ProductCacheKey(productID)); err != nil {
		log.Warn().Err(err).Int("productId", productID).Msg("Failed to invalidate product cache")
	}
	return nil
}

// throwDice returns a number in [1, 100].
func (s *ProductService) throwDice() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rand.Intn(100) + 1
}

func entityToAPI(e *models.ProductEntity) api.Product {
	return api.Product{
		ProductID: e.ProductID,
		Name:      e.Name,
		Weight:    e.Weight,
	}
}
