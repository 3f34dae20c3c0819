// Package store implements keyed persistence for recommendation entities
// with manual unique-index enforcement and optimistic concurrency control.
// The backing engine is a plain hash with no native support for either, so
// both are emulated here at the store boundary.
package store

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"example.com/productmesh/pkg/apperrors"
)

// Entity is a stored recommendation. ID and Version are managed by the
// store; callers leave ID empty on first save.
type Entity struct {
	ID               string `json:"id"`
	Version          int    `json:"version"`
	ProductID        int    `json:"productId"`
	RecommendationID int    `json:"recommendationId"`
	Author           string `json:"author"`
	Rate             int    `json:"rate"`
	Content          string `json:"content"`
}

// Engine is the minimal hash contract the store needs. The production
// implementation is a Redis hash; tests use an in-memory map.
type Engine interface {
	Get(ctx context.Context, id string) (*Entity, error)
	Put(ctx context.Context, id string, entity *Entity) error
	Values(ctx context.Context) ([]Entity, error)
	Remove(ctx context.Context, id string) error
	Len(ctx context.Context) (int64, error)
	Has(ctx context.Context, id string) (bool, error)
}

// Store enforces the (productId, recommendationId) uniqueness constraint
// and version-based optimistic locking on top of an Engine.
//
// The duplicate check and the secondary lookups are linear scans over the
// hash values. That is acceptable at the collection sizes this service
// holds; a real secondary index structure should replace the scan if the
// collection grows.
type Store struct {
	engine Engine
}

// New creates a store over the given engine.
func New(engine Engine) *Store {
	return &Store{engine: engine}
}

// Save persists entity.
//
// A new entity (empty id) is checked against the unique compound key and
// rejected with ErrDuplicateKey when another live entity already claims it.
// An entity with an id is treated as an update: the stored version must
// match or the save fails with ErrOptimisticLock. An update whose id is no
// longer present falls back to creating a fresh entity; that rescue path
// mirrors the behavior this store replaces and is kept as-is.
//
// Neither failure is retried here. The caller decides whether to re-read
// and retry, since the underlying data changed meaningfully.
func (s *Store) Save(ctx context.Context, entity *Entity) (*Entity, error) {
	if entity.ID == "" {
		existing, err := s.FindByProductAndRecommendationID(ctx, entity.ProductID, entity.RecommendationID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, errors.Wrapf(apperrors.ErrDuplicateKey,
				"product id: %d, recommendation id: %d", entity.ProductID, entity.RecommendationID)
		}
		return s.addNewEntity(ctx, entity)
	}

	current, err := s.engine.Get(ctx, entity.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return s.addNewEntity(ctx, entity)
	}
	if current.Version != entity.Version {
		return nil, apperrors.ErrOptimisticLock
	}

	entity.Version++
	if err := s.engine.Put(ctx, entity.ID, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Store) addNewEntity(ctx context.Context, entity *Entity) (*Entity, error) {
	entity.ID = newEntityID()
	entity.Version = 0
	if err := s.engine.Put(ctx, entity.ID, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// FindByID returns the entity stored under id, or nil when absent.
func (s *Store) FindByID(ctx context.Context, id string) (*Entity, error) {
	return s.engine.Get(ctx, id)
}

// FindByProductID returns all entities for productID, ascending by
// recommendation id. The ordering is part of the read contract.
func (s *Store) FindByProductID(ctx context.Context, productID int) ([]Entity, error) {
	values, err := s.engine.Values(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]Entity, 0)
	for _, e := range values {
		if e.ProductID == productID {
			matches = append(matches, e)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].RecommendationID < matches[j].RecommendationID
	})
	return matches, nil
}

// FindByProductAndRecommendationID returns the single entity matching the
// compound key, or nil when absent.
func (s *Store) FindByProductAndRecommendationID(ctx context.Context, productID, recommendationID int) (*Entity, error) {
	values, err := s.engine.Values(ctx)
	if err != nil {
		return nil, err
	}

	for i := range values {
		if values[i].ProductID == productID && values[i].RecommendationID == recommendationID {
			return &values[i], nil
		}
	}
	return nil, nil
}

// DeleteByProductID removes every entity for productID. Removing an
// unknown product id is a no-op.
func (s *Store) DeleteByProductID(ctx context.Context, productID int) error {
	values, err := s.engine.Values(ctx)
	if err != nil {
		return err
	}

	for _, e := range values {
		if e.ProductID == productID {
			if err := s.engine.Remove(ctx, e.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteByID removes the entity stored under id.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	return s.engine.Remove(ctx, id)
}

// Count returns the number of stored entities.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.engine.Len(ctx)
}

// ExistsByID reports whether an entity is stored under id.
func (s *Store) ExistsByID(ctx context.Context, id string) (bool, error) {
	return s.engine.Has(ctx, id)
}

// newEntityID generates an opaque globally unique id. Ids are never reused,
// even after deletion.
func newEntityID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
