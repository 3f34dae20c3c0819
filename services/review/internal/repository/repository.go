package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/productmesh/services/review/internal/models"
)

// Repository provides access to review rows.
type Repository interface {
	FindByProductID(ctx context.Context, productID int) ([]models.ReviewEntity, error)
	Create(ctx context.Context, entity *models.ReviewEntity) error
	DeleteByProductID(ctx context.Context, productID int) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed repository. The db must be opened
// with TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// FindByProductID returns the reviews for a product, ascending by review
// id. The ordering is part of the read contract.
func (r *gormRepository) FindByProductID(ctx context.Context, productID int) ([]models.ReviewEntity, error) {
	var reviews []models.ReviewEntity
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("review_id asc").
		Find(&reviews).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reviews by productId")
	}
	return reviews, nil
}

// Create inserts a review. The engine's composite unique index rejects
// duplicate (product_id, review_id) pairs.
func (r *gormRepository) Create(ctx context.Context, entity *models.ReviewEntity) error {
	err := r.db.WithContext(ctx).Create(entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return errors.Wrap(err, "failed to create review")
	}
	return nil
}

// DeleteByProductID removes every review for a product. Zero affected rows
// is still a success.
func (r *gormRepository) DeleteByProductID(ctx context.Context, productID int) error {
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.ReviewEntity{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to delete reviews")
	}
	return nil
}
