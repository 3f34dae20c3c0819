package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/productmesh/pkg/apperrors"
	"example.com/productmesh/services/product/internal/models"
)

// ErrNotFound is returned when no product row matches.
var ErrNotFound = errors.New("record not found")

// Repository provides access to product rows.
type Repository interface {
	FindByProductID(ctx context.Context, productID int) (*models.ProductEntity, error)
	Create(ctx context.Context, entity *models.ProductEntity) error
	DeleteByProductID(ctx context.Context, productID int) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed repository. The db must be opened
// with TranslateError so engine-level unique violations surface as
// gorm.ErrDuplicatedKey.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindByProductID(ctx context.Context, productID int) (*models.ProductEntity, error) {
	var entity models.ProductEntity
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get product by productId")
	}
	return &entity, nil
}

func (r *gormRepository) Create(ctx context.Context, entity *models.ProductEntity) error {
	err := r.db.WithContext(ctx).Create(entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrDuplicateKey
		}
		return errors.Wrap(err, "failed to create product")
	}
	return nil
}

func (r *gormRepository) DeleteByProductID(ctx context.Context, productID int) error {
	// Delete is idempotent: zero affected rows is still a success.
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.ProductEntity{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to delete product")
	}
	return nil
}
