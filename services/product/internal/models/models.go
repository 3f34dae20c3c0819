package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductEntity is the persisted product row. ProductID is the natural key
// and carries a unique index enforced by the database.
type ProductEntity struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID int    `gorm:"uniqueIndex;not null"`
	Name      string `gorm:"not null"`
	Weight    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name.
func (ProductEntity) TableName() string {
	return "products"
}

// SetupModels runs the schema migrations.
func SetupModels(db *gorm.DB) error {
	return db.AutoMigrate(&ProductEntity{})
}
