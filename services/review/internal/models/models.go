package models

import (
	"time"

	"gorm.io/gorm"
)

// ReviewEntity is the persisted review row. The (product_id, review_id)
// pair carries a composite unique index enforced by the database engine,
// unlike the recommendation store which emulates its constraint manually.
type ReviewEntity struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID int    `gorm:"uniqueIndex:idx_prod_rev;not null"`
	ReviewID  int    `gorm:"uniqueIndex:idx_prod_rev;not null"`
	Author    string
	Subject   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name.
func (ReviewEntity) TableName() string {
	return "reviews"
}

// SetupModels runs the schema migrations.
func SetupModels(db *gorm.DB) error {
	return db.AutoMigrate(&ReviewEntity{})
}
