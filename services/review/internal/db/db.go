package db

import (
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"example.com/productmesh/services/review/config"
	"example.com/productmesh/services/review/internal/models"
)

// Connect opens the Postgres connection. TranslateError lets the
// repository detect unique violations as gorm.ErrDuplicatedKey.
func Connect(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	return conn, nil
}

// Migrate runs the schema migrations.
func Migrate(conn *gorm.DB) error {
	return models.SetupModels(conn)
}
