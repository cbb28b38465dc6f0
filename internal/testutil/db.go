// Package testutil holds fixtures shared by the package test suites.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/blob-shop/internal/database"
	"github.com/javajoker/blob-shop/internal/models"
)

// NewSQLiteDB opens a private in-memory database with the schema migrated.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A shared-cache memory database lives as long as one connection does.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db))
	return db
}

// StartPostgres runs a throwaway Postgres container and returns its DSN.
func StartPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("blob_shop"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, "", fmt.Errorf("failed to get connection string: %w", err)
	}
	return container, connStr, nil
}

// CreateProduct inserts a product; a nil inventory means unlimited stock.
func CreateProduct(t testing.TB, db *gorm.DB, price string, inventory *int, active bool) models.Product {
	t.Helper()

	product := models.Product{
		Name:        gofakeit.ProductName(),
		Description: gofakeit.ProductDescription(),
		Price:       decimal.RequireFromString(price),
		ImageURL:    "/images/" + gofakeit.Word() + ".png",
		Inventory:   inventory,
		Active:      active,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

// Stock is shorthand for a finite inventory value.
func Stock(n int) *int {
	return lo.ToPtr(n)
}

// ReloadProduct fetches the current row for a product.
func ReloadProduct(t testing.TB, db *gorm.DB, id uint) models.Product {
	t.Helper()

	var product models.Product
	require.NoError(t, db.First(&product, id).Error)
	return product
}
