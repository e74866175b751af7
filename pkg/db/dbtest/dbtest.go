// Package dbtest opens isolated in-memory sqlite databases carrying the
// storefront schema for repository and service tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a fresh database migrated with every storefront model. Each
// call gets its own named in-memory database so tests never share rows.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderLineItem{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// Keep one idle connection so the named in-memory database survives
	// between statements.
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// MustCreateUser inserts a customer with empty collections.
func MustCreateUser(t testing.TB, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:     fmt.Sprintf("user_%s@example.com", uuid.NewString()),
		Name:      "Test Customer",
		Cart:      models.CartLines{},
		Wishlist:  models.ProductRefs{},
		Addresses: models.Addresses{},
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// ProductOption customizes MustCreateProduct.
type ProductOption func(*models.Product)

func WithStock(stock int) ProductOption {
	return func(p *models.Product) { p.Stock = stock }
}

func WithPrice(price string) ProductOption {
	return func(p *models.Product) { p.Price = decimal.RequireFromString(price) }
}

func WithDiscount(price string) ProductOption {
	return func(p *models.Product) { p.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString(price)) }
}

func Inactive() ProductOption {
	return func(p *models.Product) { p.IsActive = false }
}

func WithCategory(id uuid.UUID) ProductOption {
	return func(p *models.Product) { p.CategoryID = &id }
}

// MustCreateProduct inserts an active product priced at 100.00 with stock 10.
func MustCreateProduct(t testing.TB, db *gorm.DB, opts ...ProductOption) *models.Product {
	t.Helper()
	suffix := uuid.NewString()[:8]
	product := &models.Product{
		Name:     "Product " + suffix,
		Slug:     "product-" + suffix,
		Price:    decimal.RequireFromString("100.00"),
		Stock:    10,
		IsActive: true,
	}
	for _, opt := range opts {
		opt(product)
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// MustCreateCategory inserts an active category with the given slug.
func MustCreateCategory(t testing.TB, db *gorm.DB, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Name: slug, Slug: slug, IsActive: true}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}
