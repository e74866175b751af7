package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products for browsing.
type Category struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex:idx_categories_slug"`
	Description *string   `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Product is a sellable catalog entry. Inactive products are soft deleted.
type Product struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID    *uuid.UUID          `gorm:"column:category_id;type:uuid;index"`
	Name          string              `gorm:"column:name;not null"`
	Slug          string              `gorm:"column:slug;not null;uniqueIndex:idx_products_slug"`
	Description   *string             `gorm:"column:description"`
	ImageURL      *string             `gorm:"column:image_url"`
	Price         decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountPrice decimal.NullDecimal `gorm:"column:discount_price;type:numeric(12,2)"`
	Stock         int                 `gorm:"column:stock;not null"`
	IsActive      bool                `gorm:"column:is_active;not null"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// EffectivePrice is the discount price when one is set, otherwise the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice.Valid {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}
