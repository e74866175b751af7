package products

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the public product shape.
type ProductDTO struct {
	ID             uuid.UUID        `json:"id"`
	CategoryID     *uuid.UUID       `json:"category_id,omitempty"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Description    *string          `json:"description,omitempty"`
	ImageURL       *string          `json:"image_url,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	DiscountPrice  *decimal.Decimal `json:"discount_price,omitempty"`
	EffectivePrice decimal.Decimal  `json:"effective_price"`
	Stock          int              `json:"stock"`
	InStock        bool             `json:"in_stock"`
	IsActive       bool             `json:"is_active"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ProductListResult is one page of products.
type ProductListResult struct {
	Items      []ProductDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// FromModel maps a product row to its public shape.
func FromModel(p *models.Product) ProductDTO {
	dto := ProductDTO{
		ID:             p.ID,
		CategoryID:     p.CategoryID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		ImageURL:       p.ImageURL,
		Price:          p.Price,
		EffectivePrice: p.EffectivePrice(),
		Stock:          p.Stock,
		InStock:        p.Stock > 0,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.DiscountPrice.Valid {
		discount := p.DiscountPrice.Decimal
		dto.DiscountPrice = &discount
	}
	return dto
}
