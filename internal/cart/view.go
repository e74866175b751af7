package cart

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ReasonProductUnavailable = "product_unavailable"
	ReasonInsufficientStock  = "insufficient_stock"
)

// ProductSnapshot is the catalog state rendered next to a cart line.
type ProductSnapshot struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	ImageURL       *string          `json:"image_url,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	DiscountPrice  *decimal.Decimal `json:"discount_price,omitempty"`
	EffectivePrice decimal.Decimal  `json:"effective_price"`
	Stock          int              `json:"stock"`
	IsActive       bool             `json:"is_active"`
}

// LineView is a cart line populated with its product.
type LineView struct {
	ProductID         uuid.UUID        `json:"product_id"`
	Quantity          int              `json:"quantity"`
	AddedAt           time.Time        `json:"added_at"`
	Product           *ProductSnapshot `json:"product,omitempty"`
	LineTotal         decimal.Decimal  `json:"line_total"`
	Available         bool             `json:"available"`
	UnavailableReason string           `json:"unavailable_reason,omitempty"`
}

// View is the cart as returned to clients.
type View struct {
	Items      []LineView      `json:"items"`
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// AvailableItems returns the lines that can be ordered.
func (v View) AvailableItems() []LineView {
	out := make([]LineView, 0, len(v.Items))
	for _, item := range v.Items {
		if item.Available {
			out = append(out, item)
		}
	}
	return out
}

// HasUnavailable reports whether any line cannot be ordered as is.
func (v View) HasUnavailable() bool {
	for _, item := range v.Items {
		if !item.Available {
			return true
		}
	}
	return false
}

// Snapshot joins cart lines with the catalog. Lines whose product is missing,
// inactive or short of stock are kept but marked unavailable and left out of
// the subtotal. TotalItems counts every line.
func Snapshot(lines models.CartLines, catalog map[uuid.UUID]models.Product) View {
	view := View{
		Items:      make([]LineView, 0, len(lines)),
		TotalItems: lines.TotalItems(),
		Subtotal:   decimal.Zero,
	}
	for _, line := range lines {
		item := LineView{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			AddedAt:   line.AddedAt,
			LineTotal: decimal.Zero,
		}
		product, ok := catalog[line.ProductID]
		switch {
		case !ok:
			item.UnavailableReason = ReasonProductUnavailable
		case !product.IsActive:
			item.Product = snapshotProduct(product)
			item.UnavailableReason = ReasonProductUnavailable
		case line.Quantity > product.Stock:
			item.Product = snapshotProduct(product)
			item.UnavailableReason = ReasonInsufficientStock
		default:
			item.Product = snapshotProduct(product)
			item.Available = true
			item.LineTotal = product.EffectivePrice().Mul(decimal.NewFromInt(int64(line.Quantity)))
			view.Subtotal = view.Subtotal.Add(item.LineTotal)
		}
		view.Items = append(view.Items, item)
	}
	return view
}

func snapshotProduct(p models.Product) *ProductSnapshot {
	snap := &ProductSnapshot{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		ImageURL:       p.ImageURL,
		Price:          p.Price,
		EffectivePrice: p.EffectivePrice(),
		Stock:          p.Stock,
		IsActive:       p.IsActive,
	}
	if p.DiscountPrice.Valid {
		discount := p.DiscountPrice.Decimal
		snap.DiscountPrice = &discount
	}
	return snap
}

// ProductIDs lists the product of every line in cart order.
func ProductIDs(lines models.CartLines) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	return ids
}
