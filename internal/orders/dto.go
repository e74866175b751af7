package orders

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderInput is the checkout payload. A nil AddressID ships to the
// default address.
type CreateOrderInput struct {
	AddressID     *uuid.UUID
	PaymentMethod string
	Notes         *string
}

// UpdateStatusInput is the admin patch. At least one field must be set.
type UpdateStatusInput struct {
	Status        *string
	PaymentStatus *string
}

// AdminListInput filters the admin order listing.
type AdminListInput struct {
	Status     string
	Pagination pagination.Params
}

// LineItemDTO is an immutable order line.
type LineItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  *string         `json:"image_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderDTO is the public order shape.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	UserID          uuid.UUID           `json:"user_id"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	IsPaid          bool                `json:"is_paid"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
	ShippingAddress models.Address      `json:"shipping_address"`
	Currency        string              `json:"currency"`
	ItemsTotal      decimal.Decimal     `json:"items_total"`
	ShippingFee     decimal.Decimal     `json:"shipping_fee"`
	Total           decimal.Decimal     `json:"total"`
	Notes           *string             `json:"notes,omitempty"`
	Items           []LineItemDTO       `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// OrderList is one page of orders.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// FromModel maps an order row and its items to the public shape.
func FromModel(o *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		PaymentMethod:   o.PaymentMethod,
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		ShippingAddress: models.Address(o.ShippingAddress),
		Currency:        o.Currency,
		ItemsTotal:      o.ItemsTotal,
		ShippingFee:     o.ShippingFee,
		Total:           o.Total,
		Notes:           o.Notes,
		Items:           make([]LineItemDTO, 0, len(o.Items)),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, LineItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		})
	}
	return dto
}

func toList(rows []models.Order, limit int) *OrderList {
	page, more := pagination.Trim(rows, limit)
	list := &OrderList{Orders: make([]OrderDTO, 0, len(page))}
	for i := range page {
		list.Orders = append(list.Orders, FromModel(&page[i]))
	}
	if more {
		last := page[len(page)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return list
}
