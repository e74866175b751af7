package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a placed order. Line items are an immutable snapshot of the cart.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber     string              `gorm:"column:order_number;not null;uniqueIndex:idx_orders_number"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	IsPaid          bool                `gorm:"column:is_paid;not null"`
	PaidAt          *time.Time          `gorm:"column:paid_at"`
	ShippingAddress ShippingAddress     `gorm:"column:shipping_address;type:jsonb;not null"`
	Currency        string              `gorm:"column:currency;not null"`
	ItemsTotal      decimal.Decimal     `gorm:"column:items_total;type:numeric(12,2);not null"`
	ShippingFee     decimal.Decimal     `gorm:"column:shipping_fee;type:numeric(12,2);not null"`
	Total           decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	Notes           *string             `gorm:"column:notes"`
	Items           []OrderLineItem     `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderLineItem snapshots one product at the price it was ordered for.
type OrderLineItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	ImageURL  *string         `gorm:"column:image_url"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderLineItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
