package orders

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows order listings. A nil UserID lists every user's orders.
type ListFilter struct {
	UserID *uuid.UUID
	Status *enums.OrderStatus
	Cursor *pagination.Cursor
	Limit  int
}

// Repository defines persistence operations for orders and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, error)
	Update(ctx context.Context, id uuid.UUID, columns map[string]any) error
}
