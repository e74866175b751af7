package cart

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultMaxLineQuantity caps a single cart line when no limit is configured.
const DefaultMaxLineQuantity = 99

// Service exposes cart mutations on the user aggregate. Every mutation
// returns the committed cart re-read with current product data.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error)
	Update(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) (*View, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Users           *users.Repository
	Products        *products.Repository
	MaxLineQuantity int
}

type service struct {
	users           *users.Repository
	products        *products.Repository
	maxLineQuantity int
	now             func() time.Time
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	maxQty := params.MaxLineQuantity
	if maxQty <= 0 {
		maxQty = DefaultMaxLineQuantity
	}
	return &service{
		users:           params.Users,
		products:        params.Products,
		maxLineQuantity: maxQty,
		now:             func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, users.MapAggregateError(err, "load cart")
	}
	return s.render(ctx, user.Cart)
}

// Add increments the existing line or appends a new one. The resulting
// quantity is checked against stock, so repeated adds cannot overshoot it.
func (s *service) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	product, err := s.loadActiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Mutate(ctx, userID, "cart.add", func(u *models.User) (bool, error) {
		idx := u.Cart.Find(productID)
		current := 0
		if idx >= 0 {
			current = u.Cart[idx].Quantity
		}
		if err := CheckQuantity(product, current+quantity, current, s.maxLineQuantity); err != nil {
			return false, err
		}
		if idx >= 0 {
			u.Cart[idx].Quantity = current + quantity
			return true, nil
		}
		u.Cart = append(u.Cart, models.CartLine{
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   s.now(),
		})
		return true, nil
	})
	if err != nil {
		return nil, users.MapAggregateError(err, "add to cart")
	}
	return s.render(ctx, user.Cart)
}

// Update sets the line quantity absolutely. A rejected quantity leaves the
// stored line untouched.
func (s *service) Update(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	product, err := s.loadActiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Mutate(ctx, userID, "cart.update", func(u *models.User) (bool, error) {
		idx := u.Cart.Find(productID)
		if idx < 0 {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
		}
		if u.Cart[idx].Quantity == quantity {
			return false, nil
		}
		if err := CheckQuantity(product, quantity, 0, s.maxLineQuantity); err != nil {
			return false, err
		}
		u.Cart[idx].Quantity = quantity
		return true, nil
	})
	if err != nil {
		return nil, users.MapAggregateError(err, "update cart")
	}
	return s.render(ctx, user.Cart)
}

// Remove drops the line for productID. Removing an absent line succeeds.
func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) (*View, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	user, err := s.users.Mutate(ctx, userID, "cart.remove", func(u *models.User) (bool, error) {
		idx := u.Cart.Find(productID)
		if idx < 0 {
			return false, nil
		}
		u.Cart = append(u.Cart[:idx], u.Cart[idx+1:]...)
		return true, nil
	})
	if err != nil {
		return nil, users.MapAggregateError(err, "remove from cart")
	}
	return s.render(ctx, user.Cart)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*View, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	user, err := s.users.Mutate(ctx, userID, "cart.clear", func(u *models.User) (bool, error) {
		if len(u.Cart) == 0 {
			return false, nil
		}
		u.Cart = models.CartLines{}
		return true, nil
	})
	if err != nil {
		return nil, users.MapAggregateError(err, "clear cart")
	}
	return s.render(ctx, user.Cart)
}

// CheckQuantity validates a target line quantity against the per-line cap
// and stock. inCart is what the line already holds, used to report how many
// more units can be added.
func CheckQuantity(product *models.Product, target, inCart, maxLineQuantity int) error {
	if maxLineQuantity > 0 && target > maxLineQuantity {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "quantity cannot exceed %d per item", maxLineQuantity).
			WithDetails(map[string]any{"max_quantity": maxLineQuantity})
	}
	if target > product.Stock {
		remaining := product.Stock - inCart
		if remaining < 0 {
			remaining = 0
		}
		return pkgerrors.Newf(pkgerrors.CodeValidation, "insufficient stock, only %d available", remaining).
			WithDetails(map[string]any{
				"product_id": product.ID,
				"available":  remaining,
				"in_cart":    inCart,
			})
	}
	return nil
}

func (s *service) loadActiveProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) render(ctx context.Context, lines models.CartLines) (*View, error) {
	catalog, err := s.products.FindByIDs(ctx, ProductIDs(lines))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}
	view := Snapshot(lines, catalog)
	return &view, nil
}

func requireUser(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return nil
}
