package wishlist

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// View is the wishlist as returned to clients, in insertion order.
type View struct {
	Items []products.ProductDTO `json:"items"`
	Count int                   `json:"count"`
}

// MoveResult carries both collections touched by MoveToCart.
type MoveResult struct {
	Wishlist View      `json:"wishlist"`
	Cart     cart.View `json:"cart"`
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Users           *users.Repository
	Products        *products.Repository
	MaxLineQuantity int
}

// Service exposes set semantics over the user's wishlist. Adding a present
// product and removing an absent one both succeed without writing.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) (*View, error)
	Add(ctx context.Context, userID, productID uuid.UUID) (*View, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) (*View, error)
	MoveToCart(ctx context.Context, userID, productID uuid.UUID) (*MoveResult, error)
}

type service struct {
	users           *users.Repository
	products        *products.Repository
	maxLineQuantity int
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	maxQty := params.MaxLineQuantity
	if maxQty <= 0 {
		maxQty = cart.DefaultMaxLineQuantity
	}
	return &service{
		users:           params.Users,
		products:        params.Products,
		maxLineQuantity: maxQty,
	}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, users.MapAggregateError(err, "load wishlist")
	}
	return s.render(ctx, user.Wishlist)
}

// Add rejects unknown or inactive products, then unions productID into the set.
func (s *service) Add(ctx context.Context, userID, productID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if _, err := s.loadActiveProduct(ctx, productID); err != nil {
		return nil, err
	}
	user, err := s.users.Mutate(ctx, userID, "wishlist.add", func(u *models.User) (bool, error) {
		if u.Wishlist.Contains(productID) {
			return false, nil
		}
		u.Wishlist = append(u.Wishlist, productID)
		return true, nil
	})
	if err != nil {
		return nil, users.MapAggregateError(err, "add to wishlist")
	}
	return s.render(ctx, user.Wishlist)
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	user, err := s.users.Mutate(ctx, userID, "wishlist.remove", func(u *models.User) (bool, error) {
		next, removed := without(u.Wishlist, productID)
		if !removed {
			return false, nil
		}
		u.Wishlist = next
		return true, nil
	})
	if err != nil {
		return nil, users.MapAggregateError(err, "remove from wishlist")
	}
	return s.render(ctx, user.Wishlist)
}

// MoveToCart adds one unit of productID to the cart and drops it from the
// wishlist in a single aggregate write.
func (s *service) MoveToCart(ctx context.Context, userID, productID uuid.UUID) (*MoveResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	product, err := s.loadActiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Mutate(ctx, userID, "wishlist.move_to_cart", func(u *models.User) (bool, error) {
		next, removed := without(u.Wishlist, productID)
		if !removed {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "item not in wishlist")
		}
		idx := u.Cart.Find(productID)
		current := 0
		if idx >= 0 {
			current = u.Cart[idx].Quantity
		}
		if err := cart.CheckQuantity(product, current+1, current, s.maxLineQuantity); err != nil {
			return false, err
		}
		if idx >= 0 {
			u.Cart[idx].Quantity++
		} else {
			u.Cart = append(u.Cart, models.CartLine{ProductID: productID, Quantity: 1, AddedAt: time.Now().UTC()})
		}
		u.Wishlist = next
		return true, nil
	})
	if err != nil {
		return nil, users.MapAggregateError(err, "move to cart")
	}

	wishlistView, err := s.render(ctx, user.Wishlist)
	if err != nil {
		return nil, err
	}
	catalog, err := s.products.FindByIDs(ctx, cart.ProductIDs(user.Cart))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}
	return &MoveResult{Wishlist: *wishlistView, Cart: cart.Snapshot(user.Cart, catalog)}, nil
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

// render resolves ids to products, keeping wishlist order and skipping
// products that no longer exist.
func (s *service) render(ctx context.Context, refs models.ProductRefs) (*View, error) {
	catalog, err := s.products.FindByIDs(ctx, refs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist products")
	}
	view := &View{Items: make([]products.ProductDTO, 0, len(refs))}
	for _, id := range refs {
		product, ok := catalog[id]
		if !ok {
			continue
		}
		view.Items = append(view.Items, products.FromModel(&product))
	}
	view.Count = len(view.Items)
	return view, nil
}

func without(refs models.ProductRefs, productID uuid.UUID) (models.ProductRefs, bool) {
	out := make(models.ProductRefs, 0, len(refs))
	removed := false
	for _, id := range refs {
		if id == productID {
			removed = true
			continue
		}
		out = append(out, id)
	}
	return out, removed
}
