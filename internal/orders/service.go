package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/addresses"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service defines checkout and order management operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*OrderDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, input AdminListInput) (*OrderList, error)
	Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (*OrderDTO, error)
}

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Tx       db.Transactor
	Repo     Repository
	Users    *users.Repository
	Products *products.Repository
	Config   config.OrdersConfig
	Logger   *logger.Logger
}

type service struct {
	tx          db.Transactor
	repo        Repository
	users       *users.Repository
	products    *products.Repository
	strict      bool
	currency    string
	shippingFee decimal.Decimal
	freeAbove   decimal.Decimal
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds an orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repo is required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	fee, err := params.Config.ShippingFee()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping fee")
	}
	freeAbove, err := params.Config.FreeShippingAbove()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid free shipping threshold")
	}
	currency := strings.ToUpper(strings.TrimSpace(params.Config.Currency))
	if currency == "" {
		currency = "INR"
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		tx:          params.Tx,
		repo:        params.Repo,
		users:       params.Users,
		products:    params.Products,
		strict:      params.Config.StrictTransitions,
		currency:    currency,
		shippingFee: fee,
		freeAbove:   freeAbove,
		logg:        logg,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// Create turns the user's cart into an order. Line snapshot, stock
// decrement, order insert and cart clear commit together or not at all.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported payment method")
	}
	notes := cleanNotes(input.Notes)

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)
		productRepo := s.products.WithTx(tx)
		orderRepo := s.repo.WithTx(tx)

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			return users.MapAggregateError(err, "load user")
		}
		if len(user.Cart) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		catalog, err := productRepo.FindByIDs(ctx, cart.ProductIDs(user.Cart))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
		}
		view := cart.Snapshot(user.Cart, catalog)
		if view.HasUnavailable() {
			return pkgerrors.New(pkgerrors.CodeValidation, "some cart items are unavailable").
				WithDetails(map[string]any{"unavailable": unavailableLines(view)})
		}

		shipTo, err := addresses.Resolve(user.Addresses, input.AddressID)
		if err != nil {
			return err
		}

		now := s.now()
		order := &models.Order{
			ID:              uuid.New(),
			UserID:          userID,
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusPending,
			PaymentMethod:   method,
			ShippingAddress: models.ShippingAddress(shipTo),
			Currency:        s.currency,
			ItemsTotal:      view.Subtotal,
			ShippingFee:     s.shippingFor(view.Subtotal),
			Notes:           notes,
			Items:           make([]models.OrderLineItem, 0, len(view.Items)),
		}
		order.OrderNumber = newOrderNumber(now, order.ID)
		order.Total = order.ItemsTotal.Add(order.ShippingFee)

		for _, line := range view.Items {
			ok, err := productRepo.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
			}
			if !ok {
				return pkgerrors.Newf(pkgerrors.CodeValidation, "insufficient stock for %s", line.Product.Name).
					WithDetails(map[string]any{"product_id": line.ProductID})
			}
			order.Items = append(order.Items, models.OrderLineItem{
				ProductID: line.ProductID,
				Name:      line.Product.Name,
				ImageURL:  line.Product.ImageURL,
				UnitPrice: line.Product.EffectivePrice,
				Quantity:  line.Quantity,
				LineTotal: line.LineTotal,
			})
		}

		if err := orderRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		_, err = userRepo.Mutate(ctx, userID, "orders.checkout", func(u *models.User) (bool, error) {
			if u.Version != user.Version {
				return false, users.ErrVersionConflict
			}
			u.Cart = models.CartLines{}
			return true, nil
		})
		if err != nil {
			return users.MapAggregateError(err, "clear cart")
		}
		created = order
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":     created.ID.String(),
		"order_number": created.OrderNumber,
		"total":        created.Total.StringFixed(2),
	})
	s.logg.Info(logCtx, "order.created")

	dto := FromModel(created)
	return &dto, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, ListFilter{UserID: &userID, Cursor: cursor, Limit: params.Limit})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toList(rows, params.Limit), nil
}

// GetForUser hides other users' orders behind NOT_FOUND.
func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	dto := FromModel(order)
	return &dto, nil
}

func (s *service) List(ctx context.Context, input AdminListInput) (*OrderList, error) {
	filter := ListFilter{Limit: input.Pagination.Limit}
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &status
	}
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	filter.Cursor = cursor

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toList(rows, input.Pagination.Limit), nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	dto := FromModel(order)
	return &dto, nil
}

// UpdateStatus applies an admin patch. Moving payment to paid marks the
// order paid; other payment states leave isPaid and paidAt as they were.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (*OrderDTO, error) {
	if input.Status == nil && input.PaymentStatus == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status or payment status is required")
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	columns := map[string]any{}
	if input.Status != nil {
		status, err := enums.ParseOrderStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		if !canTransition(s.strict, order.Status, status) {
			return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move order from %s to %s", order.Status, status).
				WithDetails(map[string]any{"from": order.Status, "to": status})
		}
		if status != order.Status {
			columns["status"] = status
		}
	}
	if input.PaymentStatus != nil {
		paymentStatus, err := enums.ParsePaymentStatus(*input.PaymentStatus)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status")
		}
		if paymentStatus != order.PaymentStatus {
			columns["payment_status"] = paymentStatus
		}
		if paymentStatus == enums.PaymentStatusPaid && !order.IsPaid {
			columns["is_paid"] = true
			columns["paid_at"] = s.now()
		}
	}

	if len(columns) > 0 {
		if err := s.repo.Update(ctx, orderID, columns); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": orderID.String(),
			"columns":  columnNames(columns),
		})
		s.logg.Info(logCtx, "order.status.updated")
		if order, err = s.load(ctx, orderID); err != nil {
			return nil, err
		}
	}

	dto := FromModel(order)
	return &dto, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// shippingFor charges the flat fee unless the items total reaches the
// free-shipping threshold. A zero threshold always charges the fee.
func (s *service) shippingFor(itemsTotal decimal.Decimal) decimal.Decimal {
	if s.freeAbove.IsPositive() && itemsTotal.GreaterThanOrEqual(s.freeAbove) {
		return decimal.Zero
	}
	return s.shippingFee
}

func unavailableLines(view cart.View) []map[string]any {
	out := []map[string]any{}
	for _, item := range view.Items {
		if item.Available {
			continue
		}
		out = append(out, map[string]any{
			"product_id": item.ProductID,
			"reason":     item.UnavailableReason,
		})
	}
	return out
}

// maxNotesRunes matches the max=500 rule on the checkout request.
const maxNotesRunes = 500

// cleanNotes trims notes and caps them at maxNotesRunes characters,
// cutting only on rune boundaries.
func cleanNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	if runes := []rune(trimmed); len(runes) > maxNotesRunes {
		trimmed = strings.TrimSpace(string(runes[:maxNotesRunes]))
	}
	return &trimmed
}

func columnNames(columns map[string]any) []string {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	return names
}
