package addresses

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

// Result is the address touched by a mutation plus the full list after it.
type Result struct {
	Address   *models.Address  `json:"address,omitempty"`
	Addresses models.Addresses `json:"addresses"`
}

// Service manages the address book embedded in the user aggregate.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) (models.Addresses, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*Result, error)
	Update(ctx context.Context, userID, addressID uuid.UUID, input UpdateInput) (*Result, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) (*Result, error)
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*Result, error)
}

type service struct {
	users *users.Repository
	now   func() time.Time
}

// NewService builds an address service backed by the users repository.
func NewService(repo *users.Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	return &service{
		users: repo,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) (models.Addresses, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, users.MapAggregateError(err, "load addresses")
	}
	book, _ := Normalize(user.Addresses)
	return book, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*Result, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	var created models.Address
	user, err := s.users.Mutate(ctx, userID, "addresses.create", func(u *models.User) (bool, error) {
		book, _ := Normalize(u.Addresses)
		next, addr, err := Create(book, input, uuid.New(), s.now())
		if err != nil {
			return false, err
		}
		u.Addresses = next
		created = addr
		return true, nil
	})
	if err != nil {
		return nil, users.MapAggregateError(err, "create address")
	}
	return resultFor(user.Addresses, created.ID), nil
}

func (s *service) Update(ctx context.Context, userID, addressID uuid.UUID, input UpdateInput) (*Result, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	user, err := s.users.Mutate(ctx, userID, "addresses.update", func(u *models.User) (bool, error) {
		book, healed := Normalize(u.Addresses)
		next, _, changed, err := Update(book, addressID, input)
		if err != nil {
			return false, err
		}
		u.Addresses = next
		return changed || healed, nil
	})
	if err != nil {
		return nil, users.MapAggregateError(err, "update address")
	}
	return resultFor(user.Addresses, addressID), nil
}

// Delete removes an address. Deleting an unknown id returns the current list.
func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) (*Result, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	user, err := s.users.Mutate(ctx, userID, "addresses.delete", func(u *models.User) (bool, error) {
		book, healed := Normalize(u.Addresses)
		next, removed := Delete(book, addressID)
		u.Addresses = next
		return removed || healed, nil
	})
	if err != nil {
		return nil, users.MapAggregateError(err, "delete address")
	}
	book, _ := Normalize(user.Addresses)
	return &Result{Addresses: book}, nil
}

func (s *service) SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*Result, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	user, err := s.users.Mutate(ctx, userID, "addresses.set_default", func(u *models.User) (bool, error) {
		book, healed := Normalize(u.Addresses)
		next, changed, err := SetDefault(book, addressID)
		if err != nil {
			return false, err
		}
		u.Addresses = next
		return changed || healed, nil
	})
	if err != nil {
		return nil, users.MapAggregateError(err, "set default address")
	}
	return resultFor(user.Addresses, addressID), nil
}

func resultFor(book models.Addresses, id uuid.UUID) *Result {
	book, _ = Normalize(book)
	result := &Result{Addresses: book}
	if idx := book.Find(id); idx >= 0 {
		addr := book[idx]
		result.Address = &addr
	}
	return result
}

func requireUser(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return nil
}
