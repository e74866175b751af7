package users

import (
	"errors"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

// MapAggregateError translates persistence failures from Repository into
// typed errors. Typed errors raised by a MutateFunc pass through untouched.
func MapAggregateError(err error, action string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
	case errors.Is(err, ErrVersionConflict):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "your account was updated from another session, please retry")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
}
