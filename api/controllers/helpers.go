package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/validators"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
)

func requestUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

// productIDQuery reads the product id used by DELETE endpoints. Both the
// camelCase and snake_case spellings are accepted.
func productIDQuery(r *http.Request) (uuid.UUID, error) {
	q := r.URL.Query()
	raw := strings.TrimSpace(q.Get("productId"))
	if raw == "" {
		raw = strings.TrimSpace(q.Get("product_id"))
	}
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "productId query parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid productId").WithDetails(map[string]any{"field": "productId"})
	}
	return id, nil
}
