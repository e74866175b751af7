package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func CategoryList(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type createCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Slug        string  `json:"slug" validate:"omitempty,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

func AdminCategoryCreate(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}
		var body createCategoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), categories.CreateCategoryInput{
			Name:        validators.SanitizeString(body.Name, 100),
			Slug:        body.Slug,
			Description: body.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ProductList returns active products, optionally filtered by category slug.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), products.ListProductsInput{
			CategorySlug: strings.TrimSpace(r.URL.Query().Get("category")),
			Pagination:   params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ProductDetail(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type createProductRequest struct {
	CategoryID    *uuid.UUID       `json:"category_id,omitempty"`
	Name          string           `json:"name" validate:"required,max=200"`
	Slug          string           `json:"slug" validate:"omitempty,max=220"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	ImageURL      *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	Price         *decimal.Decimal `json:"price" validate:"required"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	Stock         int              `json:"stock" validate:"gte=0"`
}

func AdminProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), products.CreateProductInput{
			CategoryID:    body.CategoryID,
			Name:          validators.SanitizeString(body.Name, 200),
			Slug:          body.Slug,
			Description:   body.Description,
			ImageURL:      body.ImageURL,
			Price:         *body.Price,
			DiscountPrice: body.DiscountPrice,
			Stock:         body.Stock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// updateProductRequest is sparse. discount_price distinguishes absent
// (keep), null (clear) and a value (set).
type updateProductRequest struct {
	CategoryID    *uuid.UUID                      `json:"category_id,omitempty"`
	Name          *string                         `json:"name,omitempty" validate:"omitempty,max=200"`
	Description   *string                         `json:"description,omitempty" validate:"omitempty,max=5000"`
	ImageURL      *string                         `json:"image_url,omitempty" validate:"omitempty,url"`
	Price         *decimal.Decimal                `json:"price,omitempty"`
	DiscountPrice types.Nullable[decimal.Decimal] `json:"discount_price"`
	Stock         *int                            `json:"stock,omitempty" validate:"omitempty,gte=0"`
	IsActive      *bool                           `json:"is_active,omitempty"`
}

func (b updateProductRequest) toInput() products.UpdateProductInput {
	input := products.UpdateProductInput{
		CategoryID:  b.CategoryID,
		Name:        b.Name,
		Description: b.Description,
		ImageURL:    b.ImageURL,
		Price:       b.Price,
		Stock:       b.Stock,
		IsActive:    b.IsActive,
	}
	if b.DiscountPrice.Valid {
		if b.DiscountPrice.Value == nil {
			input.ClearDiscount = true
		} else {
			input.DiscountPrice = b.DiscountPrice.Value
		}
	}
	return input
}

func AdminProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), productID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// AdminProductDelete soft deletes by deactivating the product.
func AdminProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Deactivate(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "product deactivated", map[string]string{"id": productID.String()})
	}
}
