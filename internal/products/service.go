package products

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/slug"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog reads and admin product management.
type Service interface {
	List(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Deactivate(ctx context.Context, productID uuid.UUID) error
}

// ListProductsInput filters the public catalog.
type ListProductsInput struct {
	CategorySlug string
	Pagination   pagination.Params
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	CategoryID    *uuid.UUID
	Name          string
	Slug          string
	Description   *string
	ImageURL      *string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	Stock         int
}

// UpdateProductInput holds optional mutation values for a product. Nil
// fields are left untouched. ClearDiscount removes the discount price.
type UpdateProductInput struct {
	CategoryID    *uuid.UUID
	Name          *string
	Description   *string
	ImageURL      *string
	Price         *decimal.Decimal
	DiscountPrice *decimal.Decimal
	ClearDiscount bool
	Stock         *int
	IsActive      *bool
}

// ServiceParams groups dependencies for the product service.
type ServiceParams struct {
	Repo       *Repository
	Categories categories.Service
}

type service struct {
	repo       *Repository
	categories categories.Service
}

// NewService builds a product service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.Categories == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category service is required")
	}
	return &service{repo: params.Repo, categories: params.Categories}, nil
}

func (s *service) List(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	filter := ListFilter{
		ActiveOnly: true,
		Cursor:     cursor,
		Limit:      input.Pagination.Limit,
	}
	if categorySlug := strings.TrimSpace(input.CategorySlug); categorySlug != "" {
		category, err := s.categories.FindBySlug(ctx, categorySlug)
		if err != nil {
			return nil, err
		}
		filter.CategoryID = &category.ID
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	page, more := pagination.Trim(rows, input.Pagination.Limit)
	result := &ProductListResult{Items: make([]ProductDTO, 0, len(page))}
	for i := range page {
		result.Items = append(result.Items, FromModel(&page[i]))
	}
	if more {
		last := page[len(page)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

// Get returns an active product. Inactive products are hidden from the storefront.
func (s *service) Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	productSlug := slug.Make(input.Slug)
	if productSlug == "" {
		productSlug = slug.Make(name)
	}
	if productSlug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug could not be derived from name")
	}
	if err := validatePricing(input.Price, input.DiscountPrice); err != nil {
		return nil, err
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	product := &models.Product{
		CategoryID:  input.CategoryID,
		Name:        name,
		Slug:        productSlug,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Price:       input.Price,
		Stock:       input.Stock,
		IsActive:    true,
	}
	if input.DiscountPrice != nil {
		product.DiscountPrice = decimal.NewNullDecimal(*input.DiscountPrice)
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDuplicate, err, "product slug already exists").
				WithDetails(map[string]any{"slug": productSlug})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	current, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}

	columns := map[string]any{}
	if input.CategoryID != nil {
		columns["category_id"] = *input.CategoryID
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		columns["name"] = name
	}
	if input.Description != nil {
		columns["description"] = *input.Description
	}
	if input.ImageURL != nil {
		columns["image_url"] = *input.ImageURL
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		columns["stock"] = *input.Stock
	}
	if input.IsActive != nil {
		columns["is_active"] = *input.IsActive
	}

	price := current.Price
	if input.Price != nil {
		price = *input.Price
		columns["price"] = price
	}
	var discount *decimal.Decimal
	switch {
	case input.ClearDiscount:
		columns["discount_price"] = decimal.NullDecimal{}
	case input.DiscountPrice != nil:
		discount = input.DiscountPrice
		columns["discount_price"] = decimal.NewNullDecimal(*discount)
	case current.DiscountPrice.Valid:
		existing := current.DiscountPrice.Decimal
		discount = &existing
	}
	if err := validatePricing(price, discount); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, productID, columns)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	dto := FromModel(updated)
	return &dto, nil
}

// Deactivate soft deletes the product. Carts keep the line and show it as unavailable.
func (s *service) Deactivate(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.load(ctx, productID); err != nil {
		return err
	}
	if _, err := s.repo.Update(ctx, productID, map[string]any{"is_active": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	return nil
}

func (s *service) load(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func validatePricing(price decimal.Decimal, discount *decimal.Decimal) error {
	if !price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}
	if discount == nil {
		return nil
	}
	if discount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount price cannot be negative")
	}
	if discount.GreaterThanOrEqual(price) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount price must be lower than price")
	}
	return nil
}
