package categories

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/slug"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryDTO is the public category shape.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
}

// CreateCategoryInput is the admin payload for a new category.
type CreateCategoryInput struct {
	Name        string
	Slug        string
	Description *string
}

type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	Create(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	// FindBySlug resolves an active category, used by product filters.
	FindBySlug(ctx context.Context, slug string) (*CategoryDTO, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category repo is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	categorySlug := slug.Make(input.Slug)
	if categorySlug == "" {
		categorySlug = slug.Make(name)
	}
	if categorySlug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug could not be derived from name")
	}

	category := &models.Category{
		Name:        name,
		Slug:        categorySlug,
		Description: input.Description,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDuplicate, err, "category slug already exists").
				WithDetails(map[string]any{"slug": categorySlug})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	dto := toDTO(category)
	return &dto, nil
}

func (s *service) FindBySlug(ctx context.Context, value string) (*CategoryDTO, error) {
	category, err := s.repo.FindBySlug(ctx, slug.Make(value))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if !category.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	dto := toDTO(category)
	return &dto, nil
}

func toDTO(c *models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		IsActive:    c.IsActive,
	}
}
