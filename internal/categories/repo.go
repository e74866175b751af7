package categories

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists catalog categories.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// List returns categories ordered by name.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	query := r.db.WithContext(ctx).Model(&models.Category{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.Category
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
