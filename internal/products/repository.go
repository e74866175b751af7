package products

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows catalog listings.
type ListFilter struct {
	CategoryID *uuid.UUID
	ActiveOnly bool
	Cursor     *pagination.Cursor
	Limit      int
}

// Repository persists catalog products.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product regardless of its active flag.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads every product in ids, inactive ones included, keyed by id.
// Unknown ids are simply absent from the result.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// List returns up to filter.Limit+1 products ordered newest first so callers
// can detect a following page.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	var rows []models.Product
	if err := query.Scopes(pagination.Keyset(filter.Cursor, filter.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update writes the given columns and returns the reloaded product.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, columns map[string]any) (*models.Product, error) {
	if len(columns) > 0 {
		result := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(columns)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(ctx, id)
}

// DecrementStock takes qty units from stock only when enough remain. It
// reports false when the guard rejected the update.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
