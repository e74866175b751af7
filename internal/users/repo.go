package users

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultMaxMutateAttempts bounds the optimistic retry loop in Mutate.
const DefaultMaxMutateAttempts = 3

// ErrVersionConflict is returned when every Mutate attempt lost the version race.
var ErrVersionConflict = errors.New("user aggregate modified concurrently")

// MutateFunc applies an in-memory change to the aggregate. It reports whether
// anything changed; unchanged aggregates are not written. It may be invoked
// more than once when a concurrent writer wins the race, so it must not have
// side effects outside the user it is given.
type MutateFunc func(user *models.User) (bool, error)

// RepositoryOptions tunes the aggregate save discipline.
type RepositoryOptions struct {
	MaxMutateAttempts int
	Metrics           *metrics.AggregateMetrics
	Logger            *logger.Logger
}

// Repository exposes user-related persistence operations.
type Repository struct {
	db          *gorm.DB
	maxAttempts int
	metrics     *metrics.AggregateMetrics
	logg        *logger.Logger
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB, opts ...RepositoryOptions) *Repository {
	repo := &Repository{db: db, maxAttempts: DefaultMaxMutateAttempts}
	if len(opts) > 0 {
		if opts[0].MaxMutateAttempts > 0 {
			repo.maxAttempts = opts[0].MaxMutateAttempts
		}
		repo.metrics = opts[0].Metrics
		repo.logg = opts[0].Logger
	}
	return repo
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	clone := *r
	clone.db = tx
	return &clone
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp. It does not
// bump the aggregate version.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// Mutate loads the aggregate, applies fn to a copy and writes the embedded
// collections back guarded by the loaded version. A lost race reloads and
// re-applies fn until the attempt budget runs out.
func (r *Repository) Mutate(ctx context.Context, id uuid.UUID, operation string, fn MutateFunc) (*models.User, error) {
	for attempt := 1; ; attempt++ {
		current, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		next := current.Clone()
		changed, err := fn(next)
		if err != nil {
			return nil, err
		}
		if !changed {
			return current, nil
		}

		saved, err := r.saveVersioned(ctx, next, current.Version)
		if err != nil {
			return nil, err
		}
		if saved {
			return next, nil
		}

		r.metrics.IncConflict(operation)
		if r.logg != nil {
			logCtx := r.logg.WithFields(ctx, map[string]any{
				"user_id":   id.String(),
				"operation": operation,
				"attempt":   attempt,
			})
			r.logg.Warn(logCtx, "user.aggregate.conflict")
		}
		if attempt >= r.maxAttempts {
			r.metrics.IncExhausted(operation)
			return nil, ErrVersionConflict
		}
	}
}

func (r *Repository) saveVersioned(ctx context.Context, user *models.User, expectedVersion int) (bool, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND version = ?", user.ID, expectedVersion).
		UpdateColumns(map[string]any{
			"cart":       user.Cart,
			"wishlist":   user.Wishlist,
			"addresses":  user.Addresses,
			"version":    expectedVersion + 1,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	user.Version = expectedVersion + 1
	user.UpdatedAt = now
	return true, nil
}
