package users

import (
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Phone       *string    `json:"phone,omitempty"`
	Role        enums.Role `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash *string
	Name         string
	Phone        *string
	Role         enums.Role
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Phone:       u.Phone,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// NormalizeEmail lower-cases and trims an address. Emails are stored normalized.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.RoleUser
	}

	return &models.User{
		Email:        NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
		Name:         strings.TrimSpace(c.Name),
		Phone:        c.Phone,
		Role:         role,
		Cart:         models.CartLines{},
		Wishlist:     models.ProductRefs{},
		Addresses:    models.Addresses{},
		Version:      1,
	}
}
