package models

import (
	"database/sql/driver"
	"time"

	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the customer aggregate. Cart, wishlist and addresses are embedded
// collections persisted in the same row and guarded by Version.
type User struct {
	ID           uuid.UUID   `gorm:"column:id;type:uuid;primaryKey"`
	Email        string      `gorm:"column:email;type:text;not null;uniqueIndex:idx_users_email"`
	PasswordHash *string     `gorm:"column:password_hash"`
	Name         string      `gorm:"column:name;not null"`
	Phone        *string     `gorm:"column:phone"`
	Role         enums.Role  `gorm:"column:role;type:text;not null"`
	Cart         CartLines   `gorm:"column:cart;type:jsonb;not null"`
	Wishlist     ProductRefs `gorm:"column:wishlist;type:jsonb;not null"`
	Addresses    Addresses   `gorm:"column:addresses;type:jsonb;not null"`
	Version      int         `gorm:"column:version;not null"`
	LastLoginAt  *time.Time  `gorm:"column:last_login_at"`
	CreatedAt    time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = enums.RoleUser
	}
	if u.Version == 0 {
		u.Version = 1
	}
	return nil
}

// HasPassword reports whether the account can sign in with a password.
// Federated accounts carry no hash.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Clone returns a deep copy of the embedded collections so a mutation can be
// applied without touching the loaded snapshot.
func (u *User) Clone() *User {
	out := *u
	out.Cart = append(CartLines(nil), u.Cart...)
	out.Wishlist = append(ProductRefs(nil), u.Wishlist...)
	out.Addresses = make(Addresses, len(u.Addresses))
	for i, addr := range u.Addresses {
		out.Addresses[i] = addr.clone()
	}
	return &out
}

// CartLine is one product entry in a user's cart. A product appears at most once.
type CartLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

type CartLines []CartLine

// Find returns the index of the line for productID, or -1.
func (c CartLines) Find(productID uuid.UUID) int {
	for i, line := range c {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// TotalItems sums the quantity of every line.
func (c CartLines) TotalItems() int {
	total := 0
	for _, line := range c {
		total += line.Quantity
	}
	return total
}

func (c CartLines) Value() (driver.Value, error) {
	return dbtypes.SliceValue([]CartLine(c))
}

func (c *CartLines) Scan(src any) error {
	out, err := dbtypes.ScanSlice[CartLine](src)
	if err != nil {
		return err
	}
	*c = out
	return nil
}

// ProductRefs is an ordered set of product ids.
type ProductRefs []uuid.UUID

func (p ProductRefs) Contains(productID uuid.UUID) bool {
	for _, id := range p {
		if id == productID {
			return true
		}
	}
	return false
}

func (p ProductRefs) Value() (driver.Value, error) {
	return dbtypes.SliceValue([]uuid.UUID(p))
}

func (p *ProductRefs) Scan(src any) error {
	out, err := dbtypes.ScanSlice[uuid.UUID](src)
	if err != nil {
		return err
	}
	*p = out
	return nil
}
