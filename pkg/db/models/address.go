package models

import (
	"database/sql/driver"
	"time"

	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

// Address is a saved shipping address embedded in the user aggregate.
type Address struct {
	ID        uuid.UUID         `json:"id"`
	Type      enums.AddressType `json:"type"`
	Name      string            `json:"name"`
	Phone     string            `json:"phone"`
	Line1     string            `json:"line1"`
	Line2     *string           `json:"line2,omitempty"`
	City      string            `json:"city"`
	State     string            `json:"state"`
	Pincode   string            `json:"pincode"`
	IsDefault bool              `json:"is_default"`
	CreatedAt time.Time         `json:"created_at"`
}

func (a Address) clone() Address {
	if a.Line2 != nil {
		line2 := *a.Line2
		a.Line2 = &line2
	}
	return a
}

type Addresses []Address

// Find returns the index of the address with the given id, or -1.
func (a Addresses) Find(id uuid.UUID) int {
	for i, addr := range a {
		if addr.ID == id {
			return i
		}
	}
	return -1
}

// Default returns the default address, if any.
func (a Addresses) Default() (Address, bool) {
	for _, addr := range a {
		if addr.IsDefault {
			return addr, true
		}
	}
	return Address{}, false
}

func (a Addresses) Value() (driver.Value, error) {
	return dbtypes.SliceValue([]Address(a))
}

func (a *Addresses) Scan(src any) error {
	out, err := dbtypes.ScanSlice[Address](src)
	if err != nil {
		return err
	}
	*a = out
	return nil
}

// ShippingAddress is the address snapshot copied onto an order.
type ShippingAddress Address

func (s ShippingAddress) Value() (driver.Value, error) {
	return dbtypes.ObjectValue(Address(s))
}

func (s *ShippingAddress) Scan(src any) error {
	out, err := dbtypes.ScanObject[Address](src)
	if err != nil {
		return err
	}
	*s = ShippingAddress(out)
	return nil
}
