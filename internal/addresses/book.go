package addresses

import (
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
)

// MaxAddresses caps how many addresses one user can save.
const MaxAddresses = 10

// CreateInput is a complete new address.
type CreateInput struct {
	Type      string
	Name      string
	Phone     string
	Line1     string
	Line2     *string
	City      string
	State     string
	Pincode   string
	IsDefault bool
}

// UpdateInput is a sparse patch. Nil fields keep their stored value. Line2
// is the only clearable field: an explicit null or empty string removes it.
type UpdateInput struct {
	Type      *string
	Name      *string
	Phone     *string
	Line1     *string
	Line2     types.Nullable[string]
	City      *string
	State     *string
	Pincode   *string
	IsDefault *bool
}

// The functions below operate on a copy of the address list and keep
// exactly one default whenever the list is non-empty.

// Create appends a validated address. The first address and any address
// created with IsDefault become the single default.
func Create(book models.Addresses, in CreateInput, id uuid.UUID, now time.Time) (models.Addresses, models.Address, error) {
	if len(book) >= MaxAddresses {
		return nil, models.Address{}, pkgerrors.Newf(pkgerrors.CodeValidation, "cannot save more than %d addresses", MaxAddresses)
	}
	addrType, err := enums.ParseAddressType(in.Type)
	if err != nil {
		return nil, models.Address{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address type")
	}
	addr := models.Address{
		ID:        id,
		Type:      addrType,
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Line1:     strings.TrimSpace(in.Line1),
		Line2:     cleanLine2(in.Line2),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		Pincode:   strings.TrimSpace(in.Pincode),
		IsDefault: in.IsDefault || len(book) == 0,
		CreatedAt: now,
	}
	if err := validateAddress(addr); err != nil {
		return nil, models.Address{}, err
	}

	out := clearDefaultsIf(book, addr.IsDefault)
	out = append(out, addr)
	return out, addr, nil
}

// Update applies a sparse patch to the address with id. Setting IsDefault
// true moves the default here; setting it false on the current default is
// ignored because a default must remain.
func Update(book models.Addresses, id uuid.UUID, in UpdateInput) (models.Addresses, models.Address, bool, error) {
	idx := book.Find(id)
	if idx < 0 {
		return nil, models.Address{}, false, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	before := book[idx]
	addr := before
	if in.Type != nil {
		addrType, err := enums.ParseAddressType(*in.Type)
		if err != nil {
			return nil, models.Address{}, false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address type")
		}
		addr.Type = addrType
	}
	patchString(&addr.Name, in.Name)
	patchString(&addr.Phone, in.Phone)
	patchString(&addr.Line1, in.Line1)
	patchString(&addr.City, in.City)
	patchString(&addr.State, in.State)
	patchString(&addr.Pincode, in.Pincode)
	if in.Line2.Valid {
		addr.Line2 = cleanLine2(in.Line2.Value)
	}
	makeDefault := in.IsDefault != nil && *in.IsDefault && !before.IsDefault
	if err := validateAddress(addr); err != nil {
		return nil, models.Address{}, false, err
	}

	if !makeDefault && sameAddress(before, addr) {
		return book, before, false, nil
	}

	out := clearDefaultsIf(book, makeDefault)
	if makeDefault {
		addr.IsDefault = true
	}
	out[idx] = addr
	return out, addr, true, nil
}

// Delete removes the address with id. When the default is removed the
// first remaining address is promoted. An unknown id is a no-op.
func Delete(book models.Addresses, id uuid.UUID) (models.Addresses, bool) {
	idx := book.Find(id)
	if idx < 0 {
		return book, false
	}
	out := make(models.Addresses, 0, len(book)-1)
	out = append(out, book[:idx]...)
	out = append(out, book[idx+1:]...)
	out, _ = Normalize(out)
	return out, true
}

// SetDefault makes the address with id the only default.
func SetDefault(book models.Addresses, id uuid.UUID) (models.Addresses, bool, error) {
	idx := book.Find(id)
	if idx < 0 {
		return nil, false, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	if book[idx].IsDefault && countDefaults(book) == 1 {
		return book, false, nil
	}
	out := clearDefaultsIf(book, true)
	out[idx].IsDefault = true
	return out, true, nil
}

// Normalize repairs a loaded list so exactly one address is default: the
// first default wins, or the first address when none is flagged.
func Normalize(book models.Addresses) (models.Addresses, bool) {
	if len(book) == 0 {
		return book, false
	}
	defaults := countDefaults(book)
	if defaults == 1 {
		return book, false
	}
	out := make(models.Addresses, len(book))
	copy(out, book)
	if defaults == 0 {
		out[0].IsDefault = true
		return out, true
	}
	seen := false
	for i := range out {
		if out[i].IsDefault {
			if seen {
				out[i].IsDefault = false
			}
			seen = true
		}
	}
	return out, true
}

func clearDefaultsIf(book models.Addresses, clear bool) models.Addresses {
	out := make(models.Addresses, len(book), len(book)+1)
	copy(out, book)
	if !clear {
		return out
	}
	for i := range out {
		out[i].IsDefault = false
	}
	return out
}

func countDefaults(book models.Addresses) int {
	n := 0
	for _, addr := range book {
		if addr.IsDefault {
			n++
		}
	}
	return n
}

func patchString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func cleanLine2(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func sameAddress(a, b models.Address) bool {
	if (a.Line2 == nil) != (b.Line2 == nil) {
		return false
	}
	if a.Line2 != nil && *a.Line2 != *b.Line2 {
		return false
	}
	return a.Type == b.Type &&
		a.Name == b.Name &&
		a.Phone == b.Phone &&
		a.Line1 == b.Line1 &&
		a.City == b.City &&
		a.State == b.State &&
		a.Pincode == b.Pincode
}

// Resolve picks the shipping address for checkout: the address with id when
// given, otherwise the default.
func Resolve(book models.Addresses, id *uuid.UUID) (models.Address, error) {
	if id != nil && *id != uuid.Nil {
		idx := book.Find(*id)
		if idx < 0 {
			return models.Address{}, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return book[idx], nil
	}
	normalized, _ := Normalize(book)
	if addr, ok := normalized.Default(); ok {
		return addr, nil
	}
	return models.Address{}, pkgerrors.New(pkgerrors.CodeValidation, "a shipping address is required")
}
