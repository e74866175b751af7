package enums

import (
	"slices"
	"strings"
)

// AddressType labels a saved shipping address.
type AddressType string

const (
	AddressTypeHome  AddressType = "home"
	AddressTypeWork  AddressType = "work"
	AddressTypeOther AddressType = "other"
)

var validAddressTypes = []AddressType{AddressTypeHome, AddressTypeWork, AddressTypeOther}

func (a AddressType) String() string { return string(a) }

func (a AddressType) IsValid() bool { return slices.Contains(validAddressTypes, a) }

// ParseAddressType defaults blank input to home.
func ParseAddressType(value string) (AddressType, error) {
	return parse(value, "address type", validAddressTypes, strings.ToLower, AddressTypeHome)
}
