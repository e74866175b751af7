package enums

import (
	"slices"
	"strings"
)

// Role is the storefront-wide permission level of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

var validRoles = []Role{RoleUser, RoleAdmin}

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool { return slices.Contains(validRoles, r) }

// ParseRole accepts any letter case.
func ParseRole(value string) (Role, error) {
	return parse(value, "role", validRoles, strings.ToUpper, "")
}
