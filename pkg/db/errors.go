package db

import (
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// IsUniqueViolation reports whether err is a unique constraint violation. When
// constraintName is set, only violations of that constraint match. Postgres
// errors are matched by SQLSTATE; sqlite (tests) falls back to message text.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if fault, ok := pkgerrors.DatabaseFault(err); ok {
		return fault.SQLState == pkgerrors.SQLStateUniqueViolation &&
			(constraintName == "" || fault.Constraint == constraintName)
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	return constraintName == "" || strings.Contains(msg, constraintName)
}

// IsTransient reports whether err is a serialization failure or deadlock that
// a fresh transaction may get past.
func IsTransient(err error) bool {
	fault, ok := pkgerrors.DatabaseFault(err)
	return ok && fault.Transient()
}
