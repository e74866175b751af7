package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	pgxErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
	if !IsUniqueViolation(fmt.Errorf("insert: %w", pgxErr), "") {
		t.Fatalf("expected pgx unique violation to match")
	}
	if !IsUniqueViolation(pgxErr, "idx_users_email") {
		t.Fatalf("expected constraint match")
	}
	if IsUniqueViolation(pgxErr, "idx_products_slug") {
		t.Fatalf("expected other constraint to not match")
	}

	pqErr := &pq.Error{Code: "23505", Constraint: "idx_products_slug"}
	if !IsUniqueViolation(pqErr, "idx_products_slug") {
		t.Fatalf("expected pq unique violation to match")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}, "") {
		t.Fatalf("foreign key violation is not a unique violation")
	}

	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: users.email"), "users.email") {
		t.Fatalf("expected sqlite message to match")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatalf("unexpected match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatalf("nil is never a violation")
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(fmt.Errorf("tx: %w", &pgconn.PgError{Code: "40001"})) {
		t.Fatalf("serialization failure should be transient")
	}
	if !IsTransient(&pq.Error{Code: "40P01"}) {
		t.Fatalf("deadlock should be transient")
	}
	if IsTransient(&pgconn.PgError{Code: "23505"}) || IsTransient(errors.New("boom")) || IsTransient(nil) {
		t.Fatalf("unexpected transient classification")
	}
}
