package infra

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"quotestudio/internal/domain"
)

func TestStoreError(t *testing.T) {
	if StoreError("op", nil) != nil {
		t.Fatal("nil error should stay nil")
	}
	if err := StoreError("get profile", pgx.ErrNoRows); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	driver := errors.New("connection refused")
	err := StoreError("get profile", driver)
	if !errors.Is(err, domain.ErrStoreUnavailable) || !errors.Is(err, driver) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if err := StoreError("update", domain.ErrConflict); !errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("conflict should pass through, got %v", err)
	}
	bad := &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}
	if err := StoreError("get profile", bad); !errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("malformed value should be invalid input, got %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("expected unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) || IsUniqueViolation(errors.New("x")) {
		t.Fatal("unexpected unique violation")
	}
}

func TestExtractMarker(t *testing.T) {
	marker, body, err := extractMarker("--sql 0b9c3f3e-1d7a-4a8e-9f3c-2b6d1e5a7c41\nSELECT 1")
	if err != nil {
		t.Fatalf("extractMarker error: %v", err)
	}
	if marker != "0b9c3f3e-1d7a-4a8e-9f3c-2b6d1e5a7c41" || body != "SELECT 1" {
		t.Fatalf("unexpected marker %q body %q", marker, body)
	}
	if _, _, err := extractMarker("SELECT 1"); err == nil {
		t.Fatal("expected error for missing marker")
	}
}
