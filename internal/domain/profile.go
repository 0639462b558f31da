package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role enumerates supported roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Profile is the per-user record holding identity details and credit bookkeeping.
type Profile struct {
	ID              string
	Email           string
	Name            string
	ProfileImage    string
	Credits         int
	LastCreditReset time.Time
	IsAdmin         bool
	SavedQuotes     []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Role reports the role derived from the admin flag.
func (p Profile) Role() Role {
	if p.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// ProfileUpdate is a merge update; nil fields are left untouched.
type ProfileUpdate struct {
	Credits          *int
	LastCreditReset  *time.Time
	IsAdmin          *bool
	Name             *string
	ProfileImage     *string
	AppendSavedQuote *string

	// ExpectCredits turns the update into a compare-and-swap on the stored
	// credit value. A mismatch yields ErrConflict.
	ExpectCredits *int
}

// IsEmpty reports whether the update would change nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Credits == nil && u.LastCreditReset == nil && u.IsAdmin == nil &&
		u.Name == nil && u.ProfileImage == nil && u.AppendSavedQuote == nil
}

// ProfileOrder selects the ordering of ListAll.
type ProfileOrder string

const (
	OrderByEmail   ProfileOrder = "email"
	OrderByName    ProfileOrder = "name"
	OrderByCredits ProfileOrder = "credits"
)

// ParseProfileOrder maps a query value onto a ProfileOrder. Empty selects
// OrderByEmail.
func ParseProfileOrder(s string) (ProfileOrder, error) {
	switch o := ProfileOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return OrderByEmail, nil
	case OrderByEmail, OrderByName, OrderByCredits:
		return o, nil
	default:
		return "", fmt.Errorf("unknown order %q: %w", s, ErrInvalidInput)
	}
}

// Account holds the credentials used by the identity provider.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
