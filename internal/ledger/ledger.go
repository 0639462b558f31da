// Package ledger implements the per-user credit bookkeeping: the rolling daily
// reset, the debit taken for each generation and the administrator overrides.
//
// The functions in this file are pure. Service wraps them with persistence.
package ledger

import (
	"fmt"
	"time"

	"quotestudio/internal/domain"
)

const (
	// DefaultCredits is the allotment granted at signup and on every reset.
	DefaultCredits = 200
	// DefaultResetInterval is the rolling window after which credits refill.
	DefaultResetInterval = 24 * time.Hour
	// DefaultAdminMaxCredits bounds the value an administrator may assign.
	DefaultAdminMaxCredits = 1000
)

// Policy parameterizes the ledger rules.
type Policy struct {
	DefaultCredits  int
	ResetInterval   time.Duration
	AdminMaxCredits int
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		DefaultCredits:  DefaultCredits,
		ResetInterval:   DefaultResetInterval,
		AdminMaxCredits: DefaultAdminMaxCredits,
	}
}

// Normalize fills zero fields with defaults.
func (p Policy) Normalize() Policy {
	if p.DefaultCredits <= 0 {
		p.DefaultCredits = DefaultCredits
	}
	if p.ResetInterval <= 0 {
		p.ResetInterval = DefaultResetInterval
	}
	if p.AdminMaxCredits <= 0 {
		p.AdminMaxCredits = DefaultAdminMaxCredits
	}
	if p.AdminMaxCredits < p.DefaultCredits {
		p.AdminMaxCredits = p.DefaultCredits
	}
	return p
}

// ResetIfExpired refills the profile when the reset window has elapsed since
// the last reset. The returned flag reports whether a reset happened.
func (p Policy) ResetIfExpired(profile domain.Profile, now time.Time) (domain.Profile, bool) {
	if now.Sub(profile.LastCreditReset) < p.ResetInterval {
		return profile, false
	}
	profile.Credits = p.DefaultCredits
	profile.LastCreditReset = now
	return profile, true
}

// DebitOneCredit consumes one credit. The profile is returned unchanged with
// ErrInsufficientCredits when nothing is left.
func (p Policy) DebitOneCredit(profile domain.Profile) (domain.Profile, error) {
	if profile.Credits < 1 {
		return profile, fmt.Errorf("debit credit for %s: %w", profile.ID, domain.ErrInsufficientCredits)
	}
	profile.Credits--
	return profile, nil
}

// AdminSetCredits assigns an absolute credit value, clamped to
// [0, AdminMaxCredits], and stamps the reset time regardless of the window.
func (p Policy) AdminSetCredits(profile domain.Profile, credits int, now time.Time) domain.Profile {
	profile.Credits = p.ClampCredits(credits)
	if now.After(profile.LastCreditReset) {
		profile.LastCreditReset = now
	}
	return profile
}

// ClampCredits bounds n to the range an administrator may assign.
func (p Policy) ClampCredits(n int) int {
	if n < 0 {
		return 0
	}
	if n > p.AdminMaxCredits {
		return p.AdminMaxCredits
	}
	return n
}

// TimeUntilReset returns how long until the next refill; zero means a reset
// is already due.
func (p Policy) TimeUntilReset(profile domain.Profile, now time.Time) time.Duration {
	next := profile.LastCreditReset.Add(p.ResetInterval)
	if !next.After(now) {
		return 0
	}
	return next.Sub(now)
}

// CreditsUsed reports how many credits of the daily allotment are spent.
func (p Policy) CreditsUsed(profile domain.Profile) int {
	used := p.DefaultCredits - profile.Credits
	if used < 0 {
		return 0
	}
	return used
}
