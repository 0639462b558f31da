package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"quotestudio/internal/domain"
)

// Service applies the ledger rules against the profile store.
//
// Debits are persisted with a compare-and-swap on the previous credit value so
// a debit computed from a stale read never overwrites an administrator edit.
// Administrator writes are absolute and last-write-wins.
type Service struct {
	store  domain.ProfileStore
	usage  domain.UsageRepository
	policy Policy
	now    func() time.Time
	logger zerolog.Logger
}

// BulkFailure records one profile that could not be updated by a batch.
type BulkFailure struct {
	ID  string
	Err error
}

// BulkResult reports the outcome of a batch operation item by item.
type BulkResult struct {
	Updated []domain.Profile
	Failed  []BulkFailure
}

// NewService builds a Service. usage may be nil.
func NewService(store domain.ProfileStore, usage domain.UsageRepository, policy Policy, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		usage:  usage,
		policy: policy.Normalize(),
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With().Str("component", "ledger").Logger(),
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Policy returns the rules the service enforces.
func (s *Service) Policy() Policy {
	return s.policy
}

// Now returns the service clock reading.
func (s *Service) Now() time.Time {
	return s.now()
}

// NewProfile returns the record created at signup.
func (s *Service) NewProfile(id, email, name string, isAdmin bool) domain.Profile {
	now := s.now()
	return domain.Profile{
		ID:              id,
		Email:           strings.ToLower(strings.TrimSpace(email)),
		Name:            strings.TrimSpace(name),
		Credits:         s.policy.DefaultCredits,
		LastCreditReset: now,
		IsAdmin:         isAdmin,
		SavedQuotes:     []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// resetAttempts bounds how often StartSession re-reads a profile whose
// credits changed under it.
const resetAttempts = 3

// StartSession runs the reset check for an authenticated principal. A reset
// is persisted before the profile is returned. When another write lands
// between the read and the reset, the check runs again on the fresh profile.
func (s *Service) StartSession(ctx context.Context, id string) (*domain.Profile, error) {
	for attempt := 1; ; attempt++ {
		current, err := s.store.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}
		next, reset := s.policy.ResetIfExpired(*current, s.now())
		if !reset {
			return current, nil
		}
		updated, err := s.store.Update(ctx, id, domain.ProfileUpdate{
			Credits:         &next.Credits,
			LastCreditReset: &next.LastCreditReset,
			ExpectCredits:   &current.Credits,
		})
		if errors.Is(err, domain.ErrConflict) && attempt < resetAttempts {
			s.logger.Debug().Str("user_id", id).Int("attempt", attempt).Msg("credit reset raced with another update")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("persist credit reset: %w", err)
		}
		s.logger.Info().Str("user_id", id).Int("credits", updated.Credits).Msg("credits reset")
		s.record(ctx, id, domain.UsageCreditReset, map[string]any{"credits": updated.Credits})
		return updated, nil
	}
}

// EnsureCredits fails with ErrInsufficientCredits when the profile cannot pay
// for a generation. It does not change anything.
func (s *Service) EnsureCredits(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p.Credits < 1 {
		return p, domain.ErrInsufficientCredits
	}
	return p, nil
}

// Debit consumes one credit. Call it only after the generation it pays for
// succeeded.
func (s *Service) Debit(ctx context.Context, id string) (*domain.Profile, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	next, err := s.policy.DebitOneCredit(*current)
	if err != nil {
		return current, err
	}
	updated, err := s.store.Update(ctx, id, domain.ProfileUpdate{
		Credits:       &next.Credits,
		ExpectCredits: &current.Credits,
	})
	if err != nil {
		return nil, fmt.Errorf("persist debit: %w", err)
	}
	return updated, nil
}

// AdminSetCredits assigns credits as an administrator override.
func (s *Service) AdminSetCredits(ctx context.Context, id string, credits int) (*domain.Profile, error) {
	now := s.now()
	value := s.policy.ClampCredits(credits)
	updated, err := s.store.Update(ctx, id, domain.ProfileUpdate{
		Credits:         &value,
		LastCreditReset: &now,
	})
	if err != nil {
		return nil, fmt.Errorf("set credits for %s: %w", id, err)
	}
	s.record(ctx, id, domain.UsageAdminCredits, map[string]any{"credits": value, "requested": credits})
	return updated, nil
}

// GrantAdmin sets or clears the administrator role.
func (s *Service) GrantAdmin(ctx context.Context, id string, isAdmin bool) (*domain.Profile, error) {
	updated, err := s.store.Update(ctx, id, domain.ProfileUpdate{IsAdmin: &isAdmin})
	if err != nil {
		return nil, fmt.Errorf("set role for %s: %w", id, err)
	}
	s.logger.Info().Str("user_id", id).Bool("is_admin", isAdmin).Msg("role changed")
	s.record(ctx, id, domain.UsageAdminRole, map[string]any{"is_admin": isAdmin})
	return updated, nil
}

// AdminBulkReset applies AdminSetCredits to every id independently. Failures
// are collected in the result and do not stop the batch.
func (s *Service) AdminBulkReset(ctx context.Context, ids []string, value int) BulkResult {
	var res BulkResult
	for _, id := range ids {
		p, err := s.AdminSetCredits(ctx, id, value)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", id).Msg("bulk reset item failed")
			res.Failed = append(res.Failed, BulkFailure{ID: id, Err: err})
			continue
		}
		res.Updated = append(res.Updated, *p)
	}
	return res
}

// AdminResetAll resets every stored profile to value.
func (s *Service) AdminResetAll(ctx context.Context, value int) (BulkResult, error) {
	profiles, err := s.store.ListAll(ctx, domain.OrderByEmail)
	if err != nil {
		return BulkResult{}, fmt.Errorf("list profiles: %w", err)
	}
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	return s.AdminBulkReset(ctx, ids, value), nil
}

func (s *Service) record(ctx context.Context, userID string, kind domain.UsageEventType, props map[string]any) {
	if s.usage == nil {
		return
	}
	if err := s.usage.Record(ctx, domain.UsageEvent{UserID: userID, Type: kind, Success: true, Properties: props}); err != nil {
		s.logger.Warn().Err(err).Str("event", string(kind)).Msg("usage record failed")
	}
}
