package ledger

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"quotestudio/internal/domain"
)

type memStore struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
	failIDs  map[string]error
	// beforeUpdate runs inside Update before the compare-and-swap check.
	beforeUpdate func(p *domain.Profile)
}

func newMemStore(profiles ...domain.Profile) *memStore {
	s := &memStore{profiles: map[string]domain.Profile{}, failIDs: map[string]error{}}
	for _, p := range profiles {
		s.profiles[p.ID] = p
	}
	return s
}

func (s *memStore) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *memStore) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.Email == email {
			cp := p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) Create(ctx context.Context, p *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = *p
	return nil
}

func (s *memStore) Update(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failIDs[id]; err != nil {
		return nil, err
	}
	p, ok := s.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.beforeUpdate != nil {
		s.beforeUpdate(&p)
		s.profiles[id] = p
	}
	if upd.ExpectCredits != nil && *upd.ExpectCredits != p.Credits {
		return nil, domain.ErrConflict
	}
	if upd.Credits != nil {
		p.Credits = *upd.Credits
	}
	if upd.LastCreditReset != nil && upd.LastCreditReset.After(p.LastCreditReset) {
		p.LastCreditReset = *upd.LastCreditReset
	}
	if upd.IsAdmin != nil {
		p.IsAdmin = *upd.IsAdmin
	}
	s.profiles[id] = p
	return &p, nil
}

func (s *memStore) ListAll(ctx context.Context, order domain.ProfileOrder) ([]domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

type recordingUsage struct {
	events []domain.UsageEvent
}

func (r *recordingUsage) Record(ctx context.Context, e domain.UsageEvent) error {
	r.events = append(r.events, e)
	return nil
}

func newTestService(store domain.ProfileStore, now time.Time) (*Service, *recordingUsage) {
	usage := &recordingUsage{}
	svc := NewService(store, usage, DefaultPolicy(), zerolog.Nop()).WithClock(func() time.Time { return now })
	return svc, usage
}

func TestStartSessionNoResetWithinWindow(t *testing.T) {
	store := newMemStore(domain.Profile{ID: "u1", Credits: 12, LastCreditReset: t0})
	svc, usage := newTestService(store, t0.Add(10*time.Hour))
	p, err := svc.StartSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}
	if p.Credits != 12 || !p.LastCreditReset.Equal(t0) {
		t.Fatalf("unexpected profile %+v", p)
	}
	if len(usage.events) != 0 {
		t.Fatalf("expected no usage events, got %d", len(usage.events))
	}
}

func TestStartSessionPersistsReset(t *testing.T) {
	now := t0.Add(25 * time.Hour)
	store := newMemStore(domain.Profile{ID: "u1", Credits: 0, LastCreditReset: t0})
	svc, usage := newTestService(store, now)
	p, err := svc.StartSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}
	if p.Credits != 200 {
		t.Fatalf("expected 200 credits, got %d", p.Credits)
	}
	stored, _ := store.GetByID(context.Background(), "u1")
	if stored.Credits != 200 || !stored.LastCreditReset.Equal(now) {
		t.Fatalf("reset not persisted: %+v", stored)
	}
	if len(usage.events) != 1 || usage.events[0].Type != domain.UsageCreditReset {
		t.Fatalf("expected one reset event, got %+v", usage.events)
	}
}

func TestStartSessionMissingProfile(t *testing.T) {
	svc, _ := newTestService(newMemStore(), t0)
	if _, err := svc.StartSession(context.Background(), "nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDebit(t *testing.T) {
	store := newMemStore(domain.Profile{ID: "u1", Credits: 5, LastCreditReset: t0})
	svc, _ := newTestService(store, t0)
	p, err := svc.Debit(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Debit error: %v", err)
	}
	if p.Credits != 4 {
		t.Fatalf("expected 4 credits, got %d", p.Credits)
	}
}

func TestDebitWithoutCredits(t *testing.T) {
	store := newMemStore(domain.Profile{ID: "u1", Credits: 0, LastCreditReset: t0})
	svc, _ := newTestService(store, t0)
	if _, err := svc.Debit(context.Background(), "u1"); !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	stored, _ := store.GetByID(context.Background(), "u1")
	if stored.Credits != 0 {
		t.Fatalf("expected 0 credits, got %d", stored.Credits)
	}
}

func TestDebitConflictKeepsAdminWrite(t *testing.T) {
	store := newMemStore(domain.Profile{ID: "u1", Credits: 5, LastCreditReset: t0})
	// An administrator sets 50 between the read and the write.
	store.beforeUpdate = func(p *domain.Profile) { p.Credits = 50 }
	svc, _ := newTestService(store, t0)
	if _, err := svc.Debit(context.Background(), "u1"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	store.beforeUpdate = nil
	stored, _ := store.GetByID(context.Background(), "u1")
	if stored.Credits != 50 {
		t.Fatalf("admin write lost, got %d", stored.Credits)
	}
}

func TestStartSessionResetSurvivesConcurrentDebit(t *testing.T) {
	store := newMemStore(domain.Profile{ID: "u1", Credits: 5, LastCreditReset: t0})
	debits := 0
	store.beforeUpdate = func(p *domain.Profile) {
		if debits == 0 {
			p.Credits--
			debits++
		}
	}
	now := t0.Add(48 * time.Hour)
	svc, usage := newTestService(store, now)

	p, err := svc.StartSession(context.Background(), "u1")
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}
	if p.Credits != DefaultCredits || !p.LastCreditReset.Equal(now) {
		t.Fatalf("reset skipped: credits=%d lastReset=%s", p.Credits, p.LastCreditReset)
	}
	stored, _ := store.GetByID(context.Background(), "u1")
	if stored.Credits != DefaultCredits {
		t.Fatalf("stored credits = %d", stored.Credits)
	}
	if len(usage.events) != 1 || usage.events[0].Type != domain.UsageCreditReset {
		t.Fatalf("expected one reset event, got %+v", usage.events)
	}
}

func TestStartSessionGivesUpOnPersistentConflict(t *testing.T) {
	store := newMemStore(domain.Profile{ID: "u1", Credits: 500, LastCreditReset: t0})
	store.beforeUpdate = func(p *domain.Profile) { p.Credits-- }
	svc, _ := newTestService(store, t0.Add(48*time.Hour))
	if _, err := svc.StartSession(context.Background(), "u1"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestEnsureCredits(t *testing.T) {
	store := newMemStore(
		domain.Profile{ID: "rich", Credits: 1},
		domain.Profile{ID: "broke", Credits: 0},
	)
	svc, _ := newTestService(store, t0)
	if _, err := svc.EnsureCredits(context.Background(), "rich"); err != nil {
		t.Fatalf("EnsureCredits error: %v", err)
	}
	if _, err := svc.EnsureCredits(context.Background(), "broke"); !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
}

func TestAdminSetCreditsService(t *testing.T) {
	now := t0.Add(3 * time.Hour)
	store := newMemStore(domain.Profile{ID: "u1", Credits: 7, LastCreditReset: t0})
	svc, usage := newTestService(store, now)
	p, err := svc.AdminSetCredits(context.Background(), "u1", 50)
	if err != nil {
		t.Fatalf("AdminSetCredits error: %v", err)
	}
	if p.Credits != 50 || !p.LastCreditReset.Equal(now) {
		t.Fatalf("unexpected profile %+v", p)
	}
	if _, err := svc.AdminSetCredits(context.Background(), "u1", 1_000_000); err != nil {
		t.Fatalf("AdminSetCredits error: %v", err)
	}
	stored, _ := store.GetByID(context.Background(), "u1")
	if stored.Credits != DefaultAdminMaxCredits {
		t.Fatalf("expected clamp to %d, got %d", DefaultAdminMaxCredits, stored.Credits)
	}
	if len(usage.events) != 2 {
		t.Fatalf("expected 2 usage events, got %d", len(usage.events))
	}
}

func TestAdminBulkResetCollectsFailures(t *testing.T) {
	store := newMemStore(
		domain.Profile{ID: "a", Email: "a@example.com", Credits: 1, LastCreditReset: t0},
		domain.Profile{ID: "b", Email: "b@example.com", Credits: 2, LastCreditReset: t0},
		domain.Profile{ID: "c", Email: "c@example.com", Credits: 3, LastCreditReset: t0},
	)
	store.failIDs["b"] = domain.ErrStoreUnavailable
	svc, _ := newTestService(store, t0.Add(time.Hour))

	res, err := svc.AdminResetAll(context.Background(), 200)
	if err != nil {
		t.Fatalf("AdminResetAll error: %v", err)
	}
	if len(res.Updated) != 2 {
		t.Fatalf("expected 2 updated, got %d", len(res.Updated))
	}
	if len(res.Failed) != 1 || res.Failed[0].ID != "b" {
		t.Fatalf("expected failure for b, got %+v", res.Failed)
	}
	if !errors.Is(res.Failed[0].Err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", res.Failed[0].Err)
	}
	for _, id := range []string{"a", "c"} {
		p, _ := store.GetByID(context.Background(), id)
		if p.Credits != 200 {
			t.Fatalf("%s: expected 200 credits, got %d", id, p.Credits)
		}
	}
	b, _ := store.GetByID(context.Background(), "b")
	if b.Credits != 2 {
		t.Fatalf("b should be untouched, got %d", b.Credits)
	}
}

func TestGrantAdmin(t *testing.T) {
	store := newMemStore(domain.Profile{ID: "u1"})
	svc, _ := newTestService(store, t0)
	p, err := svc.GrantAdmin(context.Background(), "u1", true)
	if err != nil {
		t.Fatalf("GrantAdmin error: %v", err)
	}
	if !p.IsAdmin || p.Role() != domain.RoleAdmin {
		t.Fatalf("expected admin, got %+v", p)
	}
}

func TestNewProfileDefaults(t *testing.T) {
	svc, _ := newTestService(newMemStore(), t0)
	p := svc.NewProfile("u1", " Ann@Example.com ", " Ann ", false)
	if p.Credits != DefaultCredits || !p.LastCreditReset.Equal(t0) {
		t.Fatalf("unexpected defaults %+v", p)
	}
	if p.Email != "ann@example.com" || p.Name != "Ann" {
		t.Fatalf("expected normalized identity, got %q %q", p.Email, p.Name)
	}
	if p.SavedQuotes == nil || len(p.SavedQuotes) != 0 {
		t.Fatalf("expected empty saved quotes, got %v", p.SavedQuotes)
	}
}
