package ledger

import (
	"errors"
	"testing"
	"time"

	"quotestudio/internal/domain"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestResetIfExpired(t *testing.T) {
	policy := DefaultPolicy()
	cases := []struct {
		name      string
		credits   int
		elapsed   time.Duration
		wantReset bool
		want      int
	}{
		{name: "fresh", credits: 37, elapsed: 0, wantReset: false, want: 37},
		{name: "under window", credits: 37, elapsed: 23*time.Hour + 59*time.Minute, wantReset: false, want: 37},
		{name: "exactly window", credits: 0, elapsed: 24 * time.Hour, wantReset: true, want: 200},
		{name: "long expired", credits: 5, elapsed: 72 * time.Hour, wantReset: true, want: 200},
		{name: "above default still refilled", credits: 900, elapsed: 25 * time.Hour, wantReset: true, want: 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := domain.Profile{ID: "u1", Credits: tc.credits, LastCreditReset: t0}
			now := t0.Add(tc.elapsed)
			got, reset := policy.ResetIfExpired(p, now)
			if reset != tc.wantReset {
				t.Fatalf("reset: expected %v, got %v", tc.wantReset, reset)
			}
			if got.Credits != tc.want {
				t.Fatalf("credits: expected %d, got %d", tc.want, got.Credits)
			}
			if reset && !got.LastCreditReset.Equal(now) {
				t.Fatalf("expected reset time %v, got %v", now, got.LastCreditReset)
			}
			if !reset && !got.LastCreditReset.Equal(t0) {
				t.Fatalf("reset time changed without reset: %v", got.LastCreditReset)
			}
		})
	}
}

func TestResetIfExpiredIdempotent(t *testing.T) {
	policy := DefaultPolicy()
	p := domain.Profile{ID: "u1", Credits: 3, LastCreditReset: t0}
	now := t0.Add(30 * time.Hour)
	once, _ := policy.ResetIfExpired(p, now)
	twice, reset := policy.ResetIfExpired(once, now.Add(time.Minute))
	if reset {
		t.Fatal("second reset inside the window should be a no-op")
	}
	if twice.Credits != once.Credits || !twice.LastCreditReset.Equal(once.LastCreditReset) {
		t.Fatalf("expected %+v, got %+v", once, twice)
	}
}

func TestDebitOneCredit(t *testing.T) {
	policy := DefaultPolicy()
	got, err := policy.DebitOneCredit(domain.Profile{ID: "u1", Credits: 5})
	if err != nil {
		t.Fatalf("DebitOneCredit error: %v", err)
	}
	if got.Credits != 4 {
		t.Fatalf("expected 4 credits, got %d", got.Credits)
	}
}

func TestDebitOneCreditEmpty(t *testing.T) {
	policy := DefaultPolicy()
	p := domain.Profile{ID: "u1", Credits: 0, LastCreditReset: t0}
	got, err := policy.DebitOneCredit(p)
	if !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if got.Credits != 0 || !got.LastCreditReset.Equal(t0) {
		t.Fatalf("profile changed on failed debit: %+v", got)
	}
}

func TestAdminSetCredits(t *testing.T) {
	policy := DefaultPolicy()
	cases := []struct {
		in, want int
	}{
		{in: 50, want: 50},
		{in: 0, want: 0},
		{in: -4, want: 0},
		{in: 1000, want: 1000},
		{in: 5000, want: 1000},
	}
	now := t0.Add(2 * time.Hour)
	for _, tc := range cases {
		got := policy.AdminSetCredits(domain.Profile{ID: "u1", Credits: 10, LastCreditReset: t0}, tc.in, now)
		if got.Credits != tc.want {
			t.Fatalf("AdminSetCredits(%d): expected %d, got %d", tc.in, tc.want, got.Credits)
		}
		if !got.LastCreditReset.Equal(now) {
			t.Fatalf("expected reset stamp %v, got %v", now, got.LastCreditReset)
		}
	}
}

func TestAdminSetCreditsKeepsResetMonotonic(t *testing.T) {
	policy := DefaultPolicy()
	earlier := t0.Add(-time.Hour)
	got := policy.AdminSetCredits(domain.Profile{ID: "u1", LastCreditReset: t0}, 20, earlier)
	if !got.LastCreditReset.Equal(t0) {
		t.Fatalf("reset time moved backwards to %v", got.LastCreditReset)
	}
}

func TestTimeUntilReset(t *testing.T) {
	policy := DefaultPolicy()
	p := domain.Profile{LastCreditReset: t0}
	if got := policy.TimeUntilReset(p, t0.Add(20*time.Hour)); got != 4*time.Hour {
		t.Fatalf("expected 4h, got %v", got)
	}
	if got := policy.TimeUntilReset(p, t0.Add(26*time.Hour)); got != 0 {
		t.Fatalf("expected 0 when due, got %v", got)
	}
}

func TestPolicyNormalize(t *testing.T) {
	p := Policy{DefaultCredits: 300, AdminMaxCredits: 100}.Normalize()
	if p.ResetInterval != DefaultResetInterval {
		t.Fatalf("expected default interval, got %v", p.ResetInterval)
	}
	if p.AdminMaxCredits != 300 {
		t.Fatalf("expected admin max raised to 300, got %d", p.AdminMaxCredits)
	}
	if used := p.CreditsUsed(domain.Profile{Credits: 250}); used != 50 {
		t.Fatalf("expected 50 used, got %d", used)
	}
}
