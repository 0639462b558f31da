package domain

import "context"

// ProfileStore is the document store holding profiles keyed by user id.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	// Create fully replaces the record stored under p.ID.
	Create(ctx context.Context, p *Profile) error
	// Update merges upd into the stored record and returns the result.
	Update(ctx context.Context, id string, upd ProfileUpdate) (*Profile, error)
	ListAll(ctx context.Context, order ProfileOrder) ([]Profile, error)
}

// AccountRepository persists login credentials.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
}

// UsageRepository records user-triggered events for auditing.
type UsageRepository interface {
	Record(ctx context.Context, event UsageEvent) error
}

// StatsRepository aggregates the admin dashboard figures.
type StatsRepository interface {
	Summary(ctx context.Context, defaultCredits int) (*Stats, error)
}
