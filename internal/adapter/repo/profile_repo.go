package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"quotestudio/internal/domain"
	"quotestudio/internal/infra"
	"quotestudio/internal/sqlinline"
)

type scanner interface {
	Scan(dest ...any) error
}

// ProfileRepositoryPG implements domain.ProfileStore on PostgreSQL.
type ProfileRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(sql infra.SQLExecutor) *ProfileRepositoryPG {
	return &ProfileRepositoryPG{sql: sql}
}

// validID reports whether id can name a profile. Profile ids are uuids, so
// anything else cannot match a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *ProfileRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if !validID(id) {
		return nil, fmt.Errorf("get profile %q: %w", id, domain.ErrNotFound)
	}
	p, err := scanProfile(r.sql.QueryRow(ctx, sqlinline.QSelectProfileByID, id))
	if err != nil {
		return nil, infra.StoreError("get profile", err)
	}
	return p, nil
}

func (r *ProfileRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	p, err := scanProfile(r.sql.QueryRow(ctx, sqlinline.QSelectProfileByEmail, email))
	if err != nil {
		return nil, infra.StoreError("get profile by email", err)
	}
	return p, nil
}

// Create writes the full record, replacing any existing profile with the same id.
func (r *ProfileRepositoryPG) Create(ctx context.Context, p *domain.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is required: %w", domain.ErrInvalidInput)
	}
	if !validID(p.ID) {
		return fmt.Errorf("profile id %q: %w", p.ID, domain.ErrInvalidInput)
	}
	saved := p.SavedQuotes
	if saved == nil {
		saved = []string{}
	}
	_, err := r.sql.Exec(ctx, sqlinline.QUpsertProfile,
		p.ID,
		p.Email,
		p.Name,
		p.ProfileImage,
		p.Credits,
		p.LastCreditReset,
		p.IsAdmin,
		saved,
	)
	return infra.StoreError("create profile", err)
}

// Update merges upd into the stored row. With ExpectCredits set, a row whose
// credits changed since the caller read it is reported as ErrConflict.
func (r *ProfileRepositoryPG) Update(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.Profile, error) {
	if !validID(id) {
		return nil, fmt.Errorf("update profile %q: %w", id, domain.ErrNotFound)
	}
	if upd.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateProfile,
		id,
		upd.Credits,
		upd.LastCreditReset,
		upd.IsAdmin,
		upd.Name,
		upd.ProfileImage,
		upd.AppendSavedQuote,
		upd.ExpectCredits,
	)
	p, err := scanProfile(row)
	if err == nil {
		return p, nil
	}
	if infra.IsNoRows(err) && upd.ExpectCredits != nil {
		if _, getErr := r.GetByID(ctx, id); getErr == nil {
			return nil, fmt.Errorf("update profile %s: %w", id, domain.ErrConflict)
		}
	}
	return nil, infra.StoreError("update profile", err)
}

func (r *ProfileRepositoryPG) ListAll(ctx context.Context, order domain.ProfileOrder) ([]domain.Profile, error) {
	if order == "" {
		order = domain.OrderByEmail
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListProfiles, string(order))
	if err != nil {
		return nil, infra.StoreError("list profiles", err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, infra.StoreError("scan profile", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.StoreError("list profiles", err)
	}
	return profiles, nil
}

func scanProfile(row scanner) (*domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(
		&p.ID,
		&p.Email,
		&p.Name,
		&p.ProfileImage,
		&p.Credits,
		&p.LastCreditReset,
		&p.IsAdmin,
		&p.SavedQuotes,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if p.SavedQuotes == nil {
		p.SavedQuotes = []string{}
	}
	return &p, nil
}

var _ domain.ProfileStore = (*ProfileRepositoryPG)(nil)
