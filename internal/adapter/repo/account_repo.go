package repo

import (
	"context"
	"fmt"

	"quotestudio/internal/domain"
	"quotestudio/internal/infra"
	"quotestudio/internal/sqlinline"
)

// AccountRepositoryPG implements domain.AccountRepository on PostgreSQL.
type AccountRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewAccountRepository(sql infra.SQLExecutor) *AccountRepositoryPG {
	return &AccountRepositoryPG{sql: sql}
}

// Create inserts the account; a taken email yields ErrEmailInUse.
func (r *AccountRepositoryPG) Create(ctx context.Context, a *domain.Account) error {
	err := r.sql.QueryRow(ctx, sqlinline.QInsertAccount, a.ID, a.Email, a.PasswordHash).Scan(&a.CreatedAt)
	if infra.IsUniqueViolation(err) {
		return fmt.Errorf("create account: %w", domain.ErrEmailInUse)
	}
	return infra.StoreError("create account", err)
}

func (r *AccountRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var a domain.Account
	err := r.sql.QueryRow(ctx, sqlinline.QSelectAccountByEmail, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, infra.StoreError("get account", err)
	}
	return &a, nil
}

var _ domain.AccountRepository = (*AccountRepositoryPG)(nil)
