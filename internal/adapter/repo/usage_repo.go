package repo

import (
	"context"

	"quotestudio/internal/domain"
	"quotestudio/internal/domain/jsoncfg"
	"quotestudio/internal/infra"
	"quotestudio/internal/sqlinline"
)

// UsageRepositoryPG appends audit events.
type UsageRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewUsageRepository(sql infra.SQLExecutor) *UsageRepositoryPG {
	return &UsageRepositoryPG{sql: sql}
}

func (r *UsageRepositoryPG) Record(ctx context.Context, e domain.UsageEvent) error {
	props := e.Properties
	if props == nil {
		props = map[string]any{}
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertUsageEvent,
		e.UserID,
		e.RequestID,
		string(e.Type),
		e.Success,
		int(e.Latency.Milliseconds()),
		jsoncfg.MustMarshal(props),
	)
	return infra.StoreError("record usage", err)
}

var _ domain.UsageRepository = (*UsageRepositoryPG)(nil)
