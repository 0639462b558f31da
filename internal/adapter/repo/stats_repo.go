package repo

import (
	"context"
	"time"

	"quotestudio/internal/domain"
	"quotestudio/internal/infra"
	"quotestudio/internal/sqlinline"
)

const activityWindow = 24 * time.Hour

// StatsRepositoryPG computes the admin dashboard figures.
type StatsRepositoryPG struct {
	sql infra.SQLExecutor
	now func() time.Time
}

func NewStatsRepository(sql infra.SQLExecutor) *StatsRepositoryPG {
	return &StatsRepositoryPG{sql: sql, now: time.Now}
}

func (r *StatsRepositoryPG) Summary(ctx context.Context, defaultCredits int) (*domain.Stats, error) {
	var s domain.Stats
	if err := r.sql.QueryRow(ctx, sqlinline.QStatsSummary, defaultCredits).Scan(&s.TotalUsers, &s.AdminUsers, &s.TotalCreditsUsed); err != nil {
		return nil, infra.StoreError("stats summary", err)
	}
	if s.TotalUsers > 0 {
		s.AverageCreditsUsed = float64(s.TotalCreditsUsed) / float64(s.TotalUsers)
	}
	activity, err := r.activity(ctx, r.now().Add(-activityWindow))
	if err != nil {
		return nil, err
	}
	s.Activity = activity
	return &s, nil
}

func (r *StatsRepositoryPG) activity(ctx context.Context, since time.Time) (map[domain.UsageEventType]int, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QUsageCountsSince, since)
	if err != nil {
		return nil, infra.StoreError("usage counts", err)
	}
	defer rows.Close()
	out := make(map[domain.UsageEventType]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, infra.StoreError("scan usage count", err)
		}
		out[domain.UsageEventType(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, infra.StoreError("usage counts", err)
	}
	return out, nil
}

var _ domain.StatsRepository = (*StatsRepositoryPG)(nil)
