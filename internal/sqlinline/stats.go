package sqlinline

// QStatsSummary takes the default allotment as $1; credits used is measured
// against it and never negative.
const QStatsSummary = `--sql 0f0557a2-1731-4fc6-8cbe-8540b1d2b6df
select
  count(*)::int as total_users,
  count(*) filter (where is_admin)::int as admin_users,
  coalesce(sum(greatest($1::int - credits, 0)), 0)::int as credits_used
from profiles;
`
