package sqlinline

const QInsertUsageEvent = `--sql e40f651c-a8b3-44c7-a911-bb8a0ed5f6ef
insert into usage_events(id, user_id, request_id, event_type, success, latency_ms, created_at, properties)
values (gen_random_uuid(), nullif($1::text, '')::uuid, nullif($2::text, ''), $3::text, $4::boolean, $5::int, now(), coalesce($6::jsonb, '{}'::jsonb));
`

// QUsageCountsSince counts successful events per type recorded at or after $1.
const QUsageCountsSince = `--sql 5c1e9a6d-2b47-4f3a-8d0e-7a61c4b2e9f5
select event_type, count(*)::int
from usage_events
where success and created_at >= $1::timestamptz
group by event_type
order by event_type;
`
