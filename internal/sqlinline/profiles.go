package sqlinline

// Column order shared by every profile query; see repo.scanProfile.
const profileColumns = `id::text, email, name, profile_image, credits, last_credit_reset, is_admin, saved_quotes, created_at, updated_at`

const QSelectProfileByID = `--sql 88234cd7-7304-476f-be71-0ba04ff2ab5a
select ` + profileColumns + `
from profiles
where id = $1::uuid
limit 1;
`

const QSelectProfileByEmail = `--sql 545a558d-e62d-40be-ae34-3c8299028bdc
select ` + profileColumns + `
from profiles
where lower(email) = lower($1::text)
limit 1;
`

const QUpsertProfile = `--sql 89492067-7a31-41b2-be8e-918bfe4f555d
insert into profiles (id, email, name, profile_image, credits, last_credit_reset, is_admin, saved_quotes, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::int, $6::timestamptz, $7::boolean, coalesce($8::text[], '{}'::text[]), now(), now())
on conflict (id) do update set
    email = excluded.email,
    name = excluded.name,
    profile_image = excluded.profile_image,
    credits = excluded.credits,
    last_credit_reset = excluded.last_credit_reset,
    is_admin = excluded.is_admin,
    saved_quotes = excluded.saved_quotes,
    updated_at = now();
`

// QUpdateProfile merges non-null arguments into the row. $8 turns the update
// into a compare-and-swap on credits. last_credit_reset never moves backwards.
const QUpdateProfile = `--sql 37c08f38-5c6b-4e7e-994b-35027e201984
update profiles set
    credits = coalesce($2::int, credits),
    last_credit_reset = greatest(last_credit_reset, coalesce($3::timestamptz, last_credit_reset)),
    is_admin = coalesce($4::boolean, is_admin),
    name = coalesce($5::text, name),
    profile_image = coalesce($6::text, profile_image),
    saved_quotes = case when $7::text is null then saved_quotes else array_append(saved_quotes, $7::text) end,
    updated_at = now()
where id = $1::uuid
  and ($8::int is null or credits = $8::int)
returning ` + profileColumns + `;
`

const QListProfiles = `--sql a9d41aea-35ab-40af-97ce-81d3ecfba0b9
select ` + profileColumns + `
from profiles
order by
    case when $1::text = 'name' then lower(name) end,
    case when $1::text = 'credits' then credits end desc,
    lower(email);
`
