package sqlinline

const QInsertAccount = `--sql 8d32de71-ffb3-44b5-8bc1-7a664449ee5b
insert into accounts (id, email, password_hash, created_at)
values ($1::uuid, lower($2::text), $3::text, now())
returning created_at;
`

const QSelectAccountByEmail = `--sql e4703e76-b01e-455b-942d-0fcf433cf712
select id::text, email, password_hash, created_at
from accounts
where email = lower($1::text)
limit 1;
`
