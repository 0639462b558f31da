package sqlinline

// Per-provider settings rows. The upload preset lives here so it can change
// without a redeploy; its folder is kept in properties.
const QSelectIntegrationSetting = `--sql 3f6b2c71-94de-4a0b-b5c8-0e2d7a9f4c16
select t.token,
       coalesce(t.properties->>'folder', '') as folder
from integration_tokens t
where t.provider = $1::text;
`

const QUpsertIntegrationSetting = `--sql c81d05e4-6a3f-4f92-9b17-52e8d0a4b7c3
insert into integration_tokens as t (provider, token, properties)
values ($1::text, $2::text, jsonb_strip_nulls(jsonb_build_object('folder', nullif($3::text, ''))))
on conflict (provider) do update
   set token = excluded.token,
       properties = excluded.properties,
       updated_at = now();
`

const QDeleteIntegrationSetting = `--sql a2c42f58-1877-446b-a24d-34d165bda362
delete from integration_tokens
where provider = $1::text;
`
