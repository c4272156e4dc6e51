package jobstore

// Inline SQL for the Postgres store. Every statement carries a
// `--sql <uuid>` marker line that the runner strips and logs, so query
// failures are traceable without shipping SQL text to the logs.
//
// Expected schema:
//
//	jobs(id text primary key, uid text, session_id text, parent_job_id text,
//	     prompt text, bedrooms int, bathrooms int, style text,
//	     want_exterior_image boolean, idempotency_key text, request_hash text,
//	     priority text, status text, stage text, error_message text,
//	     failure_code text, retry_count int, provider_meta jsonb,
//	     stage_timestamps jsonb, warnings jsonb, house_spec jsonb,
//	     plan_graph jsonb, created_at timestamptz, updated_at timestamptz)
//	artifacts(job_id text references jobs(id), artifact_id text, mime_type text,
//	     storage_path text, checksum_sha256 text, size_bytes bigint,
//	     created_at timestamptz, updated_at timestamptz,
//	     primary key (job_id, artifact_id))
//	sessions(id text primary key, uid text, title text, status text,
//	     created_at timestamptz, updated_at timestamptz)

const jobColumns = `id, uid, session_id, parent_job_id, prompt, bedrooms, bathrooms, style,
want_exterior_image, idempotency_key, request_hash, priority, status, stage,
error_message, failure_code, retry_count, provider_meta, stage_timestamps,
warnings, house_spec, plan_graph, created_at, updated_at`

const qJobInsert = `--sql 8c1f7a2e-9b4d-4c6a-8e2f-1d3b5a7c9e0f
insert into jobs (` + jobColumns + `)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
        $15, $16, $17, $18, $19, $20, $21, $22, now(), now());
`

const qJobGet = `--sql 2a6e4d8b-1c3f-4a5e-9b7d-6f8a0c2e4b1d
select ` + jobColumns + `
from jobs
where id = $1;
`

// Claim selects the queued row for update and returns the pre-claim
// snapshot while a sibling CTE flips it to running/spec. skip locked
// makes a losing concurrent claimer see zero rows instead of blocking.
const qJobClaim = `--sql 7b9d1f3a-5c7e-4b9a-8d1f-3a5c7e9b0d2f
with claimed as (
    select ` + jobColumns + `
    from jobs
    where id = $1 and status = 'queued'
    for update skip locked
),
updated as (
    update jobs
    set status = 'running',
        stage = 'spec',
        stage_timestamps = coalesce(stage_timestamps, '{}'::jsonb)
            || jsonb_build_object('spec', to_char(now() at time zone 'utc', 'YYYY-MM-DD"T"HH24:MI:SS.US"Z"')),
        updated_at = now()
    where id in (select id from claimed)
)
select * from claimed;
`

const qJobNextQueued = `--sql 4e2c8a6f-0b1d-4e3a-9c5b-7d9f1a3c5e8b
select id
from jobs
where status = 'queued'
order by (priority = 'high') desc, created_at asc
limit $1;
`

const qJobListByUID = `--sql 9f3b5d7a-2e4c-4f6a-8b0d-1c3e5a7b9d4f
select ` + jobColumns + `
from jobs
where uid = $1
order by created_at desc
limit $2;
`

const qJobListBySession = `--sql 1d5f7b9c-3a2e-4d6b-8f0a-5c7e9b1d3f6a
select ` + jobColumns + `
from jobs
where uid = $1 and session_id = $2
order by created_at desc;
`

const qJobCountByStatus = `--sql 6a8c0e2b-4d5f-4a7c-9e1b-3f5d7a9c0e4b
select status, count(*)
from jobs
group by status;
`

// Patch update. The boolean set_* flags gate each assignment so one
// statement covers every JobPatch shape. The status guard enforces the
// legal transitions; a guarded-out update touches zero rows.
const qJobPatch = `--sql 3e7a9c1d-5b6f-4c8a-0d2e-7f9b1d3a5c7e
update jobs
set status          = case when $2::boolean  then $3  else status end,
    stage           = case when $4::boolean  then $5  else stage end,
    stage_timestamps = case when $4::boolean
        then coalesce(stage_timestamps, '{}'::jsonb)
            || jsonb_build_object($5::text, to_char(now() at time zone 'utc', 'YYYY-MM-DD"T"HH24:MI:SS.US"Z"'))
        else stage_timestamps end,
    error_message   = case when $6::boolean  then $7  else error_message end,
    failure_code    = case when $8::boolean  then $9  else failure_code end,
    retry_count     = case when $10::boolean then $11 else retry_count end,
    provider_meta   = case when $12::boolean then $13::jsonb else provider_meta end,
    warnings        = case when $14::boolean then $15::jsonb else warnings end,
    house_spec      = case when $16::boolean then $17::jsonb else house_spec end,
    plan_graph      = case when $18::boolean then $19::jsonb else plan_graph end,
    updated_at      = now()
where id = $1
  and ($2::boolean = false
       or status = $3
       or (status = 'queued'  and $3 = 'running')
       or (status = 'running' and $3 in ('running', 'succeeded', 'failed')));
`

const qArtifactUpsert = `--sql 5c9e1b3d-7f8a-4b0c-2d4e-9a1c3e5b7d0f
insert into artifacts (job_id, artifact_id, mime_type, storage_path, checksum_sha256, size_bytes, created_at, updated_at)
values ($1, $2, $3, $4, $5, $6, now(), now())
on conflict (job_id, artifact_id) do update
set mime_type = excluded.mime_type,
    storage_path = excluded.storage_path,
    checksum_sha256 = excluded.checksum_sha256,
    size_bytes = excluded.size_bytes,
    updated_at = now();
`

const qArtifactGet = `--sql 0b4d6f8a-2c3e-4d5f-6a8b-0c2e4a6c8e1b
select artifact_id, mime_type, storage_path, checksum_sha256, size_bytes, created_at, updated_at
from artifacts
where job_id = $1 and artifact_id = $2;
`

const qArtifactList = `--sql 8e0a2c4b-6d7f-4e9a-1b3c-5d7f9b1d4e6a
select artifact_id, mime_type, storage_path, checksum_sha256, size_bytes, created_at, updated_at
from artifacts
where job_id = $1
order by artifact_id asc;
`

const qSessionInsert = `--sql 2f6b8d0c-4e5a-4f7b-9c1d-3e5a7c9e2f5b
insert into sessions (id, uid, title, status, created_at, updated_at)
values ($1, $2, $3, $4, now(), now());
`

const qSessionGet = `--sql 7d1f3b5a-9c0e-4a2c-4e6f-8b0d2f4a7c9e
select id, uid, title, status, created_at, updated_at
from sessions
where id = $1;
`

const qSessionListByUID = `--sql 4a8c0e2d-6f7b-4c9e-0a2b-4d6f8a0c3e5d
select id, uid, title, status, created_at, updated_at
from sessions
where uid = $1
order by created_at desc;
`
