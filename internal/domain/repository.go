package domain

import "context"

// JobPatch is a partial job update. Nil fields are left untouched; a
// pointer to a zero value clears the field. Setting Stage also stamps
// StageTimestamps[stage] with the current time, producing the append-only
// progress trail clients consume.
type JobPatch struct {
	Status       *JobStatus
	Stage        *JobStage
	Error        *string
	FailureCode  *FailureCode
	RetryCount   *int
	ProviderMeta *ProviderMeta
	Warnings     []string
	HouseSpec    *HouseSpec
	PlanGraph    *PlanGraph
}

// JobStore abstracts the transactional job document store. Claim is the
// only synchronization primitive the pipeline relies on: it must guarantee
// that at most one caller transitions a job away from queued.
type JobStore interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	Update(ctx context.Context, id string, patch JobPatch) error

	// Claim atomically moves a queued job to running/spec and returns the
	// pre-claim snapshot. It returns (nil, nil) when the job is absent or
	// no longer queued, making duplicate trigger deliveries safe no-ops.
	Claim(ctx context.Context, id string) (*Job, error)

	// NextQueued lists claimable job ids, high priority first, then oldest.
	NextQueued(ctx context.Context, limit int) ([]string, error)

	ListByUID(ctx context.Context, uid string, limit int) ([]*Job, error)
	ListBySession(ctx context.Context, uid, sessionID string) ([]*Job, error)
	CountByStatus(ctx context.Context) (map[JobStatus]int, error)

	SaveArtifact(ctx context.Context, jobID string, artifact *Artifact) error
	GetArtifact(ctx context.Context, jobID, artifactID string) (*Artifact, error)
	ListArtifacts(ctx context.Context, jobID string) ([]*Artifact, error)
}

// SessionStore persists design sessions.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	ListByUID(ctx context.Context, uid string) ([]*Session, error)
}

// BlobStore is content-addressed artifact byte persistence. The caller
// supplies the key; writing the same key twice overwrites deterministically.
type BlobStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Read(ctx context.Context, key string) ([]byte, error)
}
