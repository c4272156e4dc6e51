// Package jobstore provides the job document stores: a Postgres-backed
// implementation for production and an in-memory implementation for
// tests and credential-free local runs.
package jobstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"drafted/internal/domain"
)

// MemoryStore is a mutex-guarded in-memory JobStore and SessionStore.
// Snapshots returned to callers are deep copies.
type MemoryStore struct {
	mu        sync.Mutex
	jobs      map[string]*domain.Job
	artifacts map[string]map[string]*domain.Artifact
	sessions  map[string]*domain.Session
	now       func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:      make(map[string]*domain.Job),
		artifacts: make(map[string]map[string]*domain.Artifact),
		sessions:  make(map[string]*domain.Session),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Create(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return domain.ErrDuplicateJob
	}
	clone := job.Clone()
	now := s.now()
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now
	if clone.StageTimestamps == nil {
		clone.StageTimestamps = map[string]string{}
	}
	if _, ok := clone.StageTimestamps[string(clone.Stage)]; !ok && clone.Stage != "" {
		clone.StageTimestamps[string(clone.Stage)] = now.Format(time.RFC3339Nano)
	}
	s.jobs[job.ID] = clone
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return job.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, patch domain.JobPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.Status != nil && *patch.Status != job.Status {
		if !domain.CanTransition(job.Status, *patch.Status) {
			return domain.ErrInvalidTransition
		}
		job.Status = *patch.Status
	}
	applyPatch(job, patch, s.now())
	return nil
}

func (s *MemoryStore) Claim(ctx context.Context, id string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || job.Status != domain.JobStatusQueued {
		return nil, nil
	}
	snapshot := job.Clone()
	now := s.now()
	job.Status = domain.JobStatusRunning
	job.Stage = domain.StageSpec
	job.UpdatedAt = now
	if job.StageTimestamps == nil {
		job.StageTimestamps = map[string]string{}
	}
	job.StageTimestamps[string(domain.StageSpec)] = now.Format(time.RFC3339Nano)
	return snapshot, nil
}

func (s *MemoryStore) NextQueued(ctx context.Context, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var queued []*domain.Job
	for _, job := range s.jobs {
		if job.Status == domain.JobStatusQueued {
			queued = append(queued, job)
		}
	}
	sort.Slice(queued, func(i, j int) bool {
		hi := queued[i].Priority == domain.PriorityHigh
		hj := queued[j].Priority == domain.PriorityHigh
		if hi != hj {
			return hi
		}
		return queued[i].CreatedAt.Before(queued[j].CreatedAt)
	})
	ids := make([]string, 0, len(queued))
	for _, job := range queued {
		if limit > 0 && len(ids) >= limit {
			break
		}
		ids = append(ids, job.ID)
	}
	return ids, nil
}

func (s *MemoryStore) ListByUID(ctx context.Context, uid string, limit int) ([]*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Job
	for _, job := range s.jobs {
		if job.UID == uid {
			out = append(out, job.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) ListBySession(ctx context.Context, uid, sessionID string) ([]*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Job
	for _, job := range s.jobs {
		if job.UID == uid && job.SessionID == sessionID {
			out = append(out, job.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CountByStatus(ctx context.Context) (map[domain.JobStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.JobStatus]int)
	for _, job := range s.jobs {
		out[job.Status]++
	}
	return out, nil
}

func (s *MemoryStore) SaveArtifact(ctx context.Context, jobID string, artifact *domain.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[jobID]; !ok {
		return domain.ErrNotFound
	}
	byID, ok := s.artifacts[jobID]
	if !ok {
		byID = make(map[string]*domain.Artifact)
		s.artifacts[jobID] = byID
	}
	stored := *artifact
	if existing, ok := byID[artifact.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	stored.UpdatedAt = s.now()
	byID[artifact.ID] = &stored
	return nil
}

func (s *MemoryStore) GetArtifact(ctx context.Context, jobID, artifactID string) (*domain.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	artifact, ok := s.artifacts[jobID][artifactID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *artifact
	return &out, nil
}

func (s *MemoryStore) ListArtifacts(ctx context.Context, jobID string) ([]*domain.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Artifact
	for _, artifact := range s.artifacts[jobID] {
		a := *artifact
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateSession(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return domain.ErrDuplicateJob
	}
	stored := *session
	now := s.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.sessions[session.ID] = &stored
	return nil
}

func (s *MemoryStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *session
	return &out, nil
}

func (s *MemoryStore) ListSessionsByUID(ctx context.Context, uid string) ([]*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Session
	for _, session := range s.sessions {
		if session.UID == uid {
			c := *session
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Sessions adapts the store to the SessionStore interface.
func (s *MemoryStore) Sessions() domain.SessionStore {
	return memorySessionStore{s}
}

type memorySessionStore struct{ store *MemoryStore }

func (m memorySessionStore) Create(ctx context.Context, session *domain.Session) error {
	return m.store.CreateSession(ctx, session)
}

func (m memorySessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	return m.store.GetSession(ctx, id)
}

func (m memorySessionStore) ListByUID(ctx context.Context, uid string) ([]*domain.Session, error) {
	return m.store.ListSessionsByUID(ctx, uid)
}

// applyPatch mutates job in place. Status is handled by the caller so
// transition checks stay store-specific.
func applyPatch(job *domain.Job, patch domain.JobPatch, now time.Time) {
	if patch.Stage != nil {
		job.Stage = *patch.Stage
		if job.StageTimestamps == nil {
			job.StageTimestamps = map[string]string{}
		}
		job.StageTimestamps[string(*patch.Stage)] = now.Format(time.RFC3339Nano)
	}
	if patch.Error != nil {
		job.Error = *patch.Error
	}
	if patch.FailureCode != nil {
		job.FailureCode = *patch.FailureCode
	}
	if patch.RetryCount != nil {
		job.RetryCount = *patch.RetryCount
	}
	if patch.ProviderMeta != nil {
		meta := *patch.ProviderMeta
		meta.Calls = append([]domain.ProviderCallMeta(nil), patch.ProviderMeta.Calls...)
		job.ProviderMeta = meta
	}
	if patch.Warnings != nil {
		job.Warnings = append([]string(nil), patch.Warnings...)
	}
	if patch.HouseSpec != nil {
		spec := *patch.HouseSpec
		spec.Rooms = append([]domain.Room(nil), patch.HouseSpec.Rooms...)
		spec.Notes = append([]string(nil), patch.HouseSpec.Notes...)
		job.HouseSpec = &spec
	}
	if patch.PlanGraph != nil {
		plan := *patch.PlanGraph
		plan.Rooms = append([]domain.PlanRoom(nil), patch.PlanGraph.Rooms...)
		plan.Edges = append([]domain.PlanEdge(nil), patch.PlanGraph.Edges...)
		plan.Warnings = append([]string(nil), patch.PlanGraph.Warnings...)
		job.PlanGraph = &plan
	}
	job.UpdatedAt = now
}
