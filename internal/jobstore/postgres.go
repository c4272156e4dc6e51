package jobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"drafted/internal/domain"
	"drafted/internal/infra"
)

// PostgresStore implements domain.JobStore and domain.SessionStore on
// top of the inline query set. Document-shaped fields (provider meta,
// stage timestamps, warnings, spec, plan) live in jsonb columns.
type PostgresStore struct {
	db infra.SQLExecutor
}

// NewPostgresStore wraps an executor, typically an infra.SQLRunner.
func NewPostgresStore(db infra.SQLExecutor) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, job *domain.Job) error {
	providerMeta, err := json.Marshal(job.ProviderMeta)
	if err != nil {
		return fmt.Errorf("marshal provider meta: %w", err)
	}
	stageTimestamps := job.StageTimestamps
	if stageTimestamps == nil {
		stageTimestamps = map[string]string{}
	}
	if job.Stage != "" {
		if _, ok := stageTimestamps[string(job.Stage)]; !ok {
			stageTimestamps[string(job.Stage)] = time.Now().UTC().Format(time.RFC3339Nano)
		}
	}
	timestamps, err := json.Marshal(stageTimestamps)
	if err != nil {
		return fmt.Errorf("marshal stage timestamps: %w", err)
	}
	warnings, err := json.Marshal(orEmpty(job.Warnings))
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}
	houseSpec, err := marshalNullable(job.HouseSpec)
	if err != nil {
		return fmt.Errorf("marshal house spec: %w", err)
	}
	planGraph, err := marshalNullable(job.PlanGraph)
	if err != nil {
		return fmt.Errorf("marshal plan graph: %w", err)
	}

	_, err = s.db.Exec(ctx, qJobInsert,
		job.ID, job.UID, job.SessionID, job.ParentJobID,
		job.Prompt, job.Bedrooms, job.Bathrooms, job.Style,
		job.WantExteriorImage, job.IdempotencyKey, job.RequestHash,
		string(job.Priority), string(job.Status), string(job.Stage),
		job.Error, string(job.FailureCode), job.RetryCount,
		providerMeta, timestamps, warnings, houseSpec, planGraph,
	)
	if err != nil && infra.IsUniqueViolation(err) {
		return domain.ErrDuplicateJob
	}
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	return scanJob(s.db.QueryRow(ctx, qJobGet, id))
}

func (s *PostgresStore) Update(ctx context.Context, id string, patch domain.JobPatch) error {
	providerMeta, err := marshalNullable(patch.ProviderMeta)
	if err != nil {
		return fmt.Errorf("marshal provider meta: %w", err)
	}
	var warnings []byte
	if patch.Warnings != nil {
		warnings, err = json.Marshal(patch.Warnings)
		if err != nil {
			return fmt.Errorf("marshal warnings: %w", err)
		}
	}
	houseSpec, err := marshalNullable(patch.HouseSpec)
	if err != nil {
		return fmt.Errorf("marshal house spec: %w", err)
	}
	planGraph, err := marshalNullable(patch.PlanGraph)
	if err != nil {
		return fmt.Errorf("marshal plan graph: %w", err)
	}

	tag, err := s.db.Exec(ctx, qJobPatch,
		id,
		patch.Status != nil, derefString((*string)(patch.Status)),
		patch.Stage != nil, derefString((*string)(patch.Stage)),
		patch.Error != nil, derefString(patch.Error),
		patch.FailureCode != nil, derefString((*string)(patch.FailureCode)),
		patch.RetryCount != nil, derefInt(patch.RetryCount),
		patch.ProviderMeta != nil, providerMeta,
		patch.Warnings != nil, warnings,
		patch.HouseSpec != nil, houseSpec,
		patch.PlanGraph != nil, planGraph,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Zero rows is either a missing job or a guarded-out transition.
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return getErr
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

func (s *PostgresStore) Claim(ctx context.Context, id string) (*domain.Job, error) {
	job, err := scanJob(s.db.QueryRow(ctx, qJobClaim, id))
	if err == domain.ErrNotFound {
		return nil, nil
	}
	return job, err
}

func (s *PostgresStore) NextQueued(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(ctx, qJobNextQueued, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) ListByUID(ctx context.Context, uid string, limit int) ([]*domain.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, qJobListByUID, uid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (s *PostgresStore) ListBySession(ctx context.Context, uid, sessionID string) ([]*domain.Job, error) {
	rows, err := s.db.Query(ctx, qJobListBySession, uid, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[domain.JobStatus]int, error) {
	rows, err := s.db.Query(ctx, qJobCountByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[domain.JobStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		out[domain.JobStatus(status)] = count
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveArtifact(ctx context.Context, jobID string, artifact *domain.Artifact) error {
	_, err := s.db.Exec(ctx, qArtifactUpsert,
		jobID, artifact.ID, artifact.MimeType, artifact.StoragePath,
		artifact.ChecksumSHA256, artifact.SizeBytes,
	)
	return err
}

func (s *PostgresStore) GetArtifact(ctx context.Context, jobID, artifactID string) (*domain.Artifact, error) {
	row := s.db.QueryRow(ctx, qArtifactGet, jobID, artifactID)
	return scanArtifact(row)
}

func (s *PostgresStore) ListArtifacts(ctx context.Context, jobID string) ([]*domain.Artifact, error) {
	rows, err := s.db.Query(ctx, qArtifactList, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Artifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, artifact)
	}
	return out, rows.Err()
}

// Sessions adapts the store to the SessionStore interface.
func (s *PostgresStore) Sessions() domain.SessionStore {
	return pgSessionStore{s}
}

type pgSessionStore struct{ store *PostgresStore }

func (p pgSessionStore) Create(ctx context.Context, session *domain.Session) error {
	_, err := p.store.db.Exec(ctx, qSessionInsert,
		session.ID, session.UID, session.Title, session.Status)
	if err != nil && infra.IsUniqueViolation(err) {
		return domain.ErrDuplicateJob
	}
	return err
}

func (p pgSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	err := p.store.db.QueryRow(ctx, qSessionGet, id).Scan(
		&session.ID, &session.UID, &session.Title, &session.Status,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (p pgSessionStore) ListByUID(ctx context.Context, uid string) ([]*domain.Session, error) {
	rows, err := p.store.db.Query(ctx, qSessionListByUID, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Session
	for rows.Next() {
		var session domain.Session
		if err := rows.Scan(&session.ID, &session.UID, &session.Title, &session.Status,
			&session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &session)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job             domain.Job
		priority        string
		status          string
		stage           string
		failureCode     string
		providerMeta    []byte
		stageTimestamps []byte
		warnings        []byte
		houseSpec       []byte
		planGraph       []byte
	)
	err := row.Scan(
		&job.ID, &job.UID, &job.SessionID, &job.ParentJobID,
		&job.Prompt, &job.Bedrooms, &job.Bathrooms, &job.Style,
		&job.WantExteriorImage, &job.IdempotencyKey, &job.RequestHash,
		&priority, &status, &stage,
		&job.Error, &failureCode, &job.RetryCount,
		&providerMeta, &stageTimestamps, &warnings, &houseSpec, &planGraph,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	job.Priority = domain.JobPriority(priority)
	job.Status = domain.JobStatus(status)
	job.Stage = domain.JobStage(stage)
	job.FailureCode = domain.FailureCode(failureCode)
	if err := unmarshalInto(providerMeta, &job.ProviderMeta); err != nil {
		return nil, fmt.Errorf("decode provider meta: %w", err)
	}
	if err := unmarshalInto(stageTimestamps, &job.StageTimestamps); err != nil {
		return nil, fmt.Errorf("decode stage timestamps: %w", err)
	}
	if err := unmarshalInto(warnings, &job.Warnings); err != nil {
		return nil, fmt.Errorf("decode warnings: %w", err)
	}
	if len(houseSpec) > 0 {
		job.HouseSpec = &domain.HouseSpec{}
		if err := json.Unmarshal(houseSpec, job.HouseSpec); err != nil {
			return nil, fmt.Errorf("decode house spec: %w", err)
		}
	}
	if len(planGraph) > 0 {
		job.PlanGraph = &domain.PlanGraph{}
		if err := json.Unmarshal(planGraph, job.PlanGraph); err != nil {
			return nil, fmt.Errorf("decode plan graph: %w", err)
		}
	}
	return &job, nil
}

func scanJobs(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]*domain.Job, error) {
	var out []*domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func scanArtifact(row rowScanner) (*domain.Artifact, error) {
	var artifact domain.Artifact
	err := row.Scan(
		&artifact.ID, &artifact.MimeType, &artifact.StoragePath,
		&artifact.ChecksumSHA256, &artifact.SizeBytes,
		&artifact.CreatedAt, &artifact.UpdatedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	artifact.Type = artifact.ID
	return &artifact, nil
}

func marshalNullable(v any) ([]byte, error) {
	switch t := v.(type) {
	case *domain.ProviderMeta:
		if t == nil {
			return nil, nil
		}
	case *domain.HouseSpec:
		if t == nil {
			return nil, nil
		}
	case *domain.PlanGraph:
		if t == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

func unmarshalInto(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
