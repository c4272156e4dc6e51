package jobstore

import (
	"context"
	"testing"

	"drafted/internal/domain"
)

func newQueuedJob(id string, priority domain.JobPriority) *domain.Job {
	return &domain.Job{
		ID:       id,
		UID:      "user-1",
		Prompt:   "test",
		Priority: priority,
		Status:   domain.JobStatusQueued,
		Stage:    domain.StageInit,
	}
}

func TestMemoryStoreClaimOnce(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if err := store.Create(ctx, newQueuedJob("a", domain.PriorityNormal)); err != nil {
		t.Fatal(err)
	}

	first, err := store.Claim(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if first == nil || first.Status != domain.JobStatusQueued {
		t.Fatalf("claim should return the pre-claim snapshot, got %+v", first)
	}

	second, err := store.Claim(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if second != nil {
		t.Fatal("second claim should be a no-op")
	}

	job, _ := store.Get(ctx, "a")
	if job.Status != domain.JobStatusRunning || job.Stage != domain.StageSpec {
		t.Fatalf("claimed job should be running/spec, got %s/%s", job.Status, job.Stage)
	}
	if _, ok := job.StageTimestamps[string(domain.StageSpec)]; !ok {
		t.Fatal("claim should stamp the spec stage")
	}
}

func TestMemoryStoreClaimMissingJob(t *testing.T) {
	store := NewMemoryStore()
	job, err := store.Claim(context.Background(), "missing")
	if err != nil || job != nil {
		t.Fatalf("claim of a missing job should be (nil, nil), got %v %v", job, err)
	}
}

func TestMemoryStoreRejectsInvalidTransition(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if err := store.Create(ctx, newQueuedJob("a", domain.PriorityNormal)); err != nil {
		t.Fatal(err)
	}

	succeeded := domain.JobStatusSucceeded
	if err := store.Update(ctx, "a", domain.JobPatch{Status: &succeeded}); err != domain.ErrInvalidTransition {
		t.Fatalf("queued -> succeeded must be rejected, got %v", err)
	}

	if _, err := store.Claim(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := store.Update(ctx, "a", domain.JobPatch{Status: &succeeded}); err != nil {
		t.Fatalf("running -> succeeded should work: %v", err)
	}
	queued := domain.JobStatusQueued
	if err := store.Update(ctx, "a", domain.JobPatch{Status: &queued}); err != domain.ErrInvalidTransition {
		t.Fatalf("terminal jobs must not change status, got %v", err)
	}
}

func TestMemoryStoreDuplicateCreate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if err := store.Create(ctx, newQueuedJob("a", domain.PriorityNormal)); err != nil {
		t.Fatal(err)
	}
	if err := store.Create(ctx, newQueuedJob("a", domain.PriorityNormal)); err != domain.ErrDuplicateJob {
		t.Fatalf("expected ErrDuplicateJob, got %v", err)
	}
}

func TestMemoryStoreNextQueuedPrefersHighPriority(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if err := store.Create(ctx, newQueuedJob("old-normal", domain.PriorityNormal)); err != nil {
		t.Fatal(err)
	}
	if err := store.Create(ctx, newQueuedJob("new-high", domain.PriorityHigh)); err != nil {
		t.Fatal(err)
	}

	ids, err := store.NextQueued(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "new-high" {
		t.Fatalf("high priority should come first, got %v", ids)
	}

	if _, err := store.Claim(ctx, "new-high"); err != nil {
		t.Fatal(err)
	}
	ids, _ = store.NextQueued(ctx, 10)
	if len(ids) != 1 || ids[0] != "old-normal" {
		t.Fatalf("claimed jobs must leave the queue, got %v", ids)
	}
}

func TestMemoryStoreSnapshotsDoNotAlias(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	job := newQueuedJob("a", domain.PriorityNormal)
	job.Warnings = []string{"w1"}
	if err := store.Create(ctx, job); err != nil {
		t.Fatal(err)
	}

	got, _ := store.Get(ctx, "a")
	got.Warnings[0] = "mutated"
	got.Prompt = "mutated"

	again, _ := store.Get(ctx, "a")
	if again.Warnings[0] != "w1" || again.Prompt != "test" {
		t.Fatalf("store state leaked through a snapshot: %+v", again)
	}
}

func TestMemoryStoreArtifactUpsert(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if err := store.Create(ctx, newQueuedJob("a", domain.PriorityNormal)); err != nil {
		t.Fatal(err)
	}

	artifact := &domain.Artifact{ID: domain.ArtifactSpecJSON, MimeType: "application/json", ChecksumSHA256: "aaa", SizeBytes: 3}
	if err := store.SaveArtifact(ctx, "a", artifact); err != nil {
		t.Fatal(err)
	}
	artifact2 := &domain.Artifact{ID: domain.ArtifactSpecJSON, MimeType: "application/json", ChecksumSHA256: "bbb", SizeBytes: 6}
	if err := store.SaveArtifact(ctx, "a", artifact2); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetArtifact(ctx, "a", domain.ArtifactSpecJSON)
	if err != nil {
		t.Fatal(err)
	}
	if got.ChecksumSHA256 != "bbb" || got.SizeBytes != 6 {
		t.Fatalf("expected upserted artifact, got %+v", got)
	}

	list, err := store.ListArtifacts(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("upsert should not duplicate, got %d", len(list))
	}

	if err := store.SaveArtifact(ctx, "missing", artifact); err != domain.ErrNotFound {
		t.Fatalf("artifacts require an existing job, got %v", err)
	}
}

func TestMemoryStoreSessions(t *testing.T) {
	store := NewMemoryStore()
	sessions := store.Sessions()
	ctx := context.Background()

	if err := sessions.Create(ctx, &domain.Session{ID: "s1", UID: "user-1", Title: "First", Status: "active"}); err != nil {
		t.Fatal(err)
	}
	got, err := sessions.Get(ctx, "s1")
	if err != nil || got.Title != "First" {
		t.Fatalf("unexpected session: %+v %v", got, err)
	}
	if _, err := sessions.Get(ctx, "missing"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	list, err := sessions.ListByUID(ctx, "user-1")
	if err != nil || len(list) != 1 {
		t.Fatalf("unexpected session list: %v %v", list, err)
	}
}
