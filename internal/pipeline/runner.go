// Package pipeline drives a claimed job through its stages: spec
// synthesis, layout, artifact rendering and optional exterior imaging.
// Every outcome, whether success, retry or terminal failure, is recorded
// on the job document; ProcessQueuedJob never surfaces an error to its
// caller.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"drafted/internal/domain"
	"drafted/internal/layout"
	"drafted/internal/metrics"
	"drafted/internal/providers/genai"
)

const (
	// Backoff between retry attempts: 1200ms * 2^attempt, capped.
	backoffBase = 1200 * time.Millisecond
	backoffCap  = 8000 * time.Millisecond

	maxErrorMessageLen = 2000

	defaultMaxRetries = 2
	maxRetryLimit     = 6
)

// Generator is the provider boundary the runner depends on.
type Generator interface {
	GenerateHouseSpec(ctx context.Context, req genai.SpecRequest) (*domain.HouseSpec, domain.ProviderCallMeta, error)
	GenerateExteriorImage(ctx context.Context, req genai.ImageRequest) (*genai.ImageResult, error)
}

// Options configures a Runner.
type Options struct {
	Store      domain.JobStore
	Blobs      domain.BlobStore
	Generator  Generator
	Logger     zerolog.Logger
	Collector  *metrics.Collector
	MaxRetries int
	// Sleep is overridable so tests can skip real backoff waits.
	Sleep func(ctx context.Context, d time.Duration)
}

// Runner executes the asynchronous job pipeline.
type Runner struct {
	store      domain.JobStore
	blobs      domain.BlobStore
	gen        Generator
	logger     zerolog.Logger
	collector  *metrics.Collector
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration)
}

// NewRunner wires a Runner. MaxRetries is clamped to [0,6].
func NewRunner(opts Options) *Runner {
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	if maxRetries > maxRetryLimit {
		maxRetries = maxRetryLimit
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = func(ctx context.Context, d time.Duration) {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
			case <-timer.C:
			}
		}
	}
	return &Runner{
		store:      opts.Store,
		blobs:      opts.Blobs,
		gen:        opts.Generator,
		logger:     opts.Logger,
		collector:  opts.Collector,
		maxRetries: maxRetries,
		sleep:      sleep,
	}
}

// ProcessQueuedJob claims a queued job and runs it to a terminal state.
// Duplicate invocations for the same job are safe: only the caller that
// wins the claim proceeds, everyone else no-ops.
func (r *Runner) ProcessQueuedJob(ctx context.Context, jobID string) {
	claimed, err := r.store.Claim(ctx, jobID)
	if err != nil {
		r.logger.Error().Err(err).Str("job_id", jobID).Msg("pipeline: claim failed")
		return
	}
	if claimed == nil {
		return
	}
	r.collector.JobClaimed()
	r.logger.Info().Str("job_id", jobID).Int("retry_count", claimed.RetryCount).Msg("pipeline: job_claimed")

	started := time.Now()
	for attempt := claimed.RetryCount; attempt <= r.maxRetries; attempt++ {
		job, err := r.store.Get(ctx, jobID)
		if err != nil {
			// Deleted externally between attempts: abandon silently.
			if err == domain.ErrNotFound {
				return
			}
			r.logger.Error().Err(err).Str("job_id", jobID).Msg("pipeline: re-read failed")
			return
		}

		runErr := r.runPipeline(ctx, job, attempt)
		if runErr == nil {
			r.collector.JobSucceeded(time.Since(started).Seconds())
			r.logger.Info().Str("job_id", jobID).Int("retry_count", attempt).Msg("pipeline: job_succeeded")
			return
		}

		code, retryable := Classify(runErr)
		msg := truncate(runErr.Error(), maxErrorMessageLen)

		if retryable && attempt < r.maxRetries {
			r.collector.JobRetried()
			r.logger.Warn().
				Str("job_id", jobID).
				Int("retry_count", attempt+1).
				Str("failure_code", string(code)).
				Str("error", msg).
				Msg("pipeline: job_retry_scheduled")
			if err := r.store.Update(ctx, jobID, domain.JobPatch{
				RetryCount:  intPtr(attempt + 1),
				FailureCode: codePtr(code),
				Error:       strPtr(msg),
				Stage:       stagePtr(domain.StageRetryWait),
			}); err != nil {
				r.logger.Error().Err(err).Str("job_id", jobID).Msg("pipeline: retry update failed")
				return
			}
			r.sleep(ctx, backoff(attempt))
			if err := r.store.Update(ctx, jobID, domain.JobPatch{
				Status:      statusPtr(domain.JobStatusRunning),
				FailureCode: codePtr(""),
				Error:       strPtr(""),
				Stage:       stagePtr(domain.StageSpec),
			}); err != nil {
				r.logger.Error().Err(err).Str("job_id", jobID).Msg("pipeline: resume update failed")
				return
			}
			continue
		}

		r.collector.JobFailed(string(code))
		if err := r.store.Update(ctx, jobID, domain.JobPatch{
			Status:      statusPtr(domain.JobStatusFailed),
			RetryCount:  intPtr(attempt),
			FailureCode: codePtr(code),
			Error:       strPtr(msg),
			Stage:       stagePtr(domain.StageDone),
		}); err != nil {
			r.logger.Error().Err(err).Str("job_id", jobID).Msg("pipeline: failure update failed")
		}
		r.logger.Error().
			Str("job_id", jobID).
			Int("retry_count", attempt).
			Str("failure_code", string(code)).
			Str("error", msg).
			Msg("pipeline: job_failed")
		return
	}
}

func (r *Runner) runPipeline(ctx context.Context, job *domain.Job, attempt int) error {
	calls := append([]domain.ProviderCallMeta(nil), job.ProviderMeta.Calls...)

	var spec *domain.HouseSpec
	if job.ProviderMeta.ReuseSpec && job.ParentJobID != "" {
		parentSpec, err := r.reuseParentSpec(ctx, job.ParentJobID)
		if err != nil {
			return err
		}
		spec = parentSpec
		calls = append(calls, domain.ProviderCallMeta{
			Provider:  "reuse",
			Model:     "parent_house_spec",
			RequestID: job.ParentJobID,
		})
	} else {
		generated, meta, err := r.gen.GenerateHouseSpec(ctx, genai.SpecRequest{
			Prompt:    job.Prompt,
			Bedrooms:  job.Bedrooms,
			Bathrooms: job.Bathrooms,
			Style:     job.Style,
		})
		r.collector.ProviderCall(meta.Provider)
		if err != nil {
			return err
		}
		spec = generated
		calls = append(calls, meta)
	}

	if err := spec.Validate(job.Bedrooms, job.Bathrooms); err != nil {
		return err
	}

	if err := r.store.Update(ctx, job.ID, domain.JobPatch{Stage: stagePtr(domain.StagePlan)}); err != nil {
		return err
	}
	plan := layout.GeneratePlanGraph(spec)
	warnings := plan.Warnings

	if err := r.store.Update(ctx, job.ID, domain.JobPatch{
		Warnings: warnings,
		Stage:    stagePtr(domain.StageRender),
	}); err != nil {
		return err
	}

	specJSON, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal house spec: %w", err)
	}
	if err := r.writeArtifact(ctx, job.ID, domain.ArtifactSpecJSON, "application/json",
		fmt.Sprintf("artifacts/%s/spec.json", job.ID), specJSON); err != nil {
		return err
	}
	svg := []byte(layout.RenderPlanSVG(plan, layout.DefaultPxPerFt))
	if err := r.writeArtifact(ctx, job.ID, domain.ArtifactPlanSVG, "image/svg+xml",
		fmt.Sprintf("artifacts/%s/plan.svg", job.ID), svg); err != nil {
		return err
	}

	if job.WantExteriorImage {
		if err := r.store.Update(ctx, job.ID, domain.JobPatch{Stage: stagePtr(domain.StageImage)}); err != nil {
			return err
		}
		image, err := r.gen.GenerateExteriorImage(ctx, genai.ImageRequest{
			Prompt: job.Prompt,
			Style:  job.Style,
		})
		if err != nil {
			return err
		}
		// nil means the provider is not configured for imagery; skip.
		if image != nil {
			r.collector.ProviderCall(image.Meta.Provider)
			calls = append(calls, image.Meta)
			ext := "jpg"
			if strings.Contains(image.MimeType, "png") {
				ext = "png"
			}
			if err := r.writeArtifact(ctx, job.ID, domain.ArtifactExteriorImage, image.MimeType,
				fmt.Sprintf("artifacts/%s/exterior.%s", job.ID, ext), image.Data); err != nil {
				return err
			}
		}
	}

	meta := job.ProviderMeta
	meta.Calls = calls
	return r.store.Update(ctx, job.ID, domain.JobPatch{
		Status:       statusPtr(domain.JobStatusSucceeded),
		RetryCount:   intPtr(attempt),
		FailureCode:  codePtr(""),
		Error:        strPtr(""),
		ProviderMeta: &meta,
		HouseSpec:    spec,
		PlanGraph:    plan,
		Warnings:     warnings,
		Stage:        stagePtr(domain.StageDone),
	})
}

// reuseParentSpec fetches the stored spec of the parent job. Reuse chains
// deeper than one level are rejected: a parent whose own spec was reused
// cannot be reused again.
func (r *Runner) reuseParentSpec(ctx context.Context, parentJobID string) (*domain.HouseSpec, error) {
	parent, err := r.store.Get(ctx, parentJobID)
	if err != nil || parent.HouseSpec == nil {
		return nil, domain.ValidationError("reuse_spec_unavailable")
	}
	if parent.ProviderMeta.ReuseSpec {
		return nil, domain.ValidationError("reuse_spec_chain")
	}
	return parent.HouseSpec, nil
}

func (r *Runner) writeArtifact(ctx context.Context, jobID, artifactID, mimeType, path string, data []byte) error {
	savedPath, err := r.blobs.Save(ctx, path, data, mimeType)
	if err != nil {
		return fmt.Errorf("save artifact %s: %w", artifactID, err)
	}
	sum := sha256.Sum256(data)
	now := time.Now().UTC()
	return r.store.SaveArtifact(ctx, jobID, &domain.Artifact{
		ID:             artifactID,
		Type:           artifactID,
		MimeType:       mimeType,
		StoragePath:    savedPath,
		ChecksumSHA256: hex.EncodeToString(sum[:]),
		SizeBytes:      int64(len(data)),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func backoff(attempt int) time.Duration {
	d := backoffBase << attempt
	if d > backoffCap || d <= 0 {
		return backoffCap
	}
	return d
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func stagePtr(v domain.JobStage) *domain.JobStage { return &v }

func statusPtr(v domain.JobStatus) *domain.JobStatus { return &v }

func codePtr(v domain.FailureCode) *domain.FailureCode { return &v }
