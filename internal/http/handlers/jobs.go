package handlers

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"drafted/internal/domain"
)

const (
	defaultBedrooms  = 3
	defaultBathrooms = 2
	defaultStyle     = "modern_farmhouse"

	minCount = 1
	maxCount = 10

	maxPromptLen = 4000
)

type createJobRequest struct {
	SessionID         string `json:"session_id"`
	Prompt            string `json:"prompt"`
	Bedrooms          int    `json:"bedrooms"`
	Bathrooms         int    `json:"bathrooms"`
	Style             string `json:"style"`
	WantExteriorImage bool   `json:"want_exterior_image"`
	Priority          string `json:"priority"`
	IdempotencyKey    string `json:"idempotency_key"`
}

type createJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Stage  string `json:"stage"`
}

// CreateJob enqueues a design job. With an idempotency key the job id is
// derived from (uid, session, key): replays return the original job, and
// a replay whose request body differs is rejected.
func (a *App) CreateJob(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}
	if len(req.Prompt) > maxPromptLen {
		req.Prompt = req.Prompt[:maxPromptLen]
	}
	req.Bedrooms = clampCount(req.Bedrooms, defaultBedrooms)
	req.Bathrooms = clampCount(req.Bathrooms, defaultBathrooms)
	if strings.TrimSpace(req.Style) == "" {
		req.Style = defaultStyle
	}
	priority := domain.PriorityNormal
	if req.Priority == string(domain.PriorityHigh) {
		priority = domain.PriorityHigh
	}
	if req.SessionID != "" {
		session, err := a.Sessions.Get(r.Context(), req.SessionID)
		if err != nil || session.UID != userID {
			a.error(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
	}

	if key := r.Header.Get("Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}
	requestHash := hashCreateRequest(req)

	jobID := uuid.NewString()
	if req.IdempotencyKey != "" {
		jobID = idempotentJobID(userID, req.SessionID, req.IdempotencyKey)
	}

	job := &domain.Job{
		ID:                jobID,
		UID:               userID,
		SessionID:         req.SessionID,
		Prompt:            req.Prompt,
		Bedrooms:          req.Bedrooms,
		Bathrooms:         req.Bathrooms,
		Style:             req.Style,
		WantExteriorImage: req.WantExteriorImage,
		IdempotencyKey:    req.IdempotencyKey,
		RequestHash:       requestHash,
		Priority:          priority,
		Status:            domain.JobStatusQueued,
		Stage:             domain.StageInit,
	}
	if err := a.Jobs.Create(r.Context(), job); err != nil {
		if err == domain.ErrDuplicateJob {
			existing, getErr := a.Jobs.Get(r.Context(), jobID)
			if getErr != nil {
				a.error(w, http.StatusInternalServerError, "internal", "failed to load existing job")
				return
			}
			if existing.RequestHash != requestHash {
				a.error(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different request")
				return
			}
			a.json(w, http.StatusOK, createJobResponse{
				JobID:  existing.ID,
				Status: string(existing.Status),
				Stage:  string(existing.Stage),
			})
			return
		}
		a.Logger.Error().Err(err).Msg("create job failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue job")
		return
	}
	a.json(w, http.StatusAccepted, createJobResponse{
		JobID:  job.ID,
		Status: string(job.Status),
		Stage:  string(job.Stage),
	})
}

// GetJob returns the full job document.
func (a *App) GetJob(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobID := chi.URLParam(r, "job_id")
	job, err := a.loadJobForUser(r, jobID, userID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	a.json(w, http.StatusOK, toJobDTO(job))
}

// ListJobs returns the caller's recent jobs.
func (a *App) ListJobs(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobs, err := a.Jobs.ListByUID(r.Context(), userID, 50)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list jobs")
		return
	}
	out := make([]jobDTO, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toJobDTO(job))
	}
	a.json(w, http.StatusOK, map[string]any{"jobs": out})
}

type regenerateRequest struct {
	Prompt    string `json:"prompt"`
	ReuseSpec bool   `json:"reuse_spec"`
}

// RegenerateJob enqueues a follow-up job derived from an existing one.
// With reuse_spec the parent must have succeeded; its stored spec is
// reused instead of calling the provider again.
func (a *App) RegenerateJob(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	parentID := chi.URLParam(r, "job_id")
	parent, err := a.loadJobForUser(r, parentID, userID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	var req regenerateRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.ReuseSpec {
		if parent.Status != domain.JobStatusSucceeded || parent.HouseSpec == nil {
			a.error(w, http.StatusConflict, "conflict", "parent job has no reusable spec")
			return
		}
		if parent.ProviderMeta.ReuseSpec {
			a.error(w, http.StatusConflict, "conflict", "parent spec was itself reused")
			return
		}
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = parent.Prompt
	}

	job := &domain.Job{
		ID:                uuid.NewString(),
		UID:               userID,
		SessionID:         parent.SessionID,
		ParentJobID:       parent.ID,
		Prompt:            prompt,
		Bedrooms:          parent.Bedrooms,
		Bathrooms:         parent.Bathrooms,
		Style:             parent.Style,
		WantExteriorImage: parent.WantExteriorImage,
		Priority:          parent.Priority,
		Status:            domain.JobStatusQueued,
		Stage:             domain.StageInit,
		ProviderMeta: domain.ProviderMeta{
			ReuseSpec:            req.ReuseSpec,
			RegeneratedFromJobID: parent.ID,
		},
	}
	if err := a.Jobs.Create(r.Context(), job); err != nil {
		a.Logger.Error().Err(err).Msg("regenerate job failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue job")
		return
	}
	a.json(w, http.StatusAccepted, createJobResponse{
		JobID:  job.ID,
		Status: string(job.Status),
		Stage:  string(job.Stage),
	})
}

func clampCount(n, fallback int) int {
	if n == 0 {
		n = fallback
	}
	if n < minCount {
		return minCount
	}
	if n > maxCount {
		return maxCount
	}
	return n
}

// idempotentJobID derives a stable job id so a retried create maps onto
// the same document.
func idempotentJobID(uid, sessionID, key string) string {
	sum := sha1.Sum([]byte(uid + ":" + sessionID + ":" + key))
	return "idemp_" + hex.EncodeToString(sum[:])[:32]
}

// hashCreateRequest canonicalizes the request fields that define the
// work, excluding the idempotency key itself.
func hashCreateRequest(req createJobRequest) string {
	canonical := fmt.Sprintf("%s|%s|%d|%d|%s|%t|%s",
		req.SessionID, req.Prompt, req.Bedrooms, req.Bathrooms,
		req.Style, req.WantExteriorImage, req.Priority)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
