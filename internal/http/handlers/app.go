// Package handlers implements the HTTP API: sessions, job submission,
// job status and artifact retrieval.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"drafted/internal/domain"
	"drafted/internal/middleware"
)

// App bundles the dependencies every handler needs.
type App struct {
	Jobs      domain.JobStore
	Sessions  domain.SessionStore
	Blobs     domain.BlobStore
	Logger    zerolog.Logger
	JWTSecret string
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorResponse{Error: errCode, Message: message})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// jobDTO is the wire shape of a job document.
type jobDTO struct {
	ID              string                    `json:"id"`
	SessionID       string                    `json:"session_id,omitempty"`
	ParentJobID     string                    `json:"parent_job_id,omitempty"`
	Prompt          string                    `json:"prompt"`
	Bedrooms        int                       `json:"bedrooms"`
	Bathrooms       int                       `json:"bathrooms"`
	Style           string                    `json:"style"`
	Priority        string                    `json:"priority"`
	Status          string                    `json:"status"`
	Stage           string                    `json:"stage"`
	Error           string                    `json:"error,omitempty"`
	FailureCode     string                    `json:"failure_code,omitempty"`
	RetryCount      int                       `json:"retry_count"`
	Warnings        []string                  `json:"warnings,omitempty"`
	ProviderMeta    domain.ProviderMeta       `json:"provider_meta"`
	StageTimestamps map[string]string         `json:"stage_timestamps,omitempty"`
	HouseSpec       *domain.HouseSpec         `json:"house_spec,omitempty"`
	PlanGraph       *domain.PlanGraph         `json:"plan_graph,omitempty"`
	CreatedAt       string                    `json:"created_at"`
	UpdatedAt       string                    `json:"updated_at"`
}

func toJobDTO(job *domain.Job) jobDTO {
	return jobDTO{
		ID:              job.ID,
		SessionID:       job.SessionID,
		ParentJobID:     job.ParentJobID,
		Prompt:          job.Prompt,
		Bedrooms:        job.Bedrooms,
		Bathrooms:       job.Bathrooms,
		Style:           job.Style,
		Priority:        string(job.Priority),
		Status:          string(job.Status),
		Stage:           string(job.Stage),
		Error:           job.Error,
		FailureCode:     string(job.FailureCode),
		RetryCount:      job.RetryCount,
		Warnings:        job.Warnings,
		ProviderMeta:    job.ProviderMeta,
		StageTimestamps: job.StageTimestamps,
		HouseSpec:       job.HouseSpec,
		PlanGraph:       job.PlanGraph,
		CreatedAt:       job.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		UpdatedAt:       job.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// loadJobForUser fetches a job and enforces ownership.
func (a *App) loadJobForUser(r *http.Request, jobID, userID string) (*domain.Job, error) {
	job, err := a.Jobs.Get(r.Context(), jobID)
	if err != nil {
		return nil, err
	}
	if job.UID != userID {
		return nil, domain.ErrUnauthorized
	}
	return job, nil
}
