package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"drafted/internal/domain"
	"drafted/pkg/zip"
)

type artifactDTO struct {
	ID             string `json:"id"`
	MimeType       string `json:"mime_type"`
	ChecksumSHA256 string `json:"checksum_sha256"`
	SizeBytes      int64  `json:"size_bytes"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

func toArtifactDTO(a *domain.Artifact) artifactDTO {
	return artifactDTO{
		ID:             a.ID,
		MimeType:       a.MimeType,
		ChecksumSHA256: a.ChecksumSHA256,
		SizeBytes:      a.SizeBytes,
		CreatedAt:      a.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		UpdatedAt:      a.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

func (a *App) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobID := chi.URLParam(r, "job_id")
	if _, err := a.loadJobForUser(r, jobID, userID); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	artifacts, err := a.Jobs.ListArtifacts(r.Context(), jobID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list artifacts")
		return
	}
	out := make([]artifactDTO, 0, len(artifacts))
	for _, artifact := range artifacts {
		out = append(out, toArtifactDTO(artifact))
	}
	a.json(w, http.StatusOK, map[string]any{"artifacts": out})
}

// DownloadArtifact streams one artifact's bytes with its stored mime type.
func (a *App) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobID := chi.URLParam(r, "job_id")
	artifactID := chi.URLParam(r, "artifact_id")
	if _, err := a.loadJobForUser(r, jobID, userID); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	artifact, err := a.Jobs.GetArtifact(r.Context(), jobID, artifactID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "artifact not found")
		return
	}
	data, err := a.Blobs.Read(r.Context(), artifact.StoragePath)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Str("artifact_id", artifactID).Msg("artifact read failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to read artifact")
		return
	}
	w.Header().Set("Content-Type", artifact.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(artifact.StoragePath)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ExportJob bundles every artifact plus a manifest into one zip.
func (a *App) ExportJob(w http.ResponseWriter, r *http.Request) {
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
	if job.Status != domain.JobStatusSucceeded {
		a.error(w, http.StatusConflict, "conflict", "job has not succeeded")
		return
	}
	artifacts, err := a.Jobs.ListArtifacts(r.Context(), jobID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list artifacts")
		return
	}

	var assets []zip.Asset
	manifest := map[string]any{
		"job_id":    job.ID,
		"prompt":    job.Prompt,
		"style":     job.Style,
		"status":    string(job.Status),
		"warnings":  job.Warnings,
		"artifacts": []artifactDTO{},
	}
	manifestArtifacts := make([]artifactDTO, 0, len(artifacts))
	for _, artifact := range artifacts {
		data, err := a.Blobs.Read(r.Context(), artifact.StoragePath)
		if err != nil {
			a.Logger.Error().Err(err).Str("artifact_id", artifact.ID).Msg("artifact read failed during export")
			a.error(w, http.StatusInternalServerError, "internal", "failed to read artifact")
			return
		}
		assets = append(assets, zip.Asset{
			Filename: path.Base(artifact.StoragePath),
			MIME:     artifact.MimeType,
			Data:     data,
		})
		manifestArtifacts = append(manifestArtifacts, toArtifactDTO(artifact))
	}
	manifest["artifacts"] = manifestArtifacts
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build manifest")
		return
	}
	assets = append(assets, zip.Asset{
		Filename: "manifest.json",
		MIME:     "application/json",
		Data:     manifestJSON,
	})

	archive, err := zip.ArchiveAssets(assets)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", job.ID+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
