package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"drafted/internal/domain"
)

type createSessionRequest struct {
	Title string `json:"title"`
}

type sessionDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toSessionDTO(s *domain.Session) sessionDTO {
	return sessionDTO{
		ID:        s.ID,
		Title:     s.Title,
		Status:    s.Status,
		CreatedAt: s.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		UpdatedAt: s.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Untitled design"
	}
	session := &domain.Session{
		ID:     uuid.NewString(),
		UID:    userID,
		Title:  title,
		Status: "active",
	}
	if err := a.Sessions.Create(r.Context(), session); err != nil {
		a.Logger.Error().Err(err).Msg("create session failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create session")
		return
	}
	a.json(w, http.StatusCreated, toSessionDTO(session))
}

// GetSession returns the session together with its jobs, newest first.
func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	sessionID := chi.URLParam(r, "session_id")
	session, err := a.Sessions.Get(r.Context(), sessionID)
	if err != nil || session.UID != userID {
		a.error(w, http.StatusNotFound, "not_found", "session not found")
		return
	}
	jobs, err := a.Jobs.ListBySession(r.Context(), userID, sessionID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list session jobs")
		return
	}
	jobDTOs := make([]jobDTO, 0, len(jobs))
	for _, job := range jobs {
		jobDTOs = append(jobDTOs, toJobDTO(job))
	}
	a.json(w, http.StatusOK, map[string]any{
		"session": toSessionDTO(session),
		"jobs":    jobDTOs,
	})
}

func (a *App) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	sessions, err := a.Sessions.ListByUID(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list sessions")
		return
	}
	out := make([]sessionDTO, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toSessionDTO(session))
	}
	a.json(w, http.StatusOK, map[string]any{"sessions": out})
}
