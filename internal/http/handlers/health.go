package handlers

import "net/http"

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Stats reports job counts by status.
func (a *App) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := a.Jobs.CountByStatus(r.Context())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to count jobs")
		return
	}
	out := make(map[string]int, len(counts))
	for status, n := range counts {
		out[string(status)] = n
	}
	a.json(w, http.StatusOK, map[string]any{"jobs_by_status": out})
}
