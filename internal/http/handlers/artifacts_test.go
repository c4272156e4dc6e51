package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"testing"

	"drafted/internal/domain"
)

func seedSucceededJob(t *testing.T, app *App) {
	t.Helper()
	ctx := context.Background()
	if err := app.Jobs.Create(ctx, &domain.Job{
		ID: "job-1", UID: "user-1", Prompt: "x",
		Status: domain.JobStatusSucceeded, Stage: domain.StageDone,
	}); err != nil {
		t.Fatal(err)
	}
	specPath, err := app.Blobs.Save(ctx, "artifacts/job-1/spec.json", []byte(`{"version":"1.0"}`), "application/json")
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Jobs.SaveArtifact(ctx, "job-1", &domain.Artifact{
		ID: domain.ArtifactSpecJSON, MimeType: "application/json",
		StoragePath: specPath, ChecksumSHA256: "abc", SizeBytes: 17,
	}); err != nil {
		t.Fatal(err)
	}
	svgPath, err := app.Blobs.Save(ctx, "artifacts/job-1/plan.svg", []byte("<svg/>"), "image/svg+xml")
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Jobs.SaveArtifact(ctx, "job-1", &domain.Artifact{
		ID: domain.ArtifactPlanSVG, MimeType: "image/svg+xml",
		StoragePath: svgPath, ChecksumSHA256: "def", SizeBytes: 6,
	}); err != nil {
		t.Fatal(err)
	}
}

func TestListArtifacts(t *testing.T) {
	app, _ := newTestApp(t)
	seedSucceededJob(t, app)
	router := testRouter(app)

	w := doJSON(t, router, http.MethodGet, "/v1/jobs/job-1/artifacts", "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decodeJSON[map[string][]artifactDTO](t, w)
	if len(resp["artifacts"]) != 2 {
		t.Fatalf("expected 2 artifacts, got %+v", resp)
	}

	if w := doJSON(t, router, http.MethodGet, "/v1/jobs/job-1/artifacts", "intruder", nil); w.Code != http.StatusNotFound {
		t.Fatalf("other users should get 404, got %d", w.Code)
	}
}

func TestDownloadArtifact(t *testing.T) {
	app, _ := newTestApp(t)
	seedSucceededJob(t, app)
	router := testRouter(app)

	w := doJSON(t, router, http.MethodGet, "/v1/jobs/job-1/artifacts/spec_json", "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}
	if w.Body.String() != `{"version":"1.0"}` {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}

	if w := doJSON(t, router, http.MethodGet, "/v1/jobs/job-1/artifacts/nope", "user-1", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing artifact should be 404, got %d", w.Code)
	}
}

func TestExportJobBundlesArtifactsAndManifest(t *testing.T) {
	app, _ := newTestApp(t)
	seedSucceededJob(t, app)
	router := testRouter(app)

	w := doJSON(t, router, http.MethodGet, "/v1/jobs/job-1/export", "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "application/zip" {
		t.Fatalf("unexpected content type %q", got)
	}

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"spec.json", "plan.svg", "manifest.json"} {
		if !names[want] {
			t.Fatalf("archive missing %s, got %v", want, names)
		}
	}
}

func TestExportJobRequiresSuccess(t *testing.T) {
	app, store := newTestApp(t)
	router := testRouter(app)

	if err := store.Create(context.Background(), &domain.Job{
		ID: "queued", UID: "user-1", Prompt: "x",
		Status: domain.JobStatusQueued, Stage: domain.StageInit,
	}); err != nil {
		t.Fatal(err)
	}
	if w := doJSON(t, router, http.MethodGet, "/v1/jobs/queued/export", "user-1", nil); w.Code != http.StatusConflict {
		t.Fatalf("export of a non-succeeded job should be 409, got %d", w.Code)
	}
}

func TestSessionsLifecycle(t *testing.T) {
	app, store := newTestApp(t)
	router := testRouter(app)

	w := doJSON(t, router, http.MethodPost, "/v1/sessions", "user-1", map[string]any{"title": "Lake house"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	created := decodeJSON[sessionDTO](t, w)

	if err := store.Create(context.Background(), &domain.Job{
		ID: "job-1", UID: "user-1", SessionID: created.ID, Prompt: "x",
		Status: domain.JobStatusQueued, Stage: domain.StageInit,
	}); err != nil {
		t.Fatal(err)
	}

	w = doJSON(t, router, http.MethodGet, "/v1/sessions/"+created.ID, "user-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decodeJSON[struct {
		Session sessionDTO `json:"session"`
		Jobs    []jobDTO   `json:"jobs"`
	}](t, w)
	if resp.Session.Title != "Lake house" || len(resp.Jobs) != 1 {
		t.Fatalf("unexpected session detail: %+v", resp)
	}

	if w := doJSON(t, router, http.MethodGet, "/v1/sessions/"+created.ID, "intruder", nil); w.Code != http.StatusNotFound {
		t.Fatalf("other users should get 404, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/v1/sessions", "user-1", nil)
	list := decodeJSON[map[string][]sessionDTO](t, w)
	if len(list["sessions"]) != 1 {
		t.Fatalf("expected one session, got %+v", list)
	}
}
