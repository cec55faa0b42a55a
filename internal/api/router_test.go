package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/jobpilot/internal/api/handler"
	"github.com/timmy/jobpilot/internal/config"
	"github.com/timmy/jobpilot/internal/domain"
	"github.com/timmy/jobpilot/internal/logger"
	"github.com/timmy/jobpilot/internal/repository"
	"github.com/timmy/jobpilot/internal/service"
	"github.com/timmy/jobpilot/internal/source"
)

type stubSource struct {
	id     string
	remote bool
	jobs   []domain.Job
}

func (s *stubSource) GetSourceID() string    { return s.id }
func (s *stubSource) GetDisplayName() string { return s.id }
func (s *stubSource) RemoteCapable() bool    { return s.remote }
func (s *stubSource) Search(context.Context, source.Query) ([]domain.Job, error) {
	return s.jobs, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		AutoMigrate: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log := logger.GetDefault()
	sources := []source.Source{
		&stubSource{id: "af", jobs: []domain.Job{{Source: "af", SourceID: "1", Title: "Utvecklare", Company: "Volvo", Location: "Göteborg"}}},
		&stubSource{id: "rok", remote: true, jobs: []domain.Job{{Source: "rok", SourceID: "2", Title: "Go Dev", Company: "Acme", Location: "Remote", IsRemote: true}}},
	}
	apps := service.NewApplicationService(
		repository.NewApplicationRepository(db),
		repository.NewJobRepository(db),
		log,
		&service.ApplicationConfig{UniquePerJob: true},
	)
	svc := &Services{
		Search:       service.NewSearchService(sources, log, nil),
		Applications: apps,
		Resumes:      service.NewResumeService(repository.NewResumeRepository(db), nil, log),
		Agent:        service.NewAgentService(&service.AgentConfig{}, apps, log),
	}
	return SetupRouter(svc, &config.ServerConfig{Mode: "test"}, log)
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func TestHealthAndSources(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/sources", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Sources []service.SourceInfo `json:"sources"`
	}](t, w)
	require.Len(t, body.Sources, 2)
	assert.Equal(t, "af", body.Sources[0].ID)
}

func TestHealthChecks(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]handler.HealthCheck
		wantCode   int
		wantStatus string
	}{
		{"no checks", nil, http.StatusOK, "ok"},
		{"passing", map[string]handler.HealthCheck{"database": func(context.Context) error { return nil }}, http.StatusOK, "ok"},
		{"failing", map[string]handler.HealthCheck{
			"database": func(context.Context) error { return nil },
			"cache":    func(context.Context) error { return errors.New("connection refused") },
		}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := SetupRouter(&Services{HealthChecks: tc.checks}, &config.ServerConfig{Mode: "test"}, logger.GetDefault())
			w := do(t, r, http.MethodGet, "/health", nil)
			assert.Equal(t, tc.wantCode, w.Code)

			body := decode[struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}](t, w)
			assert.Equal(t, tc.wantStatus, body.Status)
			if tc.name == "failing" {
				assert.Equal(t, "connection refused", body.Checks["cache"])
				assert.Equal(t, "ok", body.Checks["database"])
			}
		})
	}
}

func TestJobSearch(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/jobs/search?keywords=go&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[service.SearchResponse](t, w)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "af", resp.Jobs[0].Source)

	w = do(t, r, http.MethodGet, "/api/v1/jobs/search?remote_only=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[service.SearchResponse](t, w)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "rok", resp.Jobs[0].Source)

	w = do(t, r, http.MethodGet, "/api/v1/jobs/search?limit=many", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplicationLifecycle(t *testing.T) {
	r := newTestRouter(t)

	job := domain.Job{Source: "rok", SourceID: "2", Title: "Go Dev", Company: "Acme", IsRemote: true}
	w := do(t, r, http.MethodPost, "/api/v1/applications", map[string]interface{}{"job": job})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[domain.Application](t, w)
	assert.Equal(t, domain.StatusSaved, created.Status)
	assert.Nil(t, created.AppliedAt)

	w = do(t, r, http.MethodPost, "/api/v1/applications", map[string]interface{}{"job": job})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, created.ID, decode[domain.Application](t, w).ID)

	w = do(t, r, http.MethodGet, "/api/v1/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]interface{}](t, w)["count"])

	w = do(t, r, http.MethodGet, "/api/v1/jobs/"+created.JobID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPatch, "/api/v1/applications/"+created.ID, map[string]string{"status": "applied", "notes": "via referral"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	moved := decode[domain.Application](t, w)
	assert.Equal(t, domain.StatusApplied, moved.Status)
	require.NotNil(t, moved.AppliedAt)

	w = do(t, r, http.MethodGet, "/api/v1/applications/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[domain.Application](t, w)
	require.Len(t, detail.Events, 1)
	assert.Equal(t, "saved", detail.Events[0].OldValue)
	assert.Equal(t, "applied", detail.Events[0].NewValue)
	assert.Equal(t, "via referral", detail.Events[0].Notes)

	w = do(t, r, http.MethodGet, "/api/v1/applications?status=applied", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]interface{}](t, w)["count"])

	w = do(t, r, http.MethodGet, "/api/v1/applications/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[service.ApplicationSummary](t, w)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.ByStatus[domain.StatusApplied])
}

func TestApplicationErrors(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/applications", map[string]string{"job_title": "Backend"})
	require.Equal(t, http.StatusCreated, w.Code)
	app := decode[domain.Application](t, w)

	tests := []struct {
		name       string
		method     string
		path       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"invalid status", http.MethodPatch, "/api/v1/applications/" + app.ID, map[string]string{"status": "hired"}, http.StatusBadRequest, domain.CodeInvalidStatus},
		{"empty patch", http.MethodPatch, "/api/v1/applications/" + app.ID, map[string]string{}, http.StatusBadRequest, domain.CodeBadRequest},
		{"unknown application", http.MethodGet, "/api/v1/applications/missing", nil, http.StatusNotFound, domain.CodeNotFound},
		{"unknown job", http.MethodGet, "/api/v1/jobs/missing", nil, http.StatusNotFound, domain.CodeNotFound},
		{"bad filter", http.MethodGet, "/api/v1/applications?status=archived", nil, http.StatusBadRequest, domain.CodeInvalidStatus},
		{"no primary resume", http.MethodGet, "/api/v1/resumes/primary", nil, http.StatusNotFound, domain.CodeNotFound},
		{"agent unconfigured", http.MethodPost, "/api/v1/agent/run", map[string]string{"action": "match_jobs"}, http.StatusBadGateway, domain.CodeAgentFailure},
		{"agent without action", http.MethodPost, "/api/v1/agent/run", map[string]string{}, http.StatusBadRequest, domain.CodeBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantCode, decode[errorBody](t, w).Code)
		})
	}

	w = do(t, r, http.MethodGet, "/api/v1/applications/"+app.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StatusSaved, decode[domain.Application](t, w).Status)
}

func TestResumeUploadWithoutStorage(t *testing.T) {
	r := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "cv.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.7"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, domain.CodeStorageFailure, decode[errorBody](t, w).Code)

	w = do(t, r, http.MethodPost, "/api/v1/resumes/upload", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/resumes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode[map[string]interface{}](t, w)["count"])

	w = do(t, r, http.MethodGet, "/api/v1/resumes/some-id/download", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
