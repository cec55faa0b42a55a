// Package client is a typed HTTP client for the jobpilot API.
// Server error codes come back as the matching domain error types.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/jobpilot/internal/domain"
	"github.com/timmy/jobpilot/internal/service"
)

// DefaultBaseURL is the local API server.
const DefaultBaseURL = "http://localhost:8080"

// Config holds client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the jobpilot HTTP API.
type Client struct {
	http *resty.Client
}

// New creates a new API client.
// Parameters:
//   - cfg: base URL and timeout; zero values use defaults.
// Returns:
//   - *Client: initialized client.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	h := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	return &Client{http: h}
}

// APIError is a non-2xx response. Err holds the matching domain error.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: HTTP %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// target describes the request so errors can be typed precisely.
type target struct {
	resource string
	id       string
	status   string
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx).SetError(&errorBody{})
}

func (c *Client) check(resp *resty.Response, err error, t target) error {
	if err != nil {
		return fmt.Errorf("request %s failed: %w", t.resource, err)
	}
	if !resp.IsError() {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode(), Message: strings.TrimSpace(string(resp.Body()))}
	if body, ok := resp.Error().(*errorBody); ok && body.Code != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
	}

	switch apiErr.Code {
	case domain.CodeNotFound:
		apiErr.Err = &domain.NotFoundError{Resource: t.resource, ID: t.id}
	case domain.CodeInvalidStatus:
		apiErr.Err = &domain.InvalidStatusError{Status: t.status}
	case domain.CodeBadRequest:
		apiErr.Err = &domain.ValidationError{Message: apiErr.Message}
	case domain.CodePersistenceFailure:
		apiErr.Err = &domain.PersistenceError{Op: t.resource, Err: errors.New(apiErr.Message)}
	case domain.CodeAgentFailure:
		apiErr.Err = &domain.AgentError{Message: apiErr.Message}
	case domain.CodeStorageFailure:
		apiErr.Err = &domain.StorageError{Op: t.resource, Err: errors.New(apiErr.Message)}
	}
	return apiErr
}

// Health reports whether the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.request(ctx).Get("/health")
	return c.check(resp, err, target{resource: "health"})
}

// Sources lists the server's job sources.
func (c *Client) Sources(ctx context.Context) ([]service.SourceInfo, error) {
	var out struct {
		Sources []service.SourceInfo `json:"sources"`
	}
	resp, err := c.request(ctx).SetResult(&out).Get("/api/v1/sources")
	if err := c.check(resp, err, target{resource: "sources"}); err != nil {
		return nil, err
	}
	return out.Sources, nil
}

// SearchJobs runs an aggregated job search.
func (c *Client) SearchJobs(ctx context.Context, req *service.SearchRequest) (*service.SearchResponse, error) {
	params := map[string]string{
		"keywords": req.Keywords,
		"location": req.Location,
	}
	if req.RemoteOnly {
		params["remote_only"] = "true"
	}
	if req.Limit > 0 {
		params["limit"] = strconv.Itoa(req.Limit)
	}

	var out service.SearchResponse
	resp, err := c.request(ctx).SetQueryParams(params).SetResult(&out).Get("/api/v1/jobs/search")
	if err := c.check(resp, err, target{resource: "job search"}); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListJobs lists saved jobs.
func (c *Client) ListJobs(ctx context.Context, limit int) ([]domain.SavedJob, error) {
	var out struct {
		Jobs []domain.SavedJob `json:"jobs"`
	}
	r := c.request(ctx).SetResult(&out)
	if limit > 0 {
		r.SetQueryParam("limit", strconv.Itoa(limit))
	}
	resp, err := r.Get("/api/v1/jobs")
	if err := c.check(resp, err, target{resource: "job"}); err != nil {
		return nil, err
	}
	return out.Jobs, nil
}

// ListApplications lists applications, optionally filtered by status.
func (c *Client) ListApplications(ctx context.Context, status string) ([]domain.Application, error) {
	var out struct {
		Applications []domain.Application `json:"applications"`
	}
	r := c.request(ctx).SetResult(&out)
	if status != "" {
		r.SetQueryParam("status", status)
	}
	resp, err := r.Get("/api/v1/applications")
	if err := c.check(resp, err, target{resource: "application", status: status}); err != nil {
		return nil, err
	}
	return out.Applications, nil
}

// GetApplication fetches one application with its events.
func (c *Client) GetApplication(ctx context.Context, id string) (*domain.Application, error) {
	var out domain.Application
	resp, err := c.request(ctx).SetResult(&out).SetPathParam("id", id).Get("/api/v1/applications/{id}")
	if err := c.check(resp, err, target{resource: "application", id: id}); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateApplication saves a job as an application.
func (c *Client) CreateApplication(ctx context.Context, req *service.CreateApplicationRequest) (*domain.Application, error) {
	var out domain.Application
	resp, err := c.request(ctx).SetBody(req).SetResult(&out).Post("/api/v1/applications")
	if err := c.check(resp, err, target{resource: "job", id: req.JobID}); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateApplication applies a partial update.
func (c *Client) UpdateApplication(ctx context.Context, id string, req *service.UpdateApplicationRequest) (*domain.Application, error) {
	t := target{resource: "application", id: id}
	if req != nil && req.Status != nil {
		t.status = *req.Status
	}
	var out domain.Application
	resp, err := c.request(ctx).
		SetPathParam("id", id).
		SetBody(req).
		SetResult(&out).
		Patch("/api/v1/applications/{id}")
	if err := c.check(resp, err, t); err != nil {
		return nil, err
	}
	return &out, nil
}

// TransitionApplication moves an application to status.
func (c *Client) TransitionApplication(ctx context.Context, id string, status domain.ApplicationStatus) (*domain.Application, error) {
	raw := string(status)
	return c.UpdateApplication(ctx, id, &service.UpdateApplicationRequest{Status: &raw})
}

// Summary returns per-status counts.
func (c *Client) Summary(ctx context.Context) (*service.ApplicationSummary, error) {
	var out service.ApplicationSummary
	resp, err := c.request(ctx).SetResult(&out).Get("/api/v1/applications/summary")
	if err := c.check(resp, err, target{resource: "summary"}); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListResumes lists uploaded resumes.
func (c *Client) ListResumes(ctx context.Context) ([]domain.Resume, error) {
	var out struct {
		Resumes []domain.Resume `json:"resumes"`
	}
	resp, err := c.request(ctx).SetResult(&out).Get("/api/v1/resumes")
	if err := c.check(resp, err, target{resource: "resume"}); err != nil {
		return nil, err
	}
	return out.Resumes, nil
}

// UploadResume uploads a resume file; it becomes the primary resume.
func (c *Client) UploadResume(ctx context.Context, filename string, r io.Reader) (*domain.Resume, error) {
	var out domain.Resume
	resp, err := c.request(ctx).
		SetFileReader("file", filename, r).
		SetResult(&out).
		Post("/api/v1/resumes/upload")
	if err := c.check(resp, err, target{resource: "resume"}); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunAgent forwards an action to the agent through the server.
func (c *Client) RunAgent(ctx context.Context, req *service.AgentRunRequest) (*service.AgentRunResponse, error) {
	var out service.AgentRunResponse
	resp, err := c.request(ctx).SetBody(req).SetResult(&out).Post("/api/v1/agent/run")
	if err := c.check(resp, err, target{resource: "agent"}); err != nil {
		return nil, err
	}
	return &out, nil
}
