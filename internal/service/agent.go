package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/jobpilot/internal/domain"
	"github.com/timmy/jobpilot/internal/logger"
)

// Agent actions understood by the external agent.
const (
	AgentActionSearchJobs        = "search_jobs"
	AgentActionMatchJobs         = "match_jobs"
	AgentActionTailorApplication = "tailor_application"
	AgentActionUpdateApplication = "update_application"
	AgentActionResumeSuggestions = "resume_suggestions"
)

// Agent response statuses.
const (
	AgentStatusCompleted = "completed"
	AgentStatusFailed    = "failed"
)

// AgentConfig holds configuration for the agent client.
type AgentConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// AgentService bridges requests to the external AI agent.
type AgentService struct {
	client       *resty.Client
	endpoint     string
	applications *ApplicationService
	logger       *logger.Logger
}

// NewAgentService creates a new agent client.
// Parameters:
//   - cfg: agent endpoint settings; an empty BaseURL leaves the agent unconfigured.
//   - applications: optional; receives cover letters from tailor_application.
//   - log: logger instance.
// Returns:
//   - *AgentService: initialized service.
func NewAgentService(cfg *AgentConfig, applications *ApplicationService, log *logger.Logger) *AgentService {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	timeout := 60 * time.Second
	var endpoint string
	if cfg != nil {
		if cfg.APIKey != "" {
			client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
		}
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
		if cfg.BaseURL != "" {
			endpoint = strings.TrimSuffix(cfg.BaseURL, "/") + "/api/agent/run"
		}
	}
	client.SetTimeout(timeout)

	return &AgentService{
		client:       client,
		endpoint:     endpoint,
		applications: applications,
		logger:       log,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *AgentService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// IsConfigured reports whether an agent endpoint is set.
func (s *AgentService) IsConfigured() bool {
	return s.endpoint != ""
}

// AgentRunRequest asks the agent to perform one action.
type AgentRunRequest struct {
	Action string                 `json:"action" binding:"required"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// MatchScore rates one job against the user's resume.
type MatchScore struct {
	JobID         string   `json:"job_id"`
	JobTitle      string   `json:"job_title"`
	Company       string   `json:"company"`
	Score         float64  `json:"score"`
	Reasons       []string `json:"reasons,omitempty"`
	SkillsMatched []string `json:"skills_matched,omitempty"`
	SkillsMissing []string `json:"skills_missing,omitempty"`
}

// AgentResult is the agent's structured answer. Every field is optional.
type AgentResult struct {
	Action            string                 `json:"action,omitempty"`
	JobsFound         []domain.Job           `json:"jobs_found,omitempty"`
	MatchScores       []MatchScore           `json:"match_scores,omitempty"`
	CoverLetter       string                 `json:"cover_letter,omitempty"`
	ResumeSuggestions []string               `json:"resume_suggestions,omitempty"`
	ApplicationUpdate map[string]interface{} `json:"application_update,omitempty"`
	Error             string                 `json:"error,omitempty"`
}

// AgentRunResponse wraps an agent result with a completion status.
type AgentRunResponse struct {
	Status string       `json:"status"`
	Result *AgentResult `json:"result"`
}

// Run sends req to the agent and decodes its {status, result} envelope.
// A result carrying an error is returned with status failed and no Go error.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - req: action and parameters.
// Returns:
//   - *AgentRunResponse: agent outcome.
//   - error: *domain.ValidationError for a missing action, *domain.AgentError
//     for an unconfigured agent, transport failure, or non-2xx response.
func (s *AgentService) Run(ctx context.Context, req *AgentRunRequest) (*AgentRunResponse, error) {
	if req == nil || strings.TrimSpace(req.Action) == "" {
		return nil, &domain.ValidationError{Field: "action", Message: "is required"}
	}
	if !s.IsConfigured() {
		return nil, &domain.AgentError{Action: req.Action, Message: "agent is not configured"}
	}
	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldComponent: "agent",
		logger.FieldAction:    req.Action,
	})

	start := time.Now()
	var resp AgentRunResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		ForceContentType("application/json").
		Post(s.endpoint)
	if err != nil {
		return nil, &domain.AgentError{Action: req.Action, Message: "request failed", Err: err}
	}
	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		msg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if body := strings.TrimSpace(string(httpResp.Body())); body != "" {
			msg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), body)
		}
		return nil, &domain.AgentError{Action: req.Action, Message: msg}
	}
	if resp.Result == nil {
		resp.Result = &AgentResult{}
	}
	if resp.Result.Action == "" {
		resp.Result.Action = req.Action
	}
	switch {
	case resp.Result.Error != "":
		resp.Status = AgentStatusFailed
	case resp.Status == "":
		resp.Status = AgentStatusCompleted
	}

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).WithStatus(resp.Status).Info(ctx, "Agent run finished")

	if resp.Status == AgentStatusCompleted {
		s.storeCoverLetter(ctx, req, resp.Result)
	}
	return &resp, nil
}

// storeCoverLetter saves a tailored cover letter onto its application.
// Failures are logged; the agent result is still returned.
func (s *AgentService) storeCoverLetter(ctx context.Context, req *AgentRunRequest, result *AgentResult) {
	if s.applications == nil || req.Action != AgentActionTailorApplication || result.CoverLetter == "" {
		return
	}
	appID, _ := req.Params["application_id"].(string)
	if appID == "" {
		return
	}
	letter := result.CoverLetter
	if _, err := s.applications.Update(ctx, appID, &UpdateApplicationRequest{CoverLetter: &letter}); err != nil {
		s.log(ctx).WithError(err).WithField(logger.FieldApplicationID, appID).Warn("Failed to store cover letter")
	}
}
