package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/jobpilot/internal/domain"
	"github.com/timmy/jobpilot/internal/logger"
	"github.com/timmy/jobpilot/internal/source"
)

// ApplicationStore persists applications and their event log.
// Lookups of unknown ids return *domain.NotFoundError.
type ApplicationStore interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	// FindByJobID returns the oldest application for jobID, or nil when none exists.
	FindByJobID(ctx context.Context, jobID string) (*domain.Application, error)
	// List returns applications ordered by updated_at descending; nil status means all.
	List(ctx context.Context, status *domain.ApplicationStatus) ([]domain.Application, error)
	// Update applies mutate to the stored application and appends the event
	// it returns, when non-nil, in one transaction.
	Update(ctx context.Context, id string, mutate func(app *domain.Application) *domain.ApplicationEvent) (*domain.Application, error)
	// ListEvents returns events oldest first.
	ListEvents(ctx context.Context, applicationID string) ([]domain.ApplicationEvent, error)
}

// JobStore persists jobs that applications were created from.
type JobStore interface {
	// SaveIfAbsent inserts job unless (source, source_key) exists and returns the stored row.
	SaveIfAbsent(ctx context.Context, job *domain.SavedJob) (*domain.SavedJob, error)
	GetByID(ctx context.Context, id string) (*domain.SavedJob, error)
	List(ctx context.Context, limit int) ([]domain.SavedJob, error)
}

// ApplicationConfig holds configuration for the application service.
type ApplicationConfig struct {
	// UniquePerJob returns the existing application when a job is saved twice.
	UniquePerJob bool
}

// ApplicationOption customizes an ApplicationService.
type ApplicationOption func(*ApplicationService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) ApplicationOption {
	return func(s *ApplicationService) {
		s.now = now
	}
}

// ApplicationService owns the application status pipeline.
type ApplicationService struct {
	apps         ApplicationStore
	jobs         JobStore
	logger       *logger.Logger
	uniquePerJob bool
	now          func() time.Time

	// createMu serializes the find-then-insert of the unique-per-job policy.
	createMu sync.Mutex
}

// NewApplicationService creates a new application service.
// Parameters:
//   - apps: application store.
//   - jobs: saved job store.
//   - log: logger instance.
//   - cfg: policy settings; nil means unique per job.
//   - opts: optional overrides such as WithClock.
//
// Returns:
//   - *ApplicationService: initialized service.
func NewApplicationService(apps ApplicationStore, jobs JobStore, log *logger.Logger, cfg *ApplicationConfig, opts ...ApplicationOption) *ApplicationService {
	s := &ApplicationService{
		apps:         apps,
		jobs:         jobs,
		logger:       log,
		uniquePerJob: true,
		now:          time.Now,
	}
	if cfg != nil {
		s.uniquePerJob = cfg.UniquePerJob
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *ApplicationService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// CreateApplicationRequest saves a job as an application.
// Job, when present, is persisted and takes precedence over JobID.
type CreateApplicationRequest struct {
	JobID          string      `json:"job_id"`
	JobTitle       string      `json:"job_title"`
	Company        string      `json:"company"`
	JobDescription string      `json:"job_description"`
	Job            *domain.Job `json:"job,omitempty"`
}

// UpdateApplicationRequest is a partial update; nil fields are left alone.
// An empty CoverLetter or Notes clears the field. With Status set, Notes is
// also recorded on the status change event.
type UpdateApplicationRequest struct {
	Status      *string `json:"status,omitempty"`
	CoverLetter *string `json:"cover_letter,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (r *UpdateApplicationRequest) empty() bool {
	return r == nil || (r.Status == nil && r.CoverLetter == nil && r.Notes == nil)
}

// ApplicationSummary counts applications per status.
type ApplicationSummary struct {
	Total    int                              `json:"total"`
	ByStatus map[domain.ApplicationStatus]int `json:"by_status"`
}

// Create saves a job as a new application in the saved status.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - req: job reference or payload plus display fields.
// Returns:
//   - *domain.Application: the new application, or the existing one when
//     the job was already saved and the unique-per-job policy is on.
//   - error: *domain.NotFoundError for an unknown job id without a title,
//     *domain.PersistenceError when the store fails.
func (s *ApplicationService) Create(ctx context.Context, req *CreateApplicationRequest) (*domain.Application, error) {
	if req == nil {
		return nil, &domain.ValidationError{Message: "request body is required"}
	}
	ctx = logger.SetComponent(ctx, "applications")

	jobID := strings.TrimSpace(req.JobID)
	title := strings.TrimSpace(req.JobTitle)
	company := strings.TrimSpace(req.Company)
	description := req.JobDescription

	var job *domain.SavedJob
	switch {
	case req.Job != nil:
		saved, err := s.saveJob(ctx, req.Job)
		if err != nil {
			return nil, err
		}
		job = saved
	case jobID != "":
		saved, err := s.jobs.GetByID(ctx, jobID)
		if err != nil {
			var nf *domain.NotFoundError
			if !errors.As(err, &nf) {
				return nil, storeErr("get job", err)
			}
			if title == "" {
				return nil, err
			}
		}
		job = saved
	}
	if job != nil {
		jobID = job.ID
		title = source.FirstNonEmpty(job.Title, title)
		company = source.FirstNonEmpty(job.Company, company)
		if description == "" {
			description = job.Description
		}
	}

	if s.uniquePerJob && jobID != "" {
		s.createMu.Lock()
		defer s.createMu.Unlock()
		existing, err := s.apps.FindByJobID(ctx, jobID)
		if err != nil {
			return nil, storeErr("find application", err)
		}
		if existing != nil {
			s.log(ctx).WithField(logger.FieldApplicationID, existing.ID).Debug("Job already saved, returning existing application")
			return existing, nil
		}
	}

	now := s.now()
	app := &domain.Application{
		ID:             uuid.NewString(),
		JobID:          jobID,
		JobTitle:       source.FirstNonEmpty(domain.DefaultJobTitle, title),
		Company:        source.FirstNonEmpty(domain.DefaultCompany, company),
		JobDescription: description,
		Status:         domain.StatusSaved,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, storeErr("create application", err)
	}

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldApplicationID: app.ID,
		"job_id":                  app.JobID,
	}).Info("Application saved")
	return app, nil
}

// saveJob persists a search result, deduplicated by source and source key.
func (s *ApplicationService) saveJob(ctx context.Context, job *domain.Job) (*domain.SavedJob, error) {
	record := domain.NewSavedJob(job)
	record.ID = uuid.NewString()
	record.SourceKey = source.FirstNonEmpty(record.ID, job.SourceID, job.URL)
	if record.Source == "" {
		record.Source = "manual"
	}
	saved, err := s.jobs.SaveIfAbsent(ctx, record)
	if err != nil {
		return nil, storeErr("save job", err)
	}
	return saved, nil
}

// Transition moves an application to a new status and records the change.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: application id.
//   - status: raw target status, validated before anything is read.
//   - notes: free text stored on the event.
// Returns:
//   - *domain.Application: the updated application.
//   - error: *domain.InvalidStatusError, *domain.NotFoundError, or
//     *domain.PersistenceError.
func (s *ApplicationService) Transition(ctx context.Context, id, status, notes string) (*domain.Application, error) {
	next, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	ctx = logger.SetApplicationID(ctx, id)

	var event *domain.ApplicationEvent
	app, err := s.apps.Update(ctx, id, func(app *domain.Application) *domain.ApplicationEvent {
		event = s.applyStatus(app, next, notes)
		return event
	})
	if err != nil {
		return nil, storeErr("update application", err)
	}

	s.log(ctx).WithFields(logger.Fields{
		"from": event.OldValue,
		"to":   event.NewValue,
	}).Info("Application status changed")
	return app, nil
}

// Update applies a partial update. A status change behaves like Transition;
// field-only updates record no event.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: application id.
//   - req: fields to change; at least one must be set.
// Returns:
//   - *domain.Application: the updated application.
//   - error: *domain.ValidationError for an empty request, otherwise as Transition.
func (s *ApplicationService) Update(ctx context.Context, id string, req *UpdateApplicationRequest) (*domain.Application, error) {
	if req.empty() {
		return nil, &domain.ValidationError{Message: "at least one of status, cover_letter, notes is required"}
	}
	var next domain.ApplicationStatus
	if req.Status != nil {
		parsed, err := domain.ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		next = parsed
	}
	ctx = logger.SetApplicationID(ctx, id)

	var event *domain.ApplicationEvent
	app, err := s.apps.Update(ctx, id, func(app *domain.Application) *domain.ApplicationEvent {
		if req.CoverLetter != nil {
			app.CoverLetter = optional(*req.CoverLetter)
		}
		if req.Notes != nil {
			app.Notes = optional(*req.Notes)
		}
		if req.Status == nil {
			app.UpdatedAt = s.stamp(app.UpdatedAt)
			return nil
		}
		var notes string
		if req.Notes != nil {
			notes = *req.Notes
		}
		event = s.applyStatus(app, next, notes)
		return event
	})
	if err != nil {
		return nil, storeErr("update application", err)
	}
	s.log(ctx).WithField("status_changed", event != nil).Info("Application updated")
	return app, nil
}

// applyStatus mutates app for a move to next and returns the event to append.
func (s *ApplicationService) applyStatus(app *domain.Application, next domain.ApplicationStatus, notes string) *domain.ApplicationEvent {
	prev := app.Status
	at := s.stamp(app.UpdatedAt)

	app.Status = next
	app.UpdatedAt = at
	if next == domain.StatusApplied && app.AppliedAt == nil {
		appliedAt := at
		app.AppliedAt = &appliedAt
	}

	return &domain.ApplicationEvent{
		ID:            uuid.Must(uuid.NewV7()).String(),
		ApplicationID: app.ID,
		EventType:     domain.EventTypeStatusChange,
		OldValue:      string(prev),
		NewValue:      string(next),
		Notes:         notes,
		CreatedAt:     at,
	}
}

// stamp returns the current time, never earlier than prev.
func (s *ApplicationService) stamp(prev time.Time) time.Time {
	now := s.now()
	if now.Before(prev) {
		return prev
	}
	return now
}

// Get returns an application with its events, oldest first.
func (s *ApplicationService) Get(ctx context.Context, id string) (*domain.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get application", err)
	}
	events, err := s.apps.ListEvents(ctx, id)
	if err != nil {
		return nil, storeErr("list events", err)
	}
	app.Events = events
	return app, nil
}

// List returns applications, most recently updated first.
// An empty status lists everything; an unknown one is rejected.
func (s *ApplicationService) List(ctx context.Context, status string) ([]domain.Application, error) {
	var filter *domain.ApplicationStatus
	if strings.TrimSpace(status) != "" {
		parsed, err := domain.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &parsed
	}
	apps, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, storeErr("list applications", err)
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	return apps, nil
}

// Summary counts applications per status. Every status is present.
func (s *ApplicationService) Summary(ctx context.Context) (*ApplicationSummary, error) {
	apps, err := s.apps.List(ctx, nil)
	if err != nil {
		return nil, storeErr("list applications", err)
	}
	summary := &ApplicationSummary{
		Total:    len(apps),
		ByStatus: make(map[domain.ApplicationStatus]int, len(domain.AllStatuses())),
	}
	for _, st := range domain.AllStatuses() {
		summary.ByStatus[st] = 0
	}
	for _, app := range apps {
		summary.ByStatus[app.Status]++
	}
	return summary, nil
}

// ListJobs returns saved jobs, newest first.
func (s *ApplicationService) ListJobs(ctx context.Context, limit int) ([]domain.SavedJob, error) {
	jobs, err := s.jobs.List(ctx, limit)
	if err != nil {
		return nil, storeErr("list jobs", err)
	}
	if jobs == nil {
		jobs = []domain.SavedJob{}
	}
	return jobs, nil
}

// GetJob returns a saved job by id.
func (s *ApplicationService) GetJob(ctx context.Context, id string) (*domain.SavedJob, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get job", err)
	}
	return job, nil
}

// storeErr passes NotFoundError through and wraps everything else.
func storeErr(op string, err error) error {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return err
	}
	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
