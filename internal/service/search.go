package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/jobpilot/internal/domain"
	"github.com/timmy/jobpilot/internal/logger"
	"github.com/timmy/jobpilot/internal/source"
	"golang.org/x/sync/errgroup"
)

// DefaultKeywords is searched when the request carries no keywords.
const DefaultKeywords = "python"

// SearchConfig holds configuration for search service.
type SearchConfig struct {
	DefaultLimit   int
	MaxLimit       int
	AdapterTimeout time.Duration
}

// SearchService fans a query out to every registered job source.
type SearchService struct {
	sources        []source.Source
	logger         *logger.Logger
	defaultLimit   int
	maxLimit       int
	adapterTimeout time.Duration
}

// NewSearchService creates a new search service.
// Parameters:
//   - sources: adapters in registration order; results keep this order.
//   - log: logger instance.
//   - cfg: search configuration settings; nil uses defaults.
//
// Returns:
//   - *SearchService: initialized search service.
func NewSearchService(sources []source.Source, log *logger.Logger, cfg *SearchConfig) *SearchService {
	s := &SearchService{
		sources:        sources,
		logger:         log,
		defaultLimit:   10,
		maxLimit:       100,
		adapterTimeout: 8 * time.Second,
	}
	if cfg != nil {
		if cfg.DefaultLimit > 0 {
			s.defaultLimit = cfg.DefaultLimit
		}
		if cfg.MaxLimit > 0 {
			s.maxLimit = cfg.MaxLimit
		}
		if cfg.AdapterTimeout > 0 {
			s.adapterTimeout = cfg.AdapterTimeout
		}
	}
	return s
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *SearchService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// SourceInfo describes a registered adapter.
type SourceInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	RemoteCapable bool   `json:"remote_capable"`
}

// Sources lists registered adapters in registration order.
func (s *SearchService) Sources() []SourceInfo {
	infos := make([]SourceInfo, 0, len(s.sources))
	for _, src := range s.sources {
		infos = append(infos, SourceInfo{
			ID:            src.GetSourceID(),
			Name:          src.GetDisplayName(),
			RemoteCapable: src.RemoteCapable(),
		})
	}
	return infos
}

// SearchRequest represents a job search request.
type SearchRequest struct {
	Keywords   string `json:"keywords" form:"keywords"`
	Location   string `json:"location" form:"location"`
	RemoteOnly bool   `json:"remote_only" form:"remote_only"`
	Limit      int    `json:"limit" form:"limit"`
}

// SearchResponse represents the aggregated search results.
type SearchResponse struct {
	Count int          `json:"count"`
	Jobs  []domain.Job `json:"jobs"`
}

// Search queries every eligible source concurrently and concatenates their
// results in registration order. Source failures shrink the result; they are
// logged and never returned.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - req: search request; nil behaves like an empty request.
// Returns:
//   - *SearchResponse: jobs from all sources that answered in time.
//   - error: always nil; kept for interface symmetry with other services.
func (s *SearchService) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	if req == nil {
		req = &SearchRequest{}
	}
	q := source.Query{
		Keywords: strings.TrimSpace(req.Keywords),
		Location: strings.TrimSpace(req.Location),
		Limit:    s.clampLimit(req.Limit),
	}
	if q.Keywords == "" {
		q.Keywords = DefaultKeywords
	}

	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldComponent: "search",
		logger.FieldSearchID:  uuid.NewString(),
	})
	start := time.Now()

	eligible := make([]source.Source, 0, len(s.sources))
	for _, src := range s.sources {
		if req.RemoteOnly && !src.RemoteCapable() {
			continue
		}
		eligible = append(eligible, src)
	}

	s.log(ctx).WithFields(logger.Fields{
		"keywords":    q.Keywords,
		"location":    q.Location,
		"remote_only": req.RemoteOnly,
		"limit":       q.Limit,
		"sources":     len(eligible),
	}).Info("Performing job search")

	// One slot per source so results reassemble in registration order.
	results := make([][]domain.Job, len(eligible))
	var g errgroup.Group
	for i, src := range eligible {
		g.Go(func() error {
			results[i] = s.searchSource(ctx, src, q)
			return nil
		})
	}
	_ = g.Wait()

	jobs := make([]domain.Job, 0)
	for _, batch := range results {
		for _, job := range batch {
			if req.RemoteOnly && !job.IsRemote {
				continue
			}
			jobs = append(jobs, job)
		}
	}

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldCount:      len(jobs),
	}).Info(ctx, "Job search completed")

	return &SearchResponse{Count: len(jobs), Jobs: jobs}, nil
}

// searchSource runs one adapter under its own deadline and never fails.
func (s *SearchService) searchSource(ctx context.Context, src source.Source, q source.Query) []domain.Job {
	ctx, cancel := context.WithTimeout(ctx, s.adapterTimeout)
	defer cancel()
	ctx = logger.SetSource(ctx, src.GetSourceID())

	type outcome struct {
		jobs []domain.Job
		err  error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		jobs, err := src.Search(ctx, q)
		done <- outcome{jobs: jobs, err: err}
	}()

	// Adapters that ignore ctx are abandoned at the deadline.
	var jobs []domain.Job
	var err error
	select {
	case o := <-done:
		jobs, err = o.jobs, o.err
	case <-ctx.Done():
		err = ctx.Err()
	}
	entry := logger.With(nil).WithDuration(time.Since(start))
	if err != nil {
		entry.WithError(err).Warn(ctx, "Source search failed")
		return nil
	}
	if len(jobs) > q.Limit {
		jobs = jobs[:q.Limit]
	}

	entry.WithCount(len(jobs)).Debug(ctx, "Source search completed")
	return jobs
}

func (s *SearchService) clampLimit(limit int) int {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	return limit
}
