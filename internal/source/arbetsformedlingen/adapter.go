// Package arbetsformedlingen adapts the Swedish Public Employment Service
// job search API (JobTech) to the Source interface.
package arbetsformedlingen

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/jobpilot/internal/domain"
	"github.com/timmy/jobpilot/internal/source"
)

const (
	SourceID   = "arbetsformedlingen"
	SourceName = "Arbetsförmedlingen"

	DefaultBaseURL = "https://jobsearch.api.jobtechdev.se"

	// DefaultLocation is used when a hit has no workplace city or municipality.
	DefaultLocation = "Sweden"
)

// Config holds adapter settings.
type Config struct {
	BaseURL              string
	Timeout              time.Duration
	DescriptionMaxLength int
}

// Adapter implements source.Source for the JobTech search API.
type Adapter struct {
	client         *resty.Client
	descriptionMax int
}

// NewAdapter creates a new Arbetsförmedlingen adapter.
// Parameters:
//   - cfg: adapter settings; zero values fall back to defaults.
// Returns:
//   - *Adapter: initialized adapter.
func NewAdapter(cfg Config) *Adapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &Adapter{
		client:         client,
		descriptionMax: cfg.DescriptionMaxLength,
	}
}

// GetSourceID returns the unique identifier for this source
func (a *Adapter) GetSourceID() string {
	return SourceID
}

// GetDisplayName returns a human-readable name for this source
func (a *Adapter) GetDisplayName() string {
	return SourceName
}

// RemoteCapable is false: the API is skipped entirely for remote-only searches.
func (a *Adapter) RemoteCapable() bool {
	return false
}

type searchResponse struct {
	Hits []hit `json:"hits"`
}

type hit struct {
	ID       source.FlexString `json:"id"`
	Headline string            `json:"headline"`
	Employer *struct {
		Name string `json:"name"`
	} `json:"employer"`
	WorkplaceAddress *struct {
		City         string `json:"city"`
		Municipality string `json:"municipality"`
	} `json:"workplace_address"`
	RemoteWork  *bool `json:"remote_work"`
	Description *struct {
		Text string `json:"text"`
	} `json:"description"`
	WebpageURL      string `json:"webpage_url"`
	PublicationDate string `json:"publication_date"`
}

// Search queries the JobTech API.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - q: keywords, optional location (appended to the free-text query), limit.
// Returns:
//   - []domain.Job: at most q.Limit jobs; empty on failure or a non-positive limit.
//   - error: *source.FetchError on failure.
func (a *Adapter) Search(ctx context.Context, q source.Query) ([]domain.Job, error) {
	if q.Limit <= 0 {
		return []domain.Job{}, nil
	}

	text := strings.TrimSpace(q.Keywords)
	if loc := strings.TrimSpace(q.Location); loc != "" {
		text = strings.TrimSpace(text + " " + loc)
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     text,
			"limit": strconv.Itoa(q.Limit),
		}).
		Get("/search")
	if err != nil {
		return []domain.Job{}, &source.FetchError{Source: SourceID, Reason: source.ReasonTransport, Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return []domain.Job{}, source.NewFetchError(SourceID, source.ReasonStatus, "unexpected status %d", resp.StatusCode())
	}

	jobs, err := a.parse(resp.Body(), q.Limit)
	if err != nil {
		return []domain.Job{}, &source.FetchError{Source: SourceID, Reason: source.ReasonPayload, Err: err}
	}
	return jobs, nil
}

func (a *Adapter) parse(body []byte, limit int) ([]domain.Job, error) {
	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	jobs := make([]domain.Job, 0, max(min(len(payload.Hits), limit), 0))
	for _, h := range payload.Hits {
		if len(jobs) >= limit {
			break
		}
		jobs = append(jobs, a.toJob(h))
	}
	return jobs, nil
}

func (a *Adapter) toJob(h hit) domain.Job {
	company := domain.UnknownCompany
	if h.Employer != nil {
		company = source.FirstNonEmpty(domain.UnknownCompany, h.Employer.Name)
	}

	location := DefaultLocation
	if h.WorkplaceAddress != nil {
		location = source.FirstNonEmpty(DefaultLocation, h.WorkplaceAddress.City, h.WorkplaceAddress.Municipality)
	}

	var description string
	if h.Description != nil {
		description = source.Truncate(h.Description.Text, a.descriptionMax)
	}

	return domain.Job{
		Source:      SourceID,
		SourceID:    string(h.ID),
		Title:       h.Headline,
		Company:     company,
		Location:    location,
		IsRemote:    h.RemoteWork != nil && *h.RemoteWork,
		Description: description,
		URL:         h.WebpageURL,
		PostedAt:    h.PublicationDate,
	}
}
