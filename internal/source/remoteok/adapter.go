// Package remoteok adapts the RemoteOK public JSON feed to the Source interface.
package remoteok

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
	SourceID   = "remoteok"
	SourceName = "RemoteOK"

	DefaultBaseURL   = "https://remoteok.com"
	DefaultUserAgent = "job-assistant/1.0"
)

// Config holds adapter settings.
type Config struct {
	BaseURL              string
	UserAgent            string
	Timeout              time.Duration
	DescriptionMaxLength int
}

// Adapter implements source.Source for RemoteOK.
type Adapter struct {
	client         *resty.Client
	descriptionMax int
}

// NewAdapter creates a new RemoteOK adapter.
// Parameters:
//   - cfg: adapter settings; zero values fall back to defaults.
// Returns:
//   - *Adapter: initialized adapter.
func NewAdapter(cfg Config) *Adapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("User-Agent", userAgent).
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

// RemoteCapable is always true; every RemoteOK posting is remote.
func (a *Adapter) RemoteCapable() bool {
	return true
}

type posting struct {
	ID          source.FlexString `json:"id"`
	Position    string            `json:"position"`
	Company     string            `json:"company"`
	Description string            `json:"description"`
	SalaryMin   source.FlexFloat  `json:"salary_min"`
	SalaryMax   source.FlexFloat  `json:"salary_max"`
	URL         string            `json:"url"`
	Date        string            `json:"date"`
	Tags        []string          `json:"tags"`
}

// Search queries the RemoteOK feed filtered by the first keyword.
// Location is ignored; every posting is remote.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - q: keywords (first word becomes the tag) and limit.
// Returns:
//   - []domain.Job: at most q.Limit jobs; empty on failure or a non-positive limit.
//   - error: *source.FetchError on failure.
func (a *Adapter) Search(ctx context.Context, q source.Query) ([]domain.Job, error) {
	if q.Limit <= 0 {
		return []domain.Job{}, nil
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"tag":   Tag(q.Keywords),
			"limit": strconv.Itoa(q.Limit),
		}).
		Get("/api")
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

// Tag derives the RemoteOK tag from free-text keywords.
func Tag(keywords string) string {
	fields := strings.Fields(keywords)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

func (a *Adapter) parse(body []byte, limit int) ([]domain.Job, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(body, &elements); err != nil {
		return nil, err
	}

	jobs := make([]domain.Job, 0, max(min(len(elements)-1, limit), 0))
	// element 0 is the feed's legal/metadata notice
	for i := 1; i < len(elements) && len(jobs) < limit; i++ {
		var p posting
		if err := json.Unmarshal(elements[i], &p); err != nil {
			continue
		}
		jobs = append(jobs, a.toJob(p))
	}
	return jobs, nil
}

func (a *Adapter) toJob(p posting) domain.Job {
	return domain.Job{
		Source:      SourceID,
		SourceID:    string(p.ID),
		Title:       p.Position,
		Company:     source.FirstNonEmpty(domain.UnknownCompany, p.Company),
		Location:    domain.RemoteLocation,
		IsRemote:    true,
		Description: source.Truncate(p.Description, a.descriptionMax),
		SalaryMin:   p.SalaryMin.Value,
		SalaryMax:   p.SalaryMax.Value,
		URL:         p.URL,
		PostedAt:    p.Date,
		Tags:        p.Tags,
	}
}
