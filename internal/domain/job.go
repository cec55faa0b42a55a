package domain

import "time"

// Default values substituted by source adapters when upstream omits a field.
const (
	UnknownCompany  = "Unknown"
	RemoteLocation  = "Remote"
	DefaultJobTitle = "Unknown Position"
	DefaultCompany  = "Unknown Company"
)

// Job is a normalized posting returned by a job search.
// Every field is populated by the adapter that produced it; salaries are nil
// when the source does not publish them.
type Job struct {
	Source      string   `json:"source"`
	SourceID    string   `json:"source_id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	IsRemote    bool     `json:"is_remote"`
	Description string   `json:"description"`
	SalaryMin   *float64 `json:"salary_min"`
	SalaryMax   *float64 `json:"salary_max"`
	URL         string   `json:"url"`
	PostedAt    string   `json:"posted_at"`
	Tags        []string `json:"tags,omitempty"`
}

// SavedJob is a Job persisted because an application was created from it.
// SourceKey is the dedup key: the source id, or the URL when the source id is empty.
type SavedJob struct {
	ID          string      `gorm:"type:text;primaryKey" json:"id"`
	Source      string      `gorm:"type:text;not null;index:idx_jobs_source,unique" json:"source"`
	SourceKey   string      `gorm:"type:text;not null;index:idx_jobs_source,unique" json:"-"`
	SourceID    string      `gorm:"type:text" json:"source_id"`
	Title       string      `gorm:"type:text;not null" json:"title"`
	Company     string      `gorm:"type:text" json:"company"`
	Location    string      `gorm:"type:text" json:"location"`
	IsRemote    bool        `json:"is_remote"`
	Description string      `gorm:"type:text" json:"description"`
	SalaryMin   *float64    `json:"salary_min"`
	SalaryMax   *float64    `json:"salary_max"`
	URL         string      `gorm:"type:text" json:"url"`
	PostedAt    string      `gorm:"type:text" json:"posted_at"`
	Tags        StringArray `gorm:"type:text" json:"tags"`
	CreatedAt   time.Time   `json:"created_at"`
}

// TableName returns the database table name for SavedJob.
func (SavedJob) TableName() string {
	return "jobs"
}

// NewSavedJob copies a search result into its persisted form.
// The caller assigns ID and SourceKey.
func NewSavedJob(job *Job) *SavedJob {
	return &SavedJob{
		Source:      job.Source,
		SourceID:    job.SourceID,
		Title:       job.Title,
		Company:     job.Company,
		Location:    job.Location,
		IsRemote:    job.IsRemote,
		Description: job.Description,
		SalaryMin:   job.SalaryMin,
		SalaryMax:   job.SalaryMax,
		URL:         job.URL,
		PostedAt:    job.PostedAt,
		Tags:        StringArray(job.Tags),
	}
}
