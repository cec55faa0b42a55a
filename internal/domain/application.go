package domain

import (
	"strings"
	"time"
)

// ApplicationStatus is a stage in the application pipeline.
// The set is closed; ParseStatus rejects anything else.
type ApplicationStatus string

const (
	StatusSaved       ApplicationStatus = "saved"
	StatusApplied     ApplicationStatus = "applied"
	StatusPhoneScreen ApplicationStatus = "phone_screen"
	StatusInterview   ApplicationStatus = "interview"
	StatusOffer       ApplicationStatus = "offer"
	StatusRejected    ApplicationStatus = "rejected"
	StatusWithdrawn   ApplicationStatus = "withdrawn"
)

// EventTypeStatusChange is recorded whenever an application's status changes.
const EventTypeStatusChange = "status_change"

// AllStatuses returns every status in pipeline order.
func AllStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		StatusSaved,
		StatusApplied,
		StatusPhoneScreen,
		StatusInterview,
		StatusOffer,
		StatusRejected,
		StatusWithdrawn,
	}
}

// IsValid reports whether s belongs to the closed status set.
func (s ApplicationStatus) IsValid() bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s usually ends the pipeline.
// Terminal statuses are informational; transitions out of them are allowed.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusOffer || s == StatusRejected || s == StatusWithdrawn
}

// ParseStatus converts raw input into an ApplicationStatus.
// Returns *InvalidStatusError when raw is not in the closed set.
func ParseStatus(raw string) (ApplicationStatus, error) {
	s := ApplicationStatus(strings.TrimSpace(raw))
	if !s.IsValid() {
		return "", &InvalidStatusError{Status: raw}
	}
	return s, nil
}

// Application tracks a user's pursuit of one job.
// AppliedAt is set the first time the status becomes applied and never cleared.
type Application struct {
	ID             string             `gorm:"type:text;primaryKey" json:"id"`
	JobID          string             `gorm:"type:text;index:idx_applications_job" json:"job_id"`
	JobTitle       string             `gorm:"type:text;not null" json:"job_title"`
	Company        string             `gorm:"type:text;not null" json:"company"`
	JobDescription string             `gorm:"type:text" json:"job_description,omitempty"`
	Status         ApplicationStatus  `gorm:"type:text;not null;index:idx_applications_status;default:saved" json:"status"`
	CoverLetter    *string            `gorm:"type:text" json:"cover_letter"`
	Notes          *string            `gorm:"type:text" json:"notes"`
	AppliedAt      *time.Time         `json:"applied_at"`
	CreatedAt      time.Time          `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"autoUpdateTime:false;index:idx_applications_updated" json:"updated_at"`
	Events         []ApplicationEvent `gorm:"foreignKey:ApplicationID" json:"events,omitempty"`
}

// TableName returns the database table name for Application.
func (Application) TableName() string {
	return "applications"
}

// ApplicationEvent is an append-only audit record of an application change.
type ApplicationEvent struct {
	ID            string    `gorm:"type:text;primaryKey" json:"id"`
	ApplicationID string    `gorm:"type:text;not null;index:idx_events_application" json:"application_id"`
	EventType     string    `gorm:"type:text;not null" json:"event_type"`
	OldValue      string    `gorm:"type:text" json:"old_value"`
	NewValue      string    `gorm:"type:text" json:"new_value"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime:false" json:"created_at"`
}

// TableName returns the database table name for ApplicationEvent.
func (ApplicationEvent) TableName() string {
	return "application_events"
}
