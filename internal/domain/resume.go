package domain

import "time"

// Resume is an uploaded resume file. Contents live in object storage.
type Resume struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	Filename    string    `gorm:"type:text;not null" json:"filename"`
	StorageKey  string    `gorm:"type:text;not null" json:"storage_key"`
	ContentType string    `gorm:"type:text" json:"content_type"`
	Size        int64     `json:"size"`
	IsPrimary   bool      `gorm:"index:idx_resumes_primary" json:"is_primary"`
	URL         string    `gorm:"-" json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for Resume.
func (Resume) TableName() string {
	return "resumes"
}
