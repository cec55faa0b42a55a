package repository

import (
	"context"
	"errors"

	"github.com/timmy/jobpilot/internal/domain"
	"gorm.io/gorm"
)

// ResumeRepository handles resume metadata.
type ResumeRepository struct {
	db *gorm.DB
}

// NewResumeRepository creates a new ResumeRepository.
func NewResumeRepository(db *gorm.DB) *ResumeRepository {
	return &ResumeRepository{db: db}
}

// CreatePrimary inserts resume and makes it the only primary resume.
func (r *ResumeRepository) CreatePrimary(ctx context.Context, resume *domain.Resume) error {
	resume.IsPrimary = true
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Resume{}).
			Where("is_primary = ?", true).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		return tx.Create(resume).Error
	})
}

// List returns every resume, newest first.
func (r *ResumeRepository) List(ctx context.Context) ([]domain.Resume, error) {
	var resumes []domain.Resume
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&resumes).Error; err != nil {
		return nil, err
	}
	return resumes, nil
}

// GetByID returns the resume or *domain.NotFoundError.
func (r *ResumeRepository) GetByID(ctx context.Context, id string) (*domain.Resume, error) {
	var resume domain.Resume
	if err := r.db.WithContext(ctx).First(&resume, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{Resource: "resume", ID: id}
		}
		return nil, err
	}
	return &resume, nil
}

// GetPrimary returns the primary resume or *domain.NotFoundError.
func (r *ResumeRepository) GetPrimary(ctx context.Context) (*domain.Resume, error) {
	var resume domain.Resume
	if err := r.db.WithContext(ctx).First(&resume, "is_primary = ?", true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{Resource: "resume", ID: "primary"}
		}
		return nil, err
	}
	return &resume, nil
}
