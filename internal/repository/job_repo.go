package repository

import (
	"context"
	"errors"

	"github.com/timmy/jobpilot/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobRepository handles saved job records.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *JobRepository: repository instance bound to db.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// SaveIfAbsent inserts job unless one with the same source and source key exists.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - job: job record with ID and SourceKey assigned.
// Returns:
//   - *domain.SavedJob: the stored row, which may predate this call.
//   - error: non-nil if the insert or lookup fails.
func (r *JobRepository) SaveIfAbsent(ctx context.Context, job *domain.SavedJob) (*domain.SavedJob, error) {
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source"}, {Name: "source_key"}},
		DoNothing: true,
	}).Create(job).Error; err != nil {
		return nil, err
	}

	var stored domain.SavedJob
	if err := db.First(&stored, "source = ? AND source_key = ?", job.Source, job.SourceKey).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetByID retrieves a saved job by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
// Returns:
//   - *domain.SavedJob: job record if found.
//   - error: *domain.NotFoundError when missing, otherwise the query error.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.SavedJob, error) {
	var job domain.SavedJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{Resource: "job", ID: id}
		}
		return nil, err
	}
	return &job, nil
}

// List retrieves saved jobs, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records; <= 0 means no limit.
// Returns:
//   - []domain.SavedJob: matching records.
//   - error: non-nil if the query fails.
func (r *JobRepository) List(ctx context.Context, limit int) ([]domain.SavedJob, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var jobs []domain.SavedJob
	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
