package repository

import (
	"context"
	"errors"
	"time"

	"github.com/timmy/jobpilot/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplicationRepository handles applications and their append-only event log.
type ApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application. Events on app are not written.
func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	return r.db.WithContext(ctx).Omit("Events").Create(app).Error
}

// GetByID retrieves an application without its events.
// Returns *domain.NotFoundError when the id is unknown.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	var app domain.Application
	if err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{Resource: "application", ID: id}
		}
		return nil, err
	}
	return &app, nil
}

// FindByJobID returns the oldest application for jobID, or nil when none exists.
func (r *ApplicationRepository) FindByJobID(ctx context.Context, jobID string) (*domain.Application, error) {
	var apps []domain.Application
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Limit(1).
		Find(&apps).Error; err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, nil
	}
	return &apps[0], nil
}

// List retrieves applications ordered by most recent update.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - status: exact status filter; nil means all.
// Returns:
//   - []domain.Application: matching applications.
//   - error: non-nil if the query fails.
func (r *ApplicationRepository) List(ctx context.Context, status *domain.ApplicationStatus) ([]domain.Application, error) {
	query := r.db.WithContext(ctx)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var apps []domain.Application
	if err := query.Order("updated_at DESC").Order("id ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// Update reads the application, applies mutate, and writes back only the
// columns mutate changed, plus the returned event, in one transaction.
// Postgres locks the row for the duration; on sqlite the column-scoped write
// keeps concurrent edits of different fields from overwriting each other.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: application id.
//   - mutate: edits app in place and returns an optional event to append.
// Returns:
//   - *domain.Application: the application as written.
//   - error: *domain.NotFoundError when id does not exist, otherwise the store error.
func (r *ApplicationRepository) Update(ctx context.Context, id string, mutate func(app *domain.Application) *domain.ApplicationEvent) (*domain.Application, error) {
	var updated domain.Application
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		read := tx
		if tx.Dialector.Name() == "postgres" {
			read = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var app domain.Application
		if err := read.First(&app, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.NotFoundError{Resource: "application", ID: id}
			}
			return err
		}

		before := app
		event := mutate(&app)

		if changes := changedColumns(&before, &app); len(changes) > 0 {
			if err := tx.Model(&domain.Application{}).Where("id = ?", id).Updates(changes).Error; err != nil {
				return err
			}
		}
		if event != nil {
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}
		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func changedColumns(before, after *domain.Application) map[string]interface{} {
	changes := make(map[string]interface{})
	if before.Status != after.Status {
		changes["status"] = after.Status
	}
	if !equalString(before.CoverLetter, after.CoverLetter) {
		changes["cover_letter"] = after.CoverLetter
	}
	if !equalString(before.Notes, after.Notes) {
		changes["notes"] = after.Notes
	}
	if !equalTime(before.AppliedAt, after.AppliedAt) {
		changes["applied_at"] = after.AppliedAt
	}
	if !before.UpdatedAt.Equal(after.UpdatedAt) {
		changes["updated_at"] = after.UpdatedAt
	}
	return changes
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// ListEvents returns the events of one application, oldest first.
func (r *ApplicationRepository) ListEvents(ctx context.Context, applicationID string) ([]domain.ApplicationEvent, error) {
	var events []domain.ApplicationEvent
	if err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
