package service

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/timmy/jobpilot/internal/domain"
	"github.com/timmy/jobpilot/internal/logger"
	"github.com/timmy/jobpilot/internal/storage"
)

// ResumeStore persists resume metadata.
type ResumeStore interface {
	// CreatePrimary inserts resume as the primary resume, clearing the flag elsewhere.
	CreatePrimary(ctx context.Context, resume *domain.Resume) error
	List(ctx context.Context) ([]domain.Resume, error)
	// GetByID and GetPrimary return *domain.NotFoundError when nothing matches.
	GetByID(ctx context.Context, id string) (*domain.Resume, error)
	GetPrimary(ctx context.Context) (*domain.Resume, error)
}

// ResumeService stores uploaded resume files and tracks the primary one.
type ResumeService struct {
	store   ResumeStore
	storage storage.ObjectStorage
	logger  *logger.Logger
}

// NewResumeService creates a new resume service.
// Parameters:
//   - store: resume metadata store.
//   - objectStorage: file storage; nil disables uploads.
//   - log: logger instance.
// Returns:
//   - *ResumeService: initialized service.
func NewResumeService(store ResumeStore, objectStorage storage.ObjectStorage, log *logger.Logger) *ResumeService {
	return &ResumeService{
		store:   store,
		storage: objectStorage,
		logger:  log,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *ResumeService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// Upload stores a resume file and marks it primary.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - filename: client file name; directory parts are dropped.
//   - contentType: MIME type recorded with the object.
//   - size: content length in bytes.
//   - r: file contents.
// Returns:
//   - *domain.Resume: stored resume with its URL.
//   - error: *domain.ValidationError, *domain.StorageError, or *domain.PersistenceError.
func (s *ResumeService) Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*domain.Resume, error) {
	if s.storage == nil {
		return nil, &domain.StorageError{Op: "upload", Err: errors.New("object storage is not configured")}
	}
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return nil, &domain.ValidationError{Field: "file", Message: "filename is required"}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := uuid.NewString()
	key := storage.ResumeKey(id, name)
	if err := s.storage.Upload(ctx, key, r, size, contentType); err != nil {
		return nil, &domain.StorageError{Op: "upload", Err: err}
	}

	resume := &domain.Resume{
		ID:          id,
		Filename:    name,
		StorageKey:  key,
		ContentType: contentType,
		Size:        size,
		IsPrimary:   true,
	}
	if err := s.store.CreatePrimary(ctx, resume); err != nil {
		// Leave no orphaned object behind.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.log(ctx).WithError(delErr).WithField("storage_key", key).Warn("Failed to remove resume object")
		}
		return nil, storeErr("create resume", err)
	}
	resume.URL = s.storage.GetURL(key)

	logger.With(logger.Fields{
		logger.FieldSize: size,
	}).WithField("resume_id", id).Info(ctx, "Resume uploaded")
	return resume, nil
}

// List returns every resume, newest first.
func (s *ResumeService) List(ctx context.Context) ([]domain.Resume, error) {
	resumes, err := s.store.List(ctx)
	if err != nil {
		return nil, storeErr("list resumes", err)
	}
	if resumes == nil {
		resumes = []domain.Resume{}
	}
	for i := range resumes {
		s.attachURL(&resumes[i])
	}
	return resumes, nil
}

// Primary returns the primary resume.
func (s *ResumeService) Primary(ctx context.Context) (*domain.Resume, error) {
	resume, err := s.store.GetPrimary(ctx)
	if err != nil {
		return nil, storeErr("get primary resume", err)
	}
	s.attachURL(resume)
	return resume, nil
}

// Open returns the resume and a reader over its stored file; the caller
// closes the reader.
func (s *ResumeService) Open(ctx context.Context, id string) (*domain.Resume, io.ReadCloser, error) {
	if s.storage == nil {
		return nil, nil, &domain.StorageError{Op: "download", Err: errors.New("object storage is not configured")}
	}
	resume, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, nil, storeErr("get resume", err)
	}
	rc, err := s.storage.Download(ctx, resume.StorageKey)
	if err != nil {
		return nil, nil, &domain.StorageError{Op: "download", Err: err}
	}
	s.attachURL(resume)
	return resume, rc, nil
}

func (s *ResumeService) attachURL(r *domain.Resume) {
	if s.storage != nil {
		r.URL = s.storage.GetURL(r.StorageKey)
	}
}
