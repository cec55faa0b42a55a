package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/timmy/jobpilot/internal/domain"
	"github.com/timmy/jobpilot/internal/source"
)

type fakeSource struct {
	id        string
	remote    bool
	jobs      []domain.Job
	err       error
	delay     time.Duration
	ignoreCtx bool

	mu        sync.Mutex
	calls     int
	lastQuery source.Query
}

func (f *fakeSource) GetSourceID() string    { return f.id }
func (f *fakeSource) GetDisplayName() string { return "Fake " + f.id }
func (f *fakeSource) RemoteCapable() bool    { return f.remote }

func (f *fakeSource) Search(ctx context.Context, q source.Query) ([]domain.Job, error) {
	f.mu.Lock()
	f.calls++
	f.lastQuery = q
	f.mu.Unlock()

	if f.delay > 0 {
		if f.ignoreCtx {
			time.Sleep(f.delay)
		} else {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return []domain.Job{}, &source.FetchError{Source: f.id, Reason: source.ReasonTransport, Err: ctx.Err()}
			}
		}
	}
	if f.err != nil {
		return []domain.Job{}, f.err
	}
	return f.jobs, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSource) query() source.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuery
}

func makeJobs(src string, n int, remote bool) []domain.Job {
	jobs := make([]domain.Job, n)
	for i := range jobs {
		jobs[i] = domain.Job{
			Source:   src,
			SourceID: fmt.Sprintf("%s-%d", src, i),
			Title:    fmt.Sprintf("Job %d", i),
			Company:  domain.UnknownCompany,
			IsRemote: remote,
		}
	}
	return jobs
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memApplicationStore struct {
	mu        sync.Mutex
	order     []string
	apps      map[string]domain.Application
	events    []domain.ApplicationEvent
	reads     int
	failWith  error
	failOnGet bool
}

func newMemApplicationStore() *memApplicationStore {
	return &memApplicationStore{apps: make(map[string]domain.Application)}
}

func (m *memApplicationStore) Create(_ context.Context, app *domain.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.order = append(m.order, app.ID)
	m.apps[app.ID] = *app
	return nil
}

func (m *memApplicationStore) GetByID(_ context.Context, id string) (*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.failOnGet && m.failWith != nil {
		return nil, m.failWith
	}
	app, ok := m.apps[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "application", ID: id}
	}
	return &app, nil
}

func (m *memApplicationStore) FindByJobID(_ context.Context, jobID string) (*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if app := m.apps[id]; app.JobID == jobID {
			return &app, nil
		}
	}
	return nil, nil
}

func (m *memApplicationStore) List(_ context.Context, status *domain.ApplicationStatus) ([]domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []domain.Application
	for _, id := range m.order {
		app := m.apps[id]
		if status == nil || app.Status == *status {
			out = append(out, app)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memApplicationStore) Update(_ context.Context, id string, mutate func(*domain.Application) *domain.ApplicationEvent) (*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	app, ok := m.apps[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "application", ID: id}
	}
	m.reads++
	event := mutate(&app)
	app.Events = nil
	m.apps[id] = app
	if event != nil {
		m.events = append(m.events, *event)
	}
	return &app, nil
}

func (m *memApplicationStore) ListEvents(_ context.Context, applicationID string) ([]domain.ApplicationEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ApplicationEvent
	for _, e := range m.events {
		if e.ApplicationID == applicationID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memApplicationStore) readCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

type memJobStore struct {
	mu    sync.Mutex
	byKey map[string]*domain.SavedJob
	byID  map[string]*domain.SavedJob
	order []string
}

func newMemJobStore() *memJobStore {
	return &memJobStore{byKey: map[string]*domain.SavedJob{}, byID: map[string]*domain.SavedJob{}}
}

func (m *memJobStore) SaveIfAbsent(_ context.Context, job *domain.SavedJob) (*domain.SavedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := job.Source + "\x00" + job.SourceKey
	if existing, ok := m.byKey[key]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *job
	m.byKey[key] = &cp
	m.byID[cp.ID] = &cp
	m.order = append(m.order, cp.ID)
	out := cp
	return &out, nil
}

func (m *memJobStore) GetByID(_ context.Context, id string) (*domain.SavedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.byID[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "job", ID: id}
	}
	cp := *job
	return &cp, nil
}

func (m *memJobStore) List(_ context.Context, limit int) ([]domain.SavedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SavedJob
	for i := len(m.order) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, *m.byID[m.order[i]])
	}
	return out, nil
}

func (m *memJobStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

type memResumeStore struct {
	mu       sync.Mutex
	resumes  []domain.Resume
	failWith error
}

func (m *memResumeStore) CreatePrimary(_ context.Context, resume *domain.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for i := range m.resumes {
		m.resumes[i].IsPrimary = false
	}
	m.resumes = append(m.resumes, *resume)
	return nil
}

func (m *memResumeStore) List(_ context.Context) ([]domain.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Resume, 0, len(m.resumes))
	for i := len(m.resumes) - 1; i >= 0; i-- {
		out = append(out, m.resumes[i])
	}
	return out, nil
}

func (m *memResumeStore) GetByID(_ context.Context, id string) (*domain.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.resumes {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "resume", ID: id}
}

func (m *memResumeStore) GetPrimary(_ context.Context) (*domain.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.resumes {
		if r.IsPrimary {
			cp := r
			return &cp, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "resume"}
}

type memObjectStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	failWith  error
	deletions []string
}

func newMemObjectStorage() *memObjectStorage {
	return &memObjectStorage{objects: map[string][]byte{}}
}

func (m *memObjectStorage) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	if m.failWith != nil {
		return m.failWith
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memObjectStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memObjectStorage) GetURL(key string) string {
	return "https://cdn.example.test/" + key
}

func (m *memObjectStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deletions = append(m.deletions, key)
	return nil
}

func (m *memObjectStorage) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memObjectStorage) EnsureBucket(context.Context) error {
	return nil
}
