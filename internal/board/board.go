// Package board renders applications as status columns and turns drag
// gestures into status transitions, shown optimistically until the backend
// confirms or rejects them.
package board

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/timmy/jobpilot/internal/domain"
	"github.com/timmy/jobpilot/internal/logger"
)

// Backend is the remote side of the board.
type Backend interface {
	ListApplications(ctx context.Context, status string) ([]domain.Application, error)
	TransitionApplication(ctx context.Context, id string, status domain.ApplicationStatus) (*domain.Application, error)
}

// Column is one status lane.
type Column struct {
	ID    domain.ApplicationStatus
	Title string
}

// ColumnView is a column with the applications it currently shows.
type ColumnView struct {
	Column
	Applications []domain.Application
}

// DefaultColumns returns one column per status, in pipeline order.
func DefaultColumns() []Column {
	return []Column{
		{ID: domain.StatusSaved, Title: "Saved"},
		{ID: domain.StatusApplied, Title: "Applied"},
		{ID: domain.StatusPhoneScreen, Title: "Phone Screen"},
		{ID: domain.StatusInterview, Title: "Interview"},
		{ID: domain.StatusOffer, Title: "Offer"},
		{ID: domain.StatusRejected, Title: "Rejected"},
		{ID: domain.StatusWithdrawn, Title: "Withdrawn"},
	}
}

// Partition groups apps by status. Each column keeps input order;
// applications whose status has no column are not shown.
func Partition(apps []domain.Application, columns []Column) []ColumnView {
	index := make(map[domain.ApplicationStatus]int, len(columns))
	views := make([]ColumnView, len(columns))
	for i, col := range columns {
		index[col.ID] = i
		views[i] = ColumnView{Column: col, Applications: []domain.Application{}}
	}
	for _, app := range apps {
		if i, ok := index[app.Status]; ok {
			views[i].Applications = append(views[i].Applications, app)
		}
	}
	return views
}

// Option customizes a Board.
type Option func(*Board)

// WithColumns replaces DefaultColumns.
func WithColumns(columns []Column) Option {
	return func(b *Board) {
		b.columns = columns
	}
}

// WithLogger sets the logger used for mutation outcomes.
func WithLogger(log *logger.Logger) Option {
	return func(b *Board) {
		b.logger = log
	}
}

// Board holds the last authoritative snapshot plus pending overrides.
// All methods are safe for concurrent use.
type Board struct {
	backend Backend
	columns []Column
	logger  *logger.Logger

	mu        sync.Mutex
	snapshot  []domain.Application
	overrides map[string]*Mutation // application id -> newest pending mutation
	merged    map[string]uint64    // application id -> seq of newest commit merged
	nextSeq   uint64
	activeID  string // card being dragged; empty when idle
	inflight  sync.WaitGroup
}

// New creates a board over backend.
func New(backend Backend, opts ...Option) *Board {
	b := &Board{
		backend:   backend,
		columns:   DefaultColumns(),
		logger:    logger.GetDefault(),
		overrides: make(map[string]*Mutation),
		merged:    make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logger.GetDefault()
	}
	return b
}

// Refresh fetches every application and reconciles.
func (b *Board) Refresh(ctx context.Context) error {
	apps, err := b.backend.ListApplications(ctx, "")
	if err != nil {
		return err
	}
	b.Reconcile(apps)
	return nil
}

// Reconcile replaces the authoritative snapshot. Overrides of mutations
// still pending stay layered on top until they settle.
func (b *Board) Reconcile(apps []domain.Application) {
	snapshot := make([]domain.Application, len(apps))
	copy(snapshot, apps)

	b.mu.Lock()
	b.snapshot = snapshot
	b.mu.Unlock()
}

// Columns renders the snapshot with pending overrides applied.
func (b *Board) Columns() []ColumnView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Partition(b.viewLocked(), b.columns)
}

// Application returns the displayed state of one application.
func (b *Board) Application(id string) (domain.Application, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, app := range b.viewLocked() {
		if app.ID == id {
			return app, true
		}
	}
	return domain.Application{}, false
}

func (b *Board) viewLocked() []domain.Application {
	view := make([]domain.Application, len(b.snapshot))
	copy(view, b.snapshot)
	for i := range view {
		if m, ok := b.overrides[view[i].ID]; ok {
			view[i].Status = m.To
		}
	}
	return view
}

// DragStart begins dragging the card for application id.
func (b *Board) DragStart(id string) {
	b.mu.Lock()
	b.activeID = id
	b.mu.Unlock()
}

// DragCancel abandons the current drag without any backend call.
func (b *Board) DragCancel() {
	b.mu.Lock()
	b.activeID = ""
	b.mu.Unlock()
}

// Dragging returns the card being dragged.
func (b *Board) Dragging() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.activeID, b.activeID != ""
}

// DragEnd drops the dragged card on targetID and returns to idle.
// It returns nil without contacting the backend when nothing is dragged,
// the target is not a column, the card is unknown, or the card is already
// in that column. Otherwise the card moves immediately and exactly one
// transition is sent in the background using ctx.
func (b *Board) DragEnd(ctx context.Context, targetID string) *Mutation {
	b.mu.Lock()
	active := b.activeID
	b.activeID = ""
	if active == "" {
		b.mu.Unlock()
		return nil
	}

	target, ok := b.columnLocked(targetID)
	if !ok {
		b.mu.Unlock()
		return nil
	}
	current, ok := b.statusLocked(active)
	if !ok || current == target.ID {
		b.mu.Unlock()
		return nil
	}

	m := newMutation(uuid.NewString(), active, current, target.ID)
	b.nextSeq++
	m.seq = b.nextSeq
	b.overrides[active] = m
	b.inflight.Add(1)
	b.mu.Unlock()

	go b.dispatch(ctx, m)
	return m
}

func (b *Board) dispatch(ctx context.Context, m *Mutation) {
	defer b.inflight.Done()
	log := b.logger.WithFields(logger.Fields{
		logger.FieldComponent:     "board",
		logger.FieldMutationID:    m.ID,
		logger.FieldApplicationID: m.ApplicationID,
	})
	ctx = log.WithContext(ctx)

	app, err := b.backend.TransitionApplication(ctx, m.ApplicationID, m.To)

	b.mu.Lock()
	// A commit that lands after a newer one for the same card is stale.
	if err == nil && app != nil && m.seq > b.merged[m.ApplicationID] {
		b.mergeLocked(*app)
		b.merged[m.ApplicationID] = m.seq
	}
	if b.overrides[m.ApplicationID] == m {
		delete(b.overrides, m.ApplicationID)
	}
	b.mu.Unlock()
	m.settle(err)

	log = log.WithFields(logger.Fields{"from": m.From, "to": m.To})
	if err != nil {
		log.WithError(err).Warn("Board move rejected, reverting")
		return
	}
	log.Info("Board move committed")
}

// Wait blocks until every mutation dispatched so far has settled.
func (b *Board) Wait() {
	b.inflight.Wait()
}

func (b *Board) mergeLocked(app domain.Application) {
	for i := range b.snapshot {
		if b.snapshot[i].ID == app.ID {
			b.snapshot[i] = app
			return
		}
	}
	b.snapshot = append(b.snapshot, app)
}

func (b *Board) columnLocked(id string) (Column, bool) {
	for _, col := range b.columns {
		if string(col.ID) == id {
			return col, true
		}
	}
	return Column{}, false
}

func (b *Board) statusLocked(id string) (domain.ApplicationStatus, bool) {
	if m, ok := b.overrides[id]; ok {
		return m.To, true
	}
	for _, app := range b.snapshot {
		if app.ID == id {
			return app.Status, true
		}
	}
	return "", false
}
