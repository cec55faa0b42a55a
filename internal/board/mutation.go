package board

import (
	"context"
	"sync"

	"github.com/timmy/jobpilot/internal/domain"
)

// MutationState is the lifecycle of one optimistic status change.
type MutationState int

const (
	Pending MutationState = iota
	Committed
	Failed
)

func (s MutationState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Mutation is a status change shown optimistically while the backend confirms it.
type Mutation struct {
	ID            string
	ApplicationID string
	From          domain.ApplicationStatus
	To            domain.ApplicationStatus

	seq uint64 // issue order on the board

	mu    sync.Mutex
	state MutationState
	err   error
	done  chan struct{}
}

func newMutation(id, appID string, from, to domain.ApplicationStatus) *Mutation {
	return &Mutation{
		ID:            id,
		ApplicationID: appID,
		From:          from,
		To:            to,
		done:          make(chan struct{}),
	}
}

// State returns the current state.
func (m *Mutation) State() MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the failure reason, nil unless the state is Failed.
func (m *Mutation) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Done is closed once the mutation leaves Pending.
func (m *Mutation) Done() <-chan struct{} {
	return m.done
}

// Wait blocks until the mutation settles or ctx ends.
// It returns the failure reason, or ctx.Err() when ctx ends first.
func (m *Mutation) Wait(ctx context.Context) error {
	select {
	case <-m.done:
		return m.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mutation) settle(err error) {
	m.mu.Lock()
	if err != nil {
		m.state = Failed
		m.err = err
	} else {
		m.state = Committed
	}
	m.mu.Unlock()
	close(m.done)
}
