package source

import (
	"context"

	"github.com/timmy/jobpilot/internal/domain"
)

// Query is the adapter-level search request.
type Query struct {
	Keywords string
	Location string
	Limit    int // adapters return no jobs when <= 0
}

// Source defines the interface for external job boards.
type Source interface {
	// GetSourceID returns the identifier stamped on every Job from this source.
	// Parameters: none.
	// Returns:
	//   - string: stable source identifier.
	GetSourceID() string

	// GetDisplayName returns a human-readable name for this source.
	// Parameters: none.
	// Returns:
	//   - string: display-friendly source name.
	GetDisplayName() string

	// RemoteCapable reports whether this source can return remote jobs at all.
	// Sources that cannot are skipped for remote-only searches.
	// Parameters: none.
	// Returns:
	//   - bool: true when results may be remote.
	RemoteCapable() bool

	// Search fetches up to q.Limit normalized jobs.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - q: keywords, optional location and limit.
	// Returns:
	//   - []domain.Job: normalized jobs, empty on any failure.
	//   - error: *FetchError describing the failure, nil on success.
	Search(ctx context.Context, q Query) ([]domain.Job, error)
}
