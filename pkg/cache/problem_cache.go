package cache

import (
	"context"

	"github.com/leetrack/leetrack-common/pkg/domain"
)

// ProblemCache is the materialized view of the problems table that UIs read and
// mutate through.
//
// Mutations go straight to the store and do NOT touch the snapshot. Callers that
// need to see their own write call Invalidate or GetAll(ctx, true) afterwards.
type ProblemCache interface {
	// GetAll returns every problem. A non-empty snapshot younger than the staleness
	// threshold is returned without I/O unless forceRefresh is set; otherwise the
	// whole table is refetched and the snapshot replaced.
	GetAll(ctx context.Context, forceRefresh bool) ([]*domain.Problem, error)

	// GetByName always queries the store with an exact name filter.
	// Returns nil (no error) when nothing matches.
	GetByName(ctx context.Context, name string) (*domain.Problem, error)

	// Has checks the in-memory snapshot only.
	Has(name string) bool

	// Create inserts a problem unless one with the same name already exists,
	// in which case the existing record is returned unchanged.
	Create(ctx context.Context, fields domain.ProblemFields) (*domain.Problem, error)

	// SetComfort writes the comfort rating and stamps today's local date as the
	// last practiced day.
	SetComfort(ctx context.Context, id string, comfort domain.Comfort) error

	// SetIcebox writes the icebox flag only.
	SetIcebox(ctx context.Context, id string, value bool) error

	// Invalidate marks the snapshot stale without any I/O.
	Invalidate()
}
