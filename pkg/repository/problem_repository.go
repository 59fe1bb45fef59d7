package repository

import (
	"context"
	"errors"
	"time"

	"github.com/leetrack/leetrack-common/pkg/domain"
)

// ErrProblemNotFound is wrapped into update failures for an unknown record ID.
var ErrProblemNotFound = errors.New("problem not found")

// ProblemRepository is the only component that talks to the store holding the
// problem and problem set tables. It has no caching or selection logic of its own:
// every call is a round trip, and failures are returned as REMOTE_OPERATION_FAILED.
type ProblemRepository interface {
	// ListProblems returns every problem row. GroupNames is left empty;
	// resolving group references is the caller's job.
	ListProblems(ctx context.Context) ([]*domain.Problem, error)

	// FindProblemsByName runs a scoped exact-match query on the name field.
	// Returns an empty slice when nothing matches. More than one row means the
	// store holds duplicates, which the caller must treat as an integrity error.
	FindProblemsByName(ctx context.Context, name string) ([]*domain.Problem, error)

	// InsertProblem creates a row and returns it with its store-assigned ID.
	InsertProblem(ctx context.Context, fields domain.ProblemFields) (*domain.Problem, error)

	// UpdateProblem writes the non-nil fields of update. Other fields are untouched.
	UpdateProblem(ctx context.Context, id string, update domain.ProblemUpdate) error

	// ListGroups returns every problem set (ID and display name).
	ListGroups(ctx context.Context) ([]domain.Group, error)
}

// ProblemImporter is implemented by repositories that can take rows with
// IDs assigned elsewhere, used to copy a store into a local database.
type ProblemImporter interface {
	// UpsertGroup inserts the group or renames the existing one with the same ID.
	UpsertGroup(ctx context.Context, group domain.Group) error

	// UpsertProblem inserts the problem or overwrites the existing one with the same ID.
	UpsertProblem(ctx context.Context, problem *domain.Problem) error
}

// localDate moves the calendar day of t to midnight in the local time zone.
// Drivers hand back DATE columns in UTC; the tracker works in local days.
func localDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
