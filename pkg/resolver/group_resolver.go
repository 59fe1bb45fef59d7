package resolver

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/leetrack/leetrack-common/pkg/domain"
)

// GroupSource lists the problem sets. repository.ProblemRepository satisfies it.
type GroupSource interface {
	ListGroups(ctx context.Context) ([]domain.Group, error)
}

// GroupResolver maps problem set IDs to display names.
// The ID -> name table is loaded once and never expires; group definitions change
// far less often than problems.
type GroupResolver interface {
	// EnsureLoaded fetches the groups if they have not been loaded yet.
	// It is a no-op once loaded.
	EnsureLoaded(ctx context.Context) error

	// Resolve maps each ID to its name, echoing unknown IDs unchanged.
	// It never fails and never performs I/O.
	Resolve(ids []string) []string

	// Loaded reports whether the table has been populated.
	Loaded() bool

	// Reset clears the table and switches to a new source.
	Reset(source GroupSource)
}

// InMemoryGroupResolver is the GroupResolver used by the problem cache.
// Concurrent EnsureLoaded calls share a single fetch.
type InMemoryGroupResolver struct {
	mu         sync.RWMutex
	names      map[string]string // group ID -> name
	loaded     bool
	generation uint64 // bumped by Reset so in-flight loads from an old source are dropped
	source     GroupSource
	inflight   singleflight.Group
	logger     *slog.Logger
}

// NewInMemoryGroupResolver creates an empty resolver backed by source.
func NewInMemoryGroupResolver(source GroupSource, logger *slog.Logger) *InMemoryGroupResolver {
	return &InMemoryGroupResolver{
		names:  make(map[string]string),
		source: source,
		logger: logger,
	}
}

// EnsureLoaded fetches every group once.
func (r *InMemoryGroupResolver) EnsureLoaded(ctx context.Context) error {
	r.mu.RLock()
	loaded, gen, source := r.loaded, r.generation, r.source
	r.mu.RUnlock()

	if loaded {
		return nil
	}

	_, err, _ := r.inflight.Do(loadKey(gen), func() (any, error) {
		if r.Loaded() {
			return nil, nil
		}

		groups, err := source.ListGroups(ctx)
		if err != nil {
			return nil, err
		}

		names := make(map[string]string, len(groups))
		for _, g := range groups {
			names[g.ID] = g.Name
		}

		r.mu.Lock()
		defer r.mu.Unlock()

		if r.generation != gen {
			r.logger.Debug("Discarding problem sets loaded before reset")
			return nil, nil
		}
		r.names = names
		r.loaded = true

		r.logger.Info("Problem sets loaded", "groups", len(names))
		return nil, nil
	})
	return err
}

// Resolve maps ids to names. Unknown IDs are echoed so a stale reference never
// blocks showing a problem.
func (r *InMemoryGroupResolver) Resolve(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(ids))
	for i, id := range ids {
		if name, ok := r.names[id]; ok {
			names[i] = name
		} else {
			names[i] = id
		}
	}
	return names
}

// Loaded reports whether the group table has been populated.
func (r *InMemoryGroupResolver) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loaded
}

// Reset clears the table. A nil source keeps the current one.
func (r *InMemoryGroupResolver) Reset(source GroupSource) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.names = make(map[string]string)
	r.loaded = false
	r.generation++
	if source != nil {
		r.source = source
	}
}

func loadKey(gen uint64) string {
	return "groups/" + strconv.FormatUint(gen, 10)
}
