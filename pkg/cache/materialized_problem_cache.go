package cache

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/leetrack/leetrack-common/pkg/common"
	"github.com/leetrack/leetrack-common/pkg/config"
	"github.com/leetrack/leetrack-common/pkg/domain"
	"github.com/leetrack/leetrack-common/pkg/errors"
	"github.com/leetrack/leetrack-common/pkg/repository"
	"github.com/leetrack/leetrack-common/pkg/resolver"
)

// Options tunes a MaterializedProblemCache. Zero values select the defaults.
type Options struct {
	Staleness time.Duration // default config.DefaultStaleness
	Clock     common.Clock  // default common.SystemClock
}

// MaterializedProblemCache keeps every problem in memory, keyed by name.
//
// A refresh fetches the whole table into a fresh map and swaps it in under the
// lock, so readers see either the old snapshot or the new one, never a mix.
// Overlapping refreshes are not coalesced; the last one to finish wins.
type MaterializedProblemCache struct {
	mu          sync.RWMutex
	byName      map[string]*domain.Problem // name -> problem
	ordered     []*domain.Problem          // same problems in store order
	refreshedAt time.Time                  // zero when stale
	generation  uint64                     // bumped by Reconfigure
	creds       config.Credentials
	repo        repository.ProblemRepository
	groups      resolver.GroupResolver
	staleness   time.Duration
	clock       common.Clock
	logger      *slog.Logger
}

// NewMaterializedProblemCache creates an empty cache. Nothing is fetched until the
// first GetAll.
//
// Parameters:
//   - creds: Credential gate checked before every store operation
//   - repo: Store adapter for the problems and problem sets tables
//   - groups: Resolver for problem set references (its source should be repo)
//   - opts: Staleness threshold and clock
//   - logger: Structured logger for operational logging
func NewMaterializedProblemCache(
	creds config.Credentials,
	repo repository.ProblemRepository,
	groups resolver.GroupResolver,
	opts Options,
	logger *slog.Logger,
) *MaterializedProblemCache {
	if opts.Staleness <= 0 {
		opts.Staleness = config.DefaultStaleness
	}
	if opts.Clock == nil {
		opts.Clock = common.SystemClock
	}

	return &MaterializedProblemCache{
		byName:    make(map[string]*domain.Problem),
		creds:     creds,
		repo:      repo,
		groups:    groups,
		staleness: opts.Staleness,
		clock:     opts.Clock,
		logger:    logger,
	}
}

// GetAll returns every problem, refetching when forced, empty or stale.
func (c *MaterializedProblemCache) GetAll(ctx context.Context, forceRefresh bool) ([]*domain.Problem, error) {
	repo, gen, err := c.gate()
	if err != nil {
		return nil, err
	}

	if !forceRefresh {
		c.mu.RLock()
		fresh := len(c.ordered) > 0 && !c.refreshedAt.IsZero() && c.clock.Now().Sub(c.refreshedAt) < c.staleness
		var snapshot []*domain.Problem
		if fresh {
			snapshot = cloneProblems(c.ordered)
		}
		c.mu.RUnlock()

		if fresh {
			c.logger.Debug("Serving problems from snapshot", "problems", len(snapshot))
			return snapshot, nil
		}
	}

	return c.refresh(ctx, repo, gen)
}

// refresh loads the groups (first time only), fetches every row, resolves group
// names and swaps the new snapshot in. Failures propagate unchanged.
func (c *MaterializedProblemCache) refresh(ctx context.Context, repo repository.ProblemRepository, gen uint64) ([]*domain.Problem, error) {
	start := c.clock.Now()

	if err := c.groups.EnsureLoaded(ctx); err != nil {
		c.logger.Error("Failed to load problem sets", "error", err)
		return nil, err
	}

	problems, err := repo.ListProblems(ctx)
	if err != nil {
		c.logger.Error("Failed to refresh problems", "error", err)
		return nil, err
	}

	byName := make(map[string]*domain.Problem, len(problems))
	ordered := make([]*domain.Problem, 0, len(problems))
	for _, p := range problems {
		p.GroupNames = c.groups.Resolve(p.GroupIDs)

		if prev, dup := byName[p.Name]; dup {
			// Names are unique by contract; the later row replaces the earlier one.
			c.logger.Warn("Duplicate problem name in store", "name", p.Name, "kept", p.ID, "dropped", prev.ID)
			i := slices.Index(ordered, prev)
			ordered = slices.Delete(ordered, i, i+1)
		}
		byName[p.Name] = p
		ordered = append(ordered, p)
	}

	c.mu.Lock()
	if c.generation != gen {
		// Rows came from the adapter that was just replaced.
		current := cloneProblems(c.ordered)
		c.mu.Unlock()
		c.logger.Debug("Discarding snapshot fetched before reconfigure", "problems", len(ordered))
		return current, nil
	}
	c.byName = byName
	c.ordered = ordered
	c.refreshedAt = c.clock.Now()
	c.mu.Unlock()

	c.logger.Info("Problem snapshot refreshed",
		"problems", len(ordered),
		"duration", c.clock.Now().Sub(start),
	)

	return cloneProblems(ordered), nil
}

// GetByName warms an empty snapshot, then asks the store directly so the answer
// reflects the store even if the snapshot is stale.
func (c *MaterializedProblemCache) GetByName(ctx context.Context, name string) (*domain.Problem, error) {
	repo, _, err := c.gate()
	if err != nil {
		return nil, err
	}

	if c.isEmpty() {
		if _, err := c.GetAll(ctx, false); err != nil {
			return nil, err
		}
	}

	matches, err := repo.FindProblemsByName(ctx, name)
	if err != nil {
		c.logger.Error("Failed to look up problem", "name", name, "error", err)
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		p := matches[0]
		p.GroupNames = c.groups.Resolve(p.GroupIDs)
		return p, nil
	default:
		return nil, errors.ErrDuplicateRecord(repository.TableProblems, name, len(matches))
	}
}

// Has reports whether the snapshot holds a problem with this name. No I/O.
func (c *MaterializedProblemCache) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.byName[name]
	return ok
}

// Create inserts the problem unless GetByName already finds it.
// The snapshot is not updated.
func (c *MaterializedProblemCache) Create(ctx context.Context, fields domain.ProblemFields) (*domain.Problem, error) {
	repo, _, err := c.gate()
	if err != nil {
		return nil, err
	}

	if err := fields.Validate(); err != nil {
		return nil, errors.ErrValidationFailed("problem", err.Error())
	}

	existing, err := c.GetByName(ctx, fields.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		c.logger.Info("Problem already tracked", "name", existing.Name, "id", existing.ID)
		return existing, nil
	}

	created, err := repo.InsertProblem(ctx, fields)
	if err != nil {
		c.logger.Error("Failed to create problem", "name", fields.Name, "error", err)
		return nil, err
	}
	created.GroupNames = c.groups.Resolve(created.GroupIDs)

	c.logger.Info("Problem created", "name", created.Name, "id", created.ID)
	return created, nil
}

// SetComfort writes comfort and today's local date. The snapshot is not updated.
func (c *MaterializedProblemCache) SetComfort(ctx context.Context, id string, comfort domain.Comfort) error {
	repo, _, err := c.gate()
	if err != nil {
		return err
	}

	if !comfort.IsValid() {
		return errors.ErrValidationFailed("comfort", "must be between 0 and 5")
	}

	today := common.Today(c.clock)
	update := domain.ProblemUpdate{Comfort: &comfort, LastPracticed: &today}
	if err := repo.UpdateProblem(ctx, id, update); err != nil {
		c.logger.Error("Failed to set comfort", "id", id, "error", err)
		return err
	}

	c.logger.Debug("Comfort updated", "id", id, "comfort", int(comfort), "date", common.FormatDate(today))
	return nil
}

// SetIcebox writes the icebox flag. The snapshot is not updated.
func (c *MaterializedProblemCache) SetIcebox(ctx context.Context, id string, value bool) error {
	repo, _, err := c.gate()
	if err != nil {
		return err
	}

	if err := repo.UpdateProblem(ctx, id, domain.ProblemUpdate{Icebox: &value}); err != nil {
		c.logger.Error("Failed to set icebox", "id", id, "error", err)
		return err
	}

	c.logger.Debug("Icebox updated", "id", id, "icebox", value)
	return nil
}

// Invalidate makes the next GetAll refetch. Has keeps answering from the old snapshot.
func (c *MaterializedProblemCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refreshedAt = time.Time{}
}

// Reconfigure swaps the credentials and store adapter, clearing the snapshot and
// the group table. A nil repo keeps the current adapter. Refreshes still in flight
// against the old adapter are discarded when they finish.
func (c *MaterializedProblemCache) Reconfigure(creds config.Credentials, repo repository.ProblemRepository) {
	c.mu.Lock()
	c.creds = creds
	if repo != nil {
		c.repo = repo
	}
	c.byName = make(map[string]*domain.Problem)
	c.ordered = nil
	c.refreshedAt = time.Time{}
	c.generation++
	c.mu.Unlock()

	var source resolver.GroupSource
	if repo != nil {
		source = repo
	}
	c.groups.Reset(source)

	c.logger.Info("Problem cache reconfigured", "api_key", creds.Redacted())
}

// RefreshedAt returns when the snapshot was last replaced, or zero if it is stale.
func (c *MaterializedProblemCache) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.refreshedAt
}

// gate checks the credentials and returns the adapter and generation to use.
// It performs no I/O.
func (c *MaterializedProblemCache) gate() (repository.ProblemRepository, uint64, error) {
	c.mu.RLock()
	creds, repo, gen := c.creds, c.repo, c.generation
	c.mu.RUnlock()

	if err := creds.Check(); err != nil {
		return nil, 0, err
	}
	return repo, gen, nil
}

func (c *MaterializedProblemCache) isEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.ordered) == 0
}

// cloneProblems copies the problems so callers cannot mutate the snapshot.
func cloneProblems(problems []*domain.Problem) []*domain.Problem {
	out := make([]*domain.Problem, len(problems))
	for i, p := range problems {
		cp := *p
		cp.Tags = slices.Clone(p.Tags)
		cp.GroupIDs = slices.Clone(p.GroupIDs)
		cp.GroupNames = slices.Clone(p.GroupNames)
		if p.LastPracticed != nil {
			d := *p.LastPracticed
			cp.LastPracticed = &d
		}
		out[i] = &cp
	}
	return out
}
