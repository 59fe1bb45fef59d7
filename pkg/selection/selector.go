package selection

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/leetrack/leetrack-common/pkg/common"
	"github.com/leetrack/leetrack-common/pkg/domain"
	"github.com/leetrack/leetrack-common/pkg/errors"
)

// DefaultDrillDays is how many days must pass before a problem is due for drilling.
const DefaultDrillDays = 7

// Selector picks one problem from a snapshot under a policy.
// It never does I/O; pass it the result of the cache's GetAll.
//
// All uniform random choices go through IntN so tests can pin the outcome.
type Selector struct {
	intN      func(n int) int
	clock     common.Clock
	drillDays int
}

// Option configures a Selector.
type Option func(*Selector)

// WithIntN replaces the random index source. f(n) must return a value in [0, n).
func WithIntN(f func(n int) int) Option {
	return func(s *Selector) {
		s.intN = f
	}
}

// WithClock sets the clock used to compute "days since last practiced".
func WithClock(clock common.Clock) Option {
	return func(s *Selector) {
		s.clock = clock
	}
}

// WithDrillDays sets the drill threshold. Problems practiced more than this many
// days ago are due.
func WithDrillDays(days int) Option {
	return func(s *Selector) {
		if days > 0 {
			s.drillDays = days
		}
	}
}

// NewSelector creates a Selector backed by math/rand/v2 and the system clock.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		intN:      rand.IntN,
		clock:     common.SystemClock,
		drillDays: DefaultDrillDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PickWeakProblem picks among problems rated exactly target.
//
// Never-practiced candidates win: one of them is picked at random. Otherwise the
// candidate with the oldest last practiced date is returned; ties go to the one
// that comes first in the snapshot.
func (s *Selector) PickWeakProblem(problems []*domain.Problem, target domain.Comfort) (*domain.Problem, error) {
	if !target.IsValid() {
		return nil, errors.ErrValidationFailed("comfort", "must be between 0 and 5")
	}

	var (
		neverPracticed []*domain.Problem
		oldest         *domain.Problem
		matched        bool
	)
	for _, p := range problems {
		if p.Comfort != target {
			continue
		}
		matched = true

		if p.NeverPracticed() {
			neverPracticed = append(neverPracticed, p)
			continue
		}
		if oldest == nil || p.LastPracticed.Before(*oldest.LastPracticed) {
			oldest = p
		}
	}

	if !matched {
		return nil, errors.ErrNoMatch(fmt.Sprintf("comfort %d", target))
	}
	if len(neverPracticed) > 0 {
		return s.pick(neverPracticed), nil
	}
	return oldest, nil
}

// PickByTag picks among problems carrying tag, using mode.
//
//   - weakest: random among the candidates with the lowest comfort
//   - drill: random among candidates never practiced or practiced more than the
//     drill threshold ago (calendar days)
//   - random: random among all candidates
func (s *Selector) PickByTag(problems []*domain.Problem, tag domain.Tag, mode domain.PickMode) (*domain.Problem, error) {
	if !mode.IsValid() {
		return nil, errors.ErrValidationFailed("mode", fmt.Sprintf("unknown pick mode %q", mode))
	}

	var candidates []*domain.Problem
	for _, p := range problems {
		if p.HasTag(tag) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, errors.ErrNoMatch(fmt.Sprintf("tag %q", tag))
	}

	switch mode {
	case domain.PickModeWeakest:
		return s.pick(weakest(candidates)), nil

	case domain.PickModeDrill:
		due := s.dueForDrill(candidates)
		if len(due) == 0 {
			return nil, errors.ErrNoMatch(fmt.Sprintf("tag %q not practiced in the last %d days", tag, s.drillDays))
		}
		return s.pick(due), nil

	default:
		return s.pick(candidates), nil
	}
}

// PickIcebox picks a random iceboxed problem.
func (s *Selector) PickIcebox(problems []*domain.Problem) (*domain.Problem, error) {
	var iceboxed []*domain.Problem
	for _, p := range problems {
		if p.Icebox {
			iceboxed = append(iceboxed, p)
		}
	}
	if len(iceboxed) == 0 {
		return nil, errors.ErrNoMatch("icebox")
	}
	return s.pick(iceboxed), nil
}

// DrillDays returns the drill threshold in days.
func (s *Selector) DrillDays() int {
	return s.drillDays
}

// IsDue reports whether p is due for drilling today.
func (s *Selector) IsDue(p *domain.Problem) bool {
	return s.isDue(p, common.Today(s.clock))
}

func (s *Selector) isDue(p *domain.Problem, today time.Time) bool {
	return p.NeverPracticed() || common.DaysBetween(*p.LastPracticed, today) > s.drillDays
}

func (s *Selector) dueForDrill(candidates []*domain.Problem) []*domain.Problem {
	today := common.Today(s.clock)

	var due []*domain.Problem
	for _, p := range candidates {
		if s.isDue(p, today) {
			due = append(due, p)
		}
	}
	return due
}

func weakest(candidates []*domain.Problem) []*domain.Problem {
	lowest := candidates[0].Comfort
	for _, p := range candidates[1:] {
		lowest = min(lowest, p.Comfort)
	}

	var out []*domain.Problem
	for _, p := range candidates {
		if p.Comfort == lowest {
			out = append(out, p)
		}
	}
	return out
}

// pick returns a uniformly random element of a non-empty slice. An out-of-range
// index from a custom IntN is clamped rather than allowed to panic.
func (s *Selector) pick(candidates []*domain.Problem) *domain.Problem {
	i := s.intN(len(candidates))
	if i < 0 || i >= len(candidates) {
		i = 0
	}
	return candidates[i]
}
