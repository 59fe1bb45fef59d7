package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leetrack/leetrack-common/pkg/common"
	"github.com/leetrack/leetrack-common/pkg/domain"
	customerrors "github.com/leetrack/leetrack-common/pkg/errors"
)

var now = time.Date(2024, 3, 20, 15, 0, 0, 0, time.Local)

func day(s string) *time.Time {
	d, err := common.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func daysAgo(n int) *time.Time {
	d := common.TruncateToLocalDate(now).AddDate(0, 0, -n)
	return &d
}

// fixedIndex always picks index i.
func fixedIndex(i int) Option {
	return WithIntN(func(int) int { return i })
}

// lastIndex always picks the last candidate.
func lastIndex() Option {
	return WithIntN(func(n int) int { return n - 1 })
}

func newTestSelector(opts ...Option) *Selector {
	return NewSelector(append([]Option{WithClock(common.ClockFunc(func() time.Time { return now }))}, opts...)...)
}

func TestPickWeakProblem_NeverPracticedWins(t *testing.T) {
	unpracticed := &domain.Problem{Name: "Two Sum", Comfort: 1}
	practiced := &domain.Problem{Name: "3Sum", Comfort: 1, LastPracticed: day("2024-01-01")}
	problems := []*domain.Problem{practiced, unpracticed}

	for _, opt := range []Option{fixedIndex(0), lastIndex()} {
		got, err := newTestSelector(opt).PickWeakProblem(problems, 1)

		require.NoError(t, err)
		assert.Same(t, unpracticed, got)
	}
}

func TestPickWeakProblem_RandomAmongNeverPracticed(t *testing.T) {
	a := &domain.Problem{Name: "A", Comfort: 0}
	b := &domain.Problem{Name: "B", Comfort: 0}
	c := &domain.Problem{Name: "C", Comfort: 0}
	problems := []*domain.Problem{a, b, c}

	var sizes []int
	s := newTestSelector(WithIntN(func(n int) int {
		sizes = append(sizes, n)
		return 1
	}))

	got, err := s.PickWeakProblem(problems, 0)

	require.NoError(t, err)
	assert.Same(t, b, got)
	assert.Equal(t, []int{3}, sizes)
}

func TestPickWeakProblem_OldestPracticedIsDeterministic(t *testing.T) {
	older := &domain.Problem{Name: "Older", Comfort: 2, LastPracticed: day("2024-01-10")}
	newer := &domain.Problem{Name: "Newer", Comfort: 2, LastPracticed: day("2024-02-01")}
	other := &domain.Problem{Name: "Other comfort", Comfort: 3, LastPracticed: day("2023-01-01")}

	calls := 0
	s := newTestSelector(WithIntN(func(n int) int {
		calls++
		return 0
	}))

	for _, problems := range [][]*domain.Problem{{newer, older, other}, {other, older, newer}} {
		got, err := s.PickWeakProblem(problems, 2)

		require.NoError(t, err)
		assert.Same(t, older, got)
	}
	assert.Zero(t, calls, "no randomness when every candidate has been practiced")
}

func TestPickWeakProblem_TieGoesToFirst(t *testing.T) {
	first := &domain.Problem{Name: "First", Comfort: 4, LastPracticed: day("2024-01-10")}
	second := &domain.Problem{Name: "Second", Comfort: 4, LastPracticed: day("2024-01-10")}

	got, err := newTestSelector().PickWeakProblem([]*domain.Problem{first, second}, 4)

	require.NoError(t, err)
	assert.Same(t, first, got)
}

func TestPickWeakProblem_NoMatch(t *testing.T) {
	problems := []*domain.Problem{{Name: "Two Sum", Comfort: 3}}

	got, err := newTestSelector().PickWeakProblem(problems, 1)

	assert.Nil(t, got)
	assert.True(t, customerrors.IsCode(err, customerrors.ErrCodeNoMatch))

	_, err = newTestSelector().PickWeakProblem(nil, 0)
	assert.True(t, customerrors.IsCode(err, customerrors.ErrCodeNoMatch))
}

func TestPickWeakProblem_InvalidTarget(t *testing.T) {
	_, err := newTestSelector().PickWeakProblem(nil, 6)

	assert.True(t, customerrors.IsCode(err, customerrors.ErrCodeValidationFailed))
}

func TestPickByTag_Drill(t *testing.T) {
	recent := &domain.Problem{Name: "Recent", Tags: []domain.Tag{domain.TagTrees}, LastPracticed: daysAgo(3)}
	stale := &domain.Problem{Name: "Stale", Tags: []domain.Tag{domain.TagTrees}, LastPracticed: daysAgo(10)}

	t.Run("only stale candidate is due", func(t *testing.T) {
		for _, opt := range []Option{fixedIndex(0), lastIndex()} {
			got, err := newTestSelector(opt).PickByTag([]*domain.Problem{recent, stale}, domain.TagTrees, domain.PickModeDrill)

			require.NoError(t, err)
			assert.Same(t, stale, got)
		}
	})

	t.Run("nothing due", func(t *testing.T) {
		got, err := newTestSelector().PickByTag([]*domain.Problem{recent}, domain.TagTrees, domain.PickModeDrill)

		assert.Nil(t, got)
		require.Error(t, err)
		assert.True(t, customerrors.IsCode(err, customerrors.ErrCodeNoMatch))
		assert.Contains(t, err.Error(), "7 days")
	})

	t.Run("boundary is exclusive at the threshold", func(t *testing.T) {
		exactly := &domain.Problem{Name: "Seven", Tags: []domain.Tag{domain.TagTrees}, LastPracticed: daysAgo(7)}
		eight := &domain.Problem{Name: "Eight", Tags: []domain.Tag{domain.TagTrees}, LastPracticed: daysAgo(8)}

		_, err := newTestSelector().PickByTag([]*domain.Problem{exactly}, domain.TagTrees, domain.PickModeDrill)
		assert.True(t, customerrors.IsCode(err, customerrors.ErrCodeNoMatch))

		got, err := newTestSelector().PickByTag([]*domain.Problem{exactly, eight}, domain.TagTrees, domain.PickModeDrill)
		require.NoError(t, err)
		assert.Same(t, eight, got)
	})

	t.Run("never practiced is due", func(t *testing.T) {
		fresh := &domain.Problem{Name: "Fresh", Tags: []domain.Tag{domain.TagTrees}}

		got, err := newTestSelector().PickByTag([]*domain.Problem{recent, fresh}, domain.TagTrees, domain.PickModeDrill)

		require.NoError(t, err)
		assert.Same(t, fresh, got)
	})

	t.Run("custom threshold", func(t *testing.T) {
		got, err := newTestSelector(WithDrillDays(2)).PickByTag([]*domain.Problem{recent}, domain.TagTrees, domain.PickModeDrill)

		require.NoError(t, err)
		assert.Same(t, recent, got)
	})
}

func TestPickByTag_Weakest(t *testing.T) {
	low1 := &domain.Problem{Name: "Low 1", Comfort: 1, Tags: []domain.Tag{domain.TagGraphs}}
	low2 := &domain.Problem{Name: "Low 2", Comfort: 1, Tags: []domain.Tag{domain.TagGraphs, domain.TagTrees}}
	high := &domain.Problem{Name: "High", Comfort: 4, Tags: []domain.Tag{domain.TagGraphs}}
	lowerOtherTag := &domain.Problem{Name: "Other", Comfort: 0, Tags: []domain.Tag{domain.TagStack}}
	problems := []*domain.Problem{high, low1, lowerOtherTag, low2}

	got, err := newTestSelector(fixedIndex(0)).PickByTag(problems, domain.TagGraphs, domain.PickModeWeakest)
	require.NoError(t, err)
	assert.Same(t, low1, got)

	got, err = newTestSelector(lastIndex()).PickByTag(problems, domain.TagGraphs, domain.PickModeWeakest)
	require.NoError(t, err)
	assert.Same(t, low2, got)
}

func TestPickByTag_Random(t *testing.T) {
	a := &domain.Problem{Name: "A", Comfort: 5, Tags: []domain.Tag{domain.TagTrie}, LastPracticed: daysAgo(0)}
	b := &domain.Problem{Name: "B", Comfort: 0, Tags: []domain.Tag{domain.TagTrie}}
	problems := []*domain.Problem{a, b}

	got, err := newTestSelector(fixedIndex(0)).PickByTag(problems, domain.TagTrie, domain.PickModeRandom)
	require.NoError(t, err)
	assert.Same(t, a, got, "random ignores comfort and recency")
}

func TestPickByTag_NoCandidates(t *testing.T) {
	problems := []*domain.Problem{{Name: "Two Sum", Tags: []domain.Tag{domain.TagArraysHashing}}}

	for _, mode := range []domain.PickMode{domain.PickModeWeakest, domain.PickModeDrill, domain.PickModeRandom} {
		got, err := newTestSelector().PickByTag(problems, domain.TagTrees, mode)

		assert.Nil(t, got)
		assert.True(t, customerrors.IsCode(err, customerrors.ErrCodeNoMatch), "mode %s", mode)
	}
}

func TestPickByTag_InvalidMode(t *testing.T) {
	_, err := newTestSelector().PickByTag(nil, domain.TagTrees, "sideways")

	assert.True(t, customerrors.IsCode(err, customerrors.ErrCodeValidationFailed))
}

func TestPickIcebox(t *testing.T) {
	active := &domain.Problem{Name: "Active"}
	frozen := &domain.Problem{Name: "Frozen", Icebox: true}

	t.Run("picks only iceboxed problems", func(t *testing.T) {
		for _, opt := range []Option{fixedIndex(0), lastIndex()} {
			got, err := newTestSelector(opt).PickIcebox([]*domain.Problem{active, frozen})

			require.NoError(t, err)
			assert.Same(t, frozen, got)
		}
	})

	t.Run("empty icebox fails", func(t *testing.T) {
		got, err := newTestSelector().PickIcebox([]*domain.Problem{active})

		assert.Nil(t, got)
		assert.True(t, customerrors.IsCode(err, customerrors.ErrCodeNoMatch))
	})
}

func TestPick_ChosenIsAlwaysACandidate(t *testing.T) {
	problems := []*domain.Problem{
		{Name: "A", Comfort: 1, Tags: []domain.Tag{domain.TagGreedy}, Icebox: true},
		{Name: "B", Comfort: 1, Tags: []domain.Tag{domain.TagGreedy}},
		{Name: "C", Comfort: 2, Tags: []domain.Tag{domain.TagGreedy}, Icebox: true},
		{Name: "D", Comfort: 1, Tags: []domain.Tag{domain.TagIntervals}},
	}

	// The default source is math/rand/v2; repeat to cover several outcomes.
	s := newTestSelector()
	for i := 0; i < 50; i++ {
		weak, err := s.PickByTag(problems, domain.TagGreedy, domain.PickModeWeakest)
		require.NoError(t, err)
		assert.Contains(t, []string{"A", "B"}, weak.Name)

		frozen, err := s.PickIcebox(problems)
		require.NoError(t, err)
		assert.True(t, frozen.Icebox)

		rated, err := s.PickWeakProblem(problems, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.Comfort(1), rated.Comfort)
	}
}

func TestPick_OutOfRangeIndexIsClamped(t *testing.T) {
	only := &domain.Problem{Name: "Only", Icebox: true}

	got, err := newTestSelector(fixedIndex(5)).PickIcebox([]*domain.Problem{only})

	require.NoError(t, err)
	assert.Same(t, only, got)
}
