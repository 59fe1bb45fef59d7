package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leetrack/leetrack-common/pkg/cache"
	"github.com/leetrack/leetrack-common/pkg/domain"
	"github.com/leetrack/leetrack-common/pkg/errors"
	"github.com/leetrack/leetrack-common/pkg/leetcode"
	"github.com/leetrack/leetrack-common/pkg/selection"
)

// TrackRequest describes the problem page the user is looking at.
type TrackRequest struct {
	URL        string   `json:"url"`
	Difficulty string   `json:"difficulty,omitempty"` // badge text as shown on the page
	Tags       []string `json:"tags,omitempty"`       // topic tag texts as shown on the page
	GroupIDs   []string `json:"group_ids,omitempty"`
}

// Stats summarizes the snapshot for the dashboard.
type Stats struct {
	Total          int            `json:"total"`
	ByComfort      [6]int         `json:"by_comfort"` // index is the comfort rating
	ByDifficulty   map[string]int `json:"by_difficulty"`
	Icebox         int            `json:"icebox"`
	NeverPracticed int            `json:"never_practiced"`
	DueForDrill    int            `json:"due_for_drill"`
}

// PracticeService is what the popup, the companion API and the CLI call.
// Reads go through the cache snapshot; after every successful mutation the
// service invalidates the snapshot so the next read refetches.
type PracticeService struct {
	cache    cache.ProblemCache
	selector *selection.Selector
	logger   *slog.Logger
}

// NewPracticeService creates the practice façade.
func NewPracticeService(problemCache cache.ProblemCache, selector *selection.Selector, logger *slog.Logger) *PracticeService {
	return &PracticeService{
		cache:    problemCache,
		selector: selector,
		logger:   logger,
	}
}

// ListProblems returns the snapshot, refetching when forced or stale.
func (s *PracticeService) ListProblems(ctx context.Context, forceRefresh bool) ([]*domain.Problem, error) {
	return s.cache.GetAll(ctx, forceRefresh)
}

// ActiveProblem returns the tracked record for a problem page URL, or nil if the
// problem has not been added yet.
func (s *PracticeService) ActiveProblem(ctx context.Context, rawURL string) (*domain.Problem, error) {
	slug, ok := leetcode.ParseProblemSlug(rawURL)
	if !ok {
		return nil, errors.ErrValidationFailed("url", "not a problem page")
	}
	return s.cache.GetByName(ctx, leetcode.SlugToTitle(slug))
}

// TrackProblem adds the problem behind a page URL, or returns the existing record.
// Tags outside the vocabulary are dropped.
func (s *PracticeService) TrackProblem(ctx context.Context, req TrackRequest) (*domain.Problem, error) {
	slug, ok := leetcode.ParseProblemSlug(req.URL)
	if !ok {
		return nil, errors.ErrValidationFailed("url", "not a problem page")
	}

	info, dropped := leetcode.ParsePageInfo(req.Difficulty, req.Tags)
	if len(dropped) > 0 {
		s.logger.Warn("Dropping tags outside the vocabulary", "slug", slug, "tags", dropped)
	}

	fields := domain.ProblemFields{
		Name:        leetcode.SlugToTitle(slug),
		Difficulty:  info.Difficulty,
		ProblemLink: leetcode.ProblemURL(slug),
		Tags:        info.Tags,
		GroupIDs:    req.GroupIDs,
	}

	p, err := s.cache.Create(ctx, fields)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return p, nil
}

// Lookup finds a problem by its name or by a problem page URL.
func (s *PracticeService) Lookup(ctx context.Context, nameOrURL string) (*domain.Problem, error) {
	name := strings.TrimSpace(nameOrURL)
	if slug, ok := leetcode.ParseProblemSlug(name); ok {
		name = leetcode.SlugToTitle(slug)
	}
	if name == "" {
		return nil, errors.ErrValidationFailed("name", "must not be empty")
	}

	p, err := s.cache.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.ErrNoMatch(fmt.Sprintf("name %q", name))
	}
	return p, nil
}

// Rate records a practice session: the new comfort rating and today's date.
func (s *PracticeService) Rate(ctx context.Context, id string, comfort domain.Comfort) error {
	if err := s.cache.SetComfort(ctx, id, comfort); err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}

// SetIcebox moves a problem into or out of the icebox.
func (s *PracticeService) SetIcebox(ctx context.Context, id string, value bool) error {
	if err := s.cache.SetIcebox(ctx, id, value); err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}

// PickWeak picks a problem rated exactly comfort.
func (s *PracticeService) PickWeak(ctx context.Context, comfort domain.Comfort) (*domain.Problem, error) {
	problems, err := s.cache.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}
	return s.selector.PickWeakProblem(problems, comfort)
}

// PickByTag picks a problem carrying tag under mode.
func (s *PracticeService) PickByTag(ctx context.Context, tag domain.Tag, mode domain.PickMode) (*domain.Problem, error) {
	problems, err := s.cache.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}
	return s.selector.PickByTag(problems, tag, mode)
}

// PickIcebox picks a random iceboxed problem.
func (s *PracticeService) PickIcebox(ctx context.Context) (*domain.Problem, error) {
	problems, err := s.cache.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}
	return s.selector.PickIcebox(problems)
}

// Stats counts the snapshot by comfort and difficulty.
func (s *PracticeService) Stats(ctx context.Context) (*Stats, error) {
	problems, err := s.cache.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}

	stats := &Stats{ByDifficulty: make(map[string]int, len(domain.Difficulties)+1)}
	for _, d := range domain.Difficulties {
		stats.ByDifficulty[string(d)] = 0
	}

	for _, p := range problems {
		stats.Total++
		if p.Comfort.IsValid() {
			stats.ByComfort[p.Comfort]++
		}
		if p.Difficulty.IsValid() {
			stats.ByDifficulty[string(p.Difficulty)]++
		} else {
			stats.ByDifficulty["Unknown"]++
		}
		if p.Icebox {
			stats.Icebox++
		}
		if p.NeverPracticed() {
			stats.NeverPracticed++
		}
		if !p.Icebox && s.selector.IsDue(p) {
			stats.DueForDrill++
		}
	}

	return stats, nil
}
