package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/leetrack/leetrack-common/pkg/common"
)

// Difficulty is the site-assigned difficulty of a problem.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists every valid difficulty in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// IsValid returns true if the difficulty is one of Easy, Medium or Hard.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// Comfort is the user's 0-5 self rating of a problem.
// 0 means never rated, 5 means mastered.
type Comfort int

const (
	ComfortUnrated  Comfort = 0
	ComfortMastered Comfort = 5
)

// IsValid returns true if the comfort is within 0..5.
func (c Comfort) IsValid() bool {
	return c >= ComfortUnrated && c <= ComfortMastered
}

// Tag is a problem category from the closed tag vocabulary.
type Tag string

const (
	TagStack           Tag = "Stack"
	TagBinarySearch    Tag = "Binary Search"
	TagDynamic         Tag = "Dynamic"
	TagMathGeometry    Tag = "Math & Geo"
	TagDynamic1D       Tag = "Dynamic 1-D"
	TagLinkedList      Tag = "Linked List"
	TagGraphs          Tag = "Graphs"
	TagHeap            Tag = "Heap/Priority Queue"
	TagBacktracking    Tag = "Backtracking"
	TagIntervals       Tag = "Intervals"
	TagGreedy          Tag = "Greedy"
	TagBitManipulation Tag = "Bit Manipulation"
	TagTrees           Tag = "Trees"
	TagTwoPointer      Tag = "Two Pointer"
	TagSlidingWindow   Tag = "Sliding Window"
	TagDynamic2D       Tag = "Dynamic 2-D"
	TagArraysHashing   Tag = "Arrays & Hashing"
	TagAdvancedGraphs  Tag = "Advanced Graphs"
	TagTrie            Tag = "Trie"
	TagSimulation      Tag = "Simulation"
)

// Tags is the closed tag vocabulary.
var Tags = []Tag{
	TagStack, TagBinarySearch, TagDynamic, TagMathGeometry, TagDynamic1D,
	TagLinkedList, TagGraphs, TagHeap, TagBacktracking, TagIntervals,
	TagGreedy, TagBitManipulation, TagTrees, TagTwoPointer, TagSlidingWindow,
	TagDynamic2D, TagArraysHashing, TagAdvancedGraphs, TagTrie, TagSimulation,
}

// IsValid returns true if the tag belongs to the vocabulary.
func (t Tag) IsValid() bool {
	return slices.Contains(Tags, t)
}

// Problem is one practice record as materialized in the cache.
//
// Name is unique within the store and is the cache's lookup key. ID is assigned
// by the store and is empty until the record has been created.
type Problem struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Difficulty    Difficulty `json:"difficulty"`
	Comfort       Comfort    `json:"comfort"`
	ProblemLink   string     `json:"problem_link"`
	Tags          []Tag      `json:"tags"`
	GroupIDs      []string   `json:"group_ids"`      // Raw "Problem Sets" references
	GroupNames    []string   `json:"group_names"`    // GroupIDs resolved for display
	LastPracticed *time.Time `json:"last_practiced"` // Local calendar day, nil if never practiced
	Icebox        bool       `json:"icebox"`
}

// problemJSON is Problem on the wire, with LastPracticed as "YYYY-MM-DD".
type problemJSON struct {
	problemAlias
	LastPracticed *string `json:"last_practiced"`
}

type problemAlias Problem

// MarshalJSON writes LastPracticed as a calendar date with no time part.
func (p Problem) MarshalJSON() ([]byte, error) {
	out := problemJSON{problemAlias: problemAlias(p)}
	if p.LastPracticed != nil {
		day := common.FormatDate(*p.LastPracticed)
		out.LastPracticed = &day
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads LastPracticed as a local calendar date.
func (p *Problem) UnmarshalJSON(data []byte) error {
	var in problemJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = Problem(in.problemAlias)
	p.LastPracticed = nil
	if in.LastPracticed != nil && *in.LastPracticed != "" {
		day, err := common.ParseDate(*in.LastPracticed)
		if err != nil {
			return fmt.Errorf("last_practiced: %w", err)
		}
		p.LastPracticed = &day
	}
	return nil
}

// NeverPracticed returns true if the problem has no last practiced date.
func (p *Problem) NeverPracticed() bool {
	return p.LastPracticed == nil
}

// HasTag returns true if the problem carries the tag.
// Tag sets are order-insignificant.
func (p *Problem) HasTag(tag Tag) bool {
	return slices.Contains(p.Tags, tag)
}

// Fields returns the problem without its store-assigned identifier.
func (p *Problem) Fields() ProblemFields {
	return ProblemFields{
		Name:          p.Name,
		Difficulty:    p.Difficulty,
		Comfort:       p.Comfort,
		ProblemLink:   p.ProblemLink,
		Tags:          slices.Clone(p.Tags),
		GroupIDs:      slices.Clone(p.GroupIDs),
		LastPracticed: p.LastPracticed,
		Icebox:        p.Icebox,
	}
}

// ProblemFields is a problem record before the store has assigned it an ID.
type ProblemFields struct {
	Name          string     `json:"name" validate:"required,max=255"`
	Difficulty    Difficulty `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	Comfort       Comfort    `json:"comfort" validate:"gte=0,lte=5"`
	ProblemLink   string     `json:"problem_link" validate:"omitempty,url"`
	Tags          []Tag      `json:"tags" validate:"dive,required"`
	GroupIDs      []string   `json:"group_ids"`
	LastPracticed *time.Time `json:"last_practiced,omitempty"`
	Icebox        bool       `json:"icebox"`
}

// ProblemUpdate carries the partial fields of an update. Nil fields are left unchanged.
type ProblemUpdate struct {
	Comfort       *Comfort
	LastPracticed *time.Time
	Icebox        *bool
}

// IsEmpty returns true if the update would not change any field.
func (u ProblemUpdate) IsEmpty() bool {
	return u.Comfort == nil && u.LastPracticed == nil && u.Icebox == nil
}

// Group is a named problem set that problems reference by ID.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PickMode selects the policy used when picking a problem by tag.
type PickMode string

const (
	// PickModeWeakest picks among the lowest-comfort candidates.
	PickModeWeakest PickMode = "weakest"

	// PickModeDrill picks among candidates not practiced within the drill window.
	PickModeDrill PickMode = "drill"

	// PickModeRandom picks among all candidates.
	PickModeRandom PickMode = "random"
)

// IsValid returns true if the mode is a known pick mode.
func (m PickMode) IsValid() bool {
	switch m {
	case PickModeWeakest, PickModeDrill, PickModeRandom:
		return true
	default:
		return false
	}
}

// ParsePickMode parses a mode name case-insensitively.
func ParsePickMode(s string) (PickMode, bool) {
	m := PickMode(strings.ToLower(strings.TrimSpace(s)))
	return m, m.IsValid()
}

// PageInfo is what the host page reports about the problem being viewed.
// Difficulty is empty when the page did not show a recognizable one.
type PageInfo struct {
	Difficulty Difficulty `json:"difficulty"`
	Tags       []Tag      `json:"tags"`
}
