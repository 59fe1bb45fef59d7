package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/leetrack/leetrack-common/pkg/client"
	"github.com/leetrack/leetrack-common/pkg/common"
	"github.com/leetrack/leetrack-common/pkg/domain"
	"github.com/leetrack/leetrack-common/pkg/errors"
)

// Store table names.
const (
	TableProblems = "All Problems"
	TableGroups   = "Problem Sets"
)

// Store field names. Fields are always addressed by name.
const (
	FieldName          = "Name"
	FieldDifficulty    = "Difficulty"
	FieldComfort       = "Comfort"
	FieldProblemLink   = "Problem Link"
	FieldTags          = "type"
	FieldGroups        = "Problem Sets"
	FieldLastPracticed = "Last Practiced"
	FieldIcebox        = "Icebox"
)

// StoreProblemRepository implements ProblemRepository over a tabular StoreClient
// (the Airtable REST API or the in-memory development store).
type StoreProblemRepository struct {
	client client.StoreClient
	logger *slog.Logger
}

// NewStoreProblemRepository creates a repository on top of a store client.
func NewStoreProblemRepository(storeClient client.StoreClient, logger *slog.Logger) *StoreProblemRepository {
	return &StoreProblemRepository{
		client: storeClient,
		logger: logger,
	}
}

// ListProblems returns every row of the problems table.
func (r *StoreProblemRepository) ListProblems(ctx context.Context) ([]*domain.Problem, error) {
	records, err := r.client.SelectAll(ctx, TableProblems)
	if err != nil {
		r.logger.Error("Failed to list problems", "error", err)
		return nil, errors.ErrRemoteOperationFailed("list problems", err)
	}
	return r.decodeProblems(records), nil
}

// FindProblemsByName queries the problems table with an exact-match name filter.
func (r *StoreProblemRepository) FindProblemsByName(ctx context.Context, name string) ([]*domain.Problem, error) {
	records, err := r.client.SelectFiltered(ctx, TableProblems, client.Filter{Field: FieldName, Value: name})
	if err != nil {
		r.logger.Error("Failed to find problem by name", "name", name, "error", err)
		return nil, errors.ErrRemoteOperationFailed("find problem by name", err)
	}
	return r.decodeProblems(records), nil
}

// InsertProblem creates a row in the problems table.
func (r *StoreProblemRepository) InsertProblem(ctx context.Context, fields domain.ProblemFields) (*domain.Problem, error) {
	record, err := r.client.Insert(ctx, TableProblems, encodeProblemFields(fields))
	if err != nil {
		r.logger.Error("Failed to insert problem", "name", fields.Name, "error", err)
		return nil, errors.ErrRemoteOperationFailed("insert problem", err)
	}

	// The store echoes the row; fall back to what was sent for fields it omits.
	p := decodeProblem(record)
	if p.Name == "" {
		p.Name = fields.Name
	}
	if p.ProblemLink == "" {
		p.ProblemLink = fields.ProblemLink
	}
	if p.Difficulty == "" {
		p.Difficulty = fields.Difficulty
	}
	if len(p.Tags) == 0 {
		p.Tags = fields.Tags
	}
	if len(p.GroupIDs) == 0 {
		p.GroupIDs = fields.GroupIDs
	}
	return p, nil
}

// UpdateProblem patches the given fields of a row.
func (r *StoreProblemRepository) UpdateProblem(ctx context.Context, id string, update domain.ProblemUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	fields := make(map[string]any, 3)
	if update.Comfort != nil {
		fields[FieldComfort] = int(*update.Comfort)
	}
	if update.LastPracticed != nil {
		fields[FieldLastPracticed] = common.FormatDate(*update.LastPracticed)
	}
	if update.Icebox != nil {
		fields[FieldIcebox] = *update.Icebox
	}

	if err := r.client.Update(ctx, TableProblems, id, fields); err != nil {
		r.logger.Error("Failed to update problem", "id", id, "error", err)
		return errors.ErrRemoteOperationFailed("update problem", err)
	}
	return nil
}

// ListGroups returns every row of the problem sets table.
func (r *StoreProblemRepository) ListGroups(ctx context.Context) ([]domain.Group, error) {
	records, err := r.client.SelectAll(ctx, TableGroups)
	if err != nil {
		r.logger.Error("Failed to list problem sets", "error", err)
		return nil, errors.ErrRemoteOperationFailed("list problem sets", err)
	}

	groups := make([]domain.Group, 0, len(records))
	for _, rec := range records {
		groups = append(groups, domain.Group{ID: rec.ID, Name: stringField(rec.Fields, FieldName)})
	}
	return groups, nil
}

func (r *StoreProblemRepository) decodeProblems(records []client.Record) []*domain.Problem {
	problems := make([]*domain.Problem, 0, len(records))
	for _, rec := range records {
		p := decodeProblem(rec)
		if p.Name == "" {
			r.logger.Warn("Skipping problem row without a name", "id", rec.ID)
			continue
		}
		problems = append(problems, p)
	}
	return problems
}

// decodeProblem maps a store row to a Problem. Unknown tags and difficulties are
// kept as-is so a read never fails on data entered by hand in the store.
func decodeProblem(rec client.Record) *domain.Problem {
	p := &domain.Problem{
		ID:          rec.ID,
		Name:        stringField(rec.Fields, FieldName),
		Difficulty:  domain.Difficulty(stringField(rec.Fields, FieldDifficulty)),
		Comfort:     domain.Comfort(intField(rec.Fields, FieldComfort)),
		ProblemLink: stringField(rec.Fields, FieldProblemLink),
		GroupIDs:    stringsField(rec.Fields, FieldGroups),
		Icebox:      boolField(rec.Fields, FieldIcebox),
	}

	for _, t := range stringsField(rec.Fields, FieldTags) {
		p.Tags = append(p.Tags, domain.Tag(t))
	}

	if s := stringField(rec.Fields, FieldLastPracticed); s != "" {
		// Date fields arrive as YYYY-MM-DD; tolerate a full timestamp as well.
		if d, err := common.ParseDate(s); err == nil {
			p.LastPracticed = &d
		} else if ts, err := time.Parse(time.RFC3339, s); err == nil {
			d := localDate(ts)
			p.LastPracticed = &d
		}
	}

	return p
}

func encodeProblemFields(f domain.ProblemFields) map[string]any {
	fields := map[string]any{
		FieldName:    f.Name,
		FieldComfort: int(f.Comfort),
	}
	if f.Difficulty != "" {
		fields[FieldDifficulty] = string(f.Difficulty)
	}
	if f.ProblemLink != "" {
		fields[FieldProblemLink] = f.ProblemLink
	}
	if len(f.Tags) > 0 {
		tags := make([]string, len(f.Tags))
		for i, t := range f.Tags {
			tags[i] = string(t)
		}
		fields[FieldTags] = tags
	}
	if len(f.GroupIDs) > 0 {
		fields[FieldGroups] = f.GroupIDs
	}
	if f.LastPracticed != nil {
		fields[FieldLastPracticed] = common.FormatDate(*f.LastPracticed)
	}
	if f.Icebox {
		fields[FieldIcebox] = true
	}
	return fields
}

func stringField(fields map[string]any, name string) string {
	switch v := fields[name].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// intField reads a number that may have been decoded from JSON (float64,
// json.Number) or set directly in Go (int).
func intField(fields map[string]any, name string) int {
	switch v := fields[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(math.Round(v))
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, _ := v.Float64()
			return int(math.Round(f))
		}
		return int(n)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

func boolField(fields map[string]any, name string) bool {
	v, _ := fields[name].(bool)
	return v
}

func stringsField(fields map[string]any, name string) []string {
	switch v := fields[name].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}
