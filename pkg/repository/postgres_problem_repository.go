package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq" // PostgreSQL driver and array support

	"github.com/leetrack/leetrack-common/pkg/client"
	"github.com/leetrack/leetrack-common/pkg/common"
	"github.com/leetrack/leetrack-common/pkg/domain"
	"github.com/leetrack/leetrack-common/pkg/errors"
)

const postgresProblemColumns = `id, name, difficulty, comfort, problem_link, tags, group_ids, last_practiced, icebox`

// PostgresProblemRepository implements ProblemRepository using PostgreSQL.
// Tags and group references are TEXT[] columns bound with pq.Array.
type PostgresProblemRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresProblemRepository creates a new PostgreSQL-backed problem repository.
func NewPostgresProblemRepository(db *sql.DB, logger *slog.Logger) *PostgresProblemRepository {
	return &PostgresProblemRepository{
		db:     db,
		logger: logger,
	}
}

// ListProblems retrieves every problem in insertion order.
func (r *PostgresProblemRepository) ListProblems(ctx context.Context) ([]*domain.Problem, error) {
	query := `SELECT ` + postgresProblemColumns + ` FROM problems ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.ErrRemoteOperationFailed("list problems", err)
	}
	defer func() { _ = rows.Close() }()

	problems, err := r.scanProblemRows(rows)
	if err != nil {
		return nil, errors.ErrRemoteOperationFailed("list problems", err)
	}
	return problems, nil
}

// FindProblemsByName retrieves the problems whose name matches exactly.
func (r *PostgresProblemRepository) FindProblemsByName(ctx context.Context, name string) ([]*domain.Problem, error) {
	query := `SELECT ` + postgresProblemColumns + ` FROM problems WHERE name = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, errors.ErrRemoteOperationFailed("find problem by name", err)
	}
	defer func() { _ = rows.Close() }()

	problems, err := r.scanProblemRows(rows)
	if err != nil {
		return nil, errors.ErrRemoteOperationFailed("find problem by name", err)
	}
	return problems, nil
}

// InsertProblem creates a problem with a generated ID.
func (r *PostgresProblemRepository) InsertProblem(ctx context.Context, fields domain.ProblemFields) (*domain.Problem, error) {
	p := &domain.Problem{
		ID:            client.NewRecordID(),
		Name:          fields.Name,
		Difficulty:    fields.Difficulty,
		Comfort:       fields.Comfort,
		ProblemLink:   fields.ProblemLink,
		Tags:          fields.Tags,
		GroupIDs:      fields.GroupIDs,
		LastPracticed: fields.LastPracticed,
		Icebox:        fields.Icebox,
	}

	query := `
		INSERT INTO problems (` + postgresProblemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := r.db.ExecContext(ctx, query, problemArgs(p)...); err != nil {
		return nil, errors.ErrRemoteOperationFailed("insert problem", err)
	}

	r.logger.Debug("Inserted problem", "id", p.ID, "name", p.Name)
	return p, nil
}

// UpdateProblem writes the non-nil fields of update.
func (r *PostgresProblemRepository) UpdateProblem(ctx context.Context, id string, update domain.ProblemUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	sets, args := updateAssignments(update, func(n int) string { return fmt.Sprintf("$%d", n) })
	args = append(args, id)

	// Safe: fmt.Sprintf only joins column assignments with placeholders.
	// All values are passed as query arguments.
	// #nosec G201
	query := fmt.Sprintf(`UPDATE problems SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.ErrRemoteOperationFailed("update problem", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return errors.ErrRemoteOperationFailed("update problem", err)
	}
	if n == 0 {
		return errors.ErrRemoteOperationFailed("update problem", fmt.Errorf("%w: %s", ErrProblemNotFound, id))
	}
	return nil
}

// ListGroups retrieves every problem set ordered by name.
func (r *PostgresProblemRepository) ListGroups(ctx context.Context) ([]domain.Group, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM problem_sets ORDER BY name ASC`)
	if err != nil {
		return nil, errors.ErrRemoteOperationFailed("list problem sets", err)
	}
	defer func() { _ = rows.Close() }()

	groups := make([]domain.Group, 0)
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, errors.ErrRemoteOperationFailed("list problem sets", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrRemoteOperationFailed("list problem sets", err)
	}
	return groups, nil
}

// UpsertGroup creates or renames a problem set.
func (r *PostgresProblemRepository) UpsertGroup(ctx context.Context, group domain.Group) error {
	query := `
		INSERT INTO problem_sets (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`
	if _, err := r.db.ExecContext(ctx, query, group.ID, group.Name); err != nil {
		return errors.ErrRemoteOperationFailed("upsert problem set", err)
	}
	return nil
}

// UpsertProblem creates or overwrites a problem keeping its ID.
func (r *PostgresProblemRepository) UpsertProblem(ctx context.Context, problem *domain.Problem) error {
	query := `
		INSERT INTO problems (` + postgresProblemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			difficulty = EXCLUDED.difficulty,
			comfort = EXCLUDED.comfort,
			problem_link = EXCLUDED.problem_link,
			tags = EXCLUDED.tags,
			group_ids = EXCLUDED.group_ids,
			last_practiced = EXCLUDED.last_practiced,
			icebox = EXCLUDED.icebox
	`
	if _, err := r.db.ExecContext(ctx, query, problemArgs(problem)...); err != nil {
		return errors.ErrRemoteOperationFailed("upsert problem", err)
	}
	return nil
}

// scanProblemRows scans problem rows, converting arrays and the nullable date.
func (r *PostgresProblemRepository) scanProblemRows(rows *sql.Rows) ([]*domain.Problem, error) {
	problems := make([]*domain.Problem, 0)

	for rows.Next() {
		var (
			p             domain.Problem
			tags          []string
			groupIDs      []string
			lastPracticed sql.NullTime
		)
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Difficulty,
			&p.Comfort,
			&p.ProblemLink,
			pq.Array(&tags),
			pq.Array(&groupIDs),
			&lastPracticed,
			&p.Icebox,
		)
		if err != nil {
			return nil, err
		}

		p.Tags = toTags(tags)
		if len(groupIDs) > 0 {
			p.GroupIDs = groupIDs
		}
		if lastPracticed.Valid {
			d := localDate(lastPracticed.Time)
			p.LastPracticed = &d
		}
		problems = append(problems, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return problems, nil
}

// problemArgs returns the insert arguments in postgresProblemColumns order.
func problemArgs(p *domain.Problem) []any {
	var lastPracticed any
	if p.LastPracticed != nil {
		lastPracticed = common.FormatDate(*p.LastPracticed)
	}
	return []any{
		p.ID,
		p.Name,
		string(p.Difficulty),
		int(p.Comfort),
		p.ProblemLink,
		pq.Array(fromTags(p.Tags)),
		pq.Array(nonNil(p.GroupIDs)),
		lastPracticed,
		p.Icebox,
	}
}

// updateAssignments builds "column = placeholder" pairs for the non-nil fields of
// update. placeholder receives the 1-based argument position.
func updateAssignments(update domain.ProblemUpdate, placeholder func(n int) string) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	if update.Comfort != nil {
		args = append(args, int(*update.Comfort))
		sets = append(sets, "comfort = "+placeholder(len(args)))
	}
	if update.LastPracticed != nil {
		args = append(args, common.FormatDate(*update.LastPracticed))
		sets = append(sets, "last_practiced = "+placeholder(len(args)))
	}
	if update.Icebox != nil {
		args = append(args, *update.Icebox)
		sets = append(sets, "icebox = "+placeholder(len(args)))
	}
	return sets, args
}

func toTags(values []string) []domain.Tag {
	if len(values) == 0 {
		return nil
	}
	tags := make([]domain.Tag, len(values))
	for i, v := range values {
		tags[i] = domain.Tag(v)
	}
	return tags
}

func fromTags(tags []domain.Tag) []string {
	values := make([]string, len(tags))
	for i, t := range tags {
		values[i] = string(t)
	}
	return values
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
