package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leetrack/leetrack-common/pkg/client"
	"github.com/leetrack/leetrack-common/pkg/common"
	"github.com/leetrack/leetrack-common/pkg/domain"
	"github.com/leetrack/leetrack-common/pkg/errors"
)

const sqliteProblemColumns = `id, name, difficulty, comfort, problem_link, tags, group_ids, last_practiced, icebox`

// SQLiteProblemRepository implements ProblemRepository on a local SQLite file.
// Tags and group references are JSON arrays; dates are YYYY-MM-DD text.
type SQLiteProblemRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteProblemRepository creates a repository on a database opened with db.OpenSQLite.
func NewSQLiteProblemRepository(db *sql.DB, logger *slog.Logger) *SQLiteProblemRepository {
	return &SQLiteProblemRepository{
		db:     db,
		logger: logger,
	}
}

// ListProblems retrieves every problem in insertion order.
func (r *SQLiteProblemRepository) ListProblems(ctx context.Context) ([]*domain.Problem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteProblemColumns+` FROM problems ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, errors.ErrRemoteOperationFailed("list problems", err)
	}
	defer func() { _ = rows.Close() }()

	problems, err := scanSQLiteProblems(rows)
	if err != nil {
		return nil, errors.ErrRemoteOperationFailed("list problems", err)
	}
	return problems, nil
}

// FindProblemsByName retrieves the problems whose name matches exactly.
func (r *SQLiteProblemRepository) FindProblemsByName(ctx context.Context, name string) ([]*domain.Problem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteProblemColumns+` FROM problems WHERE name = ? ORDER BY created_at ASC, rowid ASC`, name)
	if err != nil {
		return nil, errors.ErrRemoteOperationFailed("find problem by name", err)
	}
	defer func() { _ = rows.Close() }()

	problems, err := scanSQLiteProblems(rows)
	if err != nil {
		return nil, errors.ErrRemoteOperationFailed("find problem by name", err)
	}
	return problems, nil
}

// InsertProblem creates a problem with a generated ID.
func (r *SQLiteProblemRepository) InsertProblem(ctx context.Context, fields domain.ProblemFields) (*domain.Problem, error) {
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

	args, err := sqliteProblemArgs(p)
	if err != nil {
		return nil, errors.ErrRemoteOperationFailed("insert problem", err)
	}

	query := `INSERT INTO problems (` + sqliteProblemColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, errors.ErrRemoteOperationFailed("insert problem", err)
	}

	r.logger.Debug("Inserted problem", "id", p.ID, "name", p.Name)
	return p, nil
}

// UpdateProblem writes the non-nil fields of update.
func (r *SQLiteProblemRepository) UpdateProblem(ctx context.Context, id string, update domain.ProblemUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	sets, args := updateAssignments(update, func(int) string { return "?" })
	args = append(args, id)

	// #nosec G201
	query := fmt.Sprintf(`UPDATE problems SET %s WHERE id = ?`, strings.Join(sets, ", "))

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
func (r *SQLiteProblemRepository) ListGroups(ctx context.Context) ([]domain.Group, error) {
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
func (r *SQLiteProblemRepository) UpsertGroup(ctx context.Context, group domain.Group) error {
	query := `
		INSERT INTO problem_sets (id, name) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name
	`
	if _, err := r.db.ExecContext(ctx, query, group.ID, group.Name); err != nil {
		return errors.ErrRemoteOperationFailed("upsert problem set", err)
	}
	return nil
}

// UpsertProblem creates or overwrites a problem keeping its ID.
func (r *SQLiteProblemRepository) UpsertProblem(ctx context.Context, problem *domain.Problem) error {
	args, err := sqliteProblemArgs(problem)
	if err != nil {
		return errors.ErrRemoteOperationFailed("upsert problem", err)
	}

	query := `
		INSERT INTO problems (` + sqliteProblemColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			difficulty = excluded.difficulty,
			comfort = excluded.comfort,
			problem_link = excluded.problem_link,
			tags = excluded.tags,
			group_ids = excluded.group_ids,
			last_practiced = excluded.last_practiced,
			icebox = excluded.icebox
	`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.ErrRemoteOperationFailed("upsert problem", err)
	}
	return nil
}

func scanSQLiteProblems(rows *sql.Rows) ([]*domain.Problem, error) {
	problems := make([]*domain.Problem, 0)

	for rows.Next() {
		var (
			p             domain.Problem
			tagsJSON      string
			groupsJSON    string
			lastPracticed sql.NullString
		)
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Difficulty,
			&p.Comfort,
			&p.ProblemLink,
			&tagsJSON,
			&groupsJSON,
			&lastPracticed,
			&p.Icebox,
		)
		if err != nil {
			return nil, err
		}

		var tags []string
		if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
			return nil, fmt.Errorf("problem %s: invalid tags column: %w", p.ID, err)
		}
		p.Tags = toTags(tags)

		var groupIDs []string
		if err := json.Unmarshal([]byte(groupsJSON), &groupIDs); err != nil {
			return nil, fmt.Errorf("problem %s: invalid group_ids column: %w", p.ID, err)
		}
		if len(groupIDs) > 0 {
			p.GroupIDs = groupIDs
		}

		if lastPracticed.Valid && lastPracticed.String != "" {
			d, err := common.ParseDate(lastPracticed.String)
			if err != nil {
				return nil, fmt.Errorf("problem %s: invalid last_practiced column: %w", p.ID, err)
			}
			p.LastPracticed = &d
		}

		problems = append(problems, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return problems, nil
}

func sqliteProblemArgs(p *domain.Problem) ([]any, error) {
	tags, err := json.Marshal(fromTags(p.Tags))
	if err != nil {
		return nil, err
	}
	groups, err := json.Marshal(nonNil(p.GroupIDs))
	if err != nil {
		return nil, err
	}

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
		string(tags),
		string(groups),
		lastPracticed,
		p.Icebox,
	}, nil
}
