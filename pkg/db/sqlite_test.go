package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_AppliesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leetrack.db")

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, table := range []string{"problems", "problem_sets"} {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}

	assert.NoError(t, Health(db))
}

func TestOpenSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leetrack.db")

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	_, err = first.ExecContext(ctx, `INSERT INTO problem_sets (id, name) VALUES ('recA', 'Blind 75')`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	var count int
	require.NoError(t, second.QueryRowContext(ctx, `SELECT COUNT(*) FROM problem_sets`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestOpenSQLite_RejectsComfortOutOfRange(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.ExecContext(ctx, `INSERT INTO problems (id, name, comfort) VALUES ('rec1', 'Two Sum', 9)`)
	assert.Error(t, err)
}
