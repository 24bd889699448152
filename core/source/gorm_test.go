package source

import (
	"context"
	"testing"

	"datarecon/core/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGormSource(t *testing.T) Source {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE accounts (id INTEGER PRIMARY KEY, name TEXT, updated_at TEXT)").Error
	require.NoError(t, err)
	for _, row := range []string{
		"(1, 'alice', 't1')",
		"(2, 'bob', 't2')",
		"(3, 'carol', 't3')",
	} {
		require.NoError(t, db.Exec("INSERT INTO accounts VALUES "+row).Error)
	}

	return NewGorm("source", db, "accounts", "id")
}

func TestGormSource_Count(t *testing.T) {
	src := setupGormSource(t)
	n, err := src.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestGormSource_PageProjectionAndOrder(t *testing.T) {
	src := setupGormSource(t)
	ctx := context.Background()
	exclude := map[string]struct{}{"updated_at": {}}

	page, err := src.Page(ctx, exclude, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.NotContains(t, page[0], "updated_at")
	assert.Equal(t, "alice", page[0]["name"])

	page, err = src.Page(ctx, exclude, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "carol", page[0]["name"])

	page, err = src.Page(ctx, exclude, 3, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestGormSource_DistinctIDs(t *testing.T) {
	src := setupGormSource(t)
	ids, err := src.DistinctIDs(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	assert.Contains(t, ids, "2")
}
