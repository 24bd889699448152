package source

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLSource(t *testing.T) (Source, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSQL("source", sqlx.NewDb(db, "sqlmock"), "accounts", "id"), mock
}

func TestSQLSource_Count(t *testing.T) {
	src, mock := setupSQLSource(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM accounts")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := src.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 42, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSource_Page(t *testing.T) {
	src, mock := setupSQLSource(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT column_name FROM information_schema.columns WHERE LOWER(table_name) = LOWER(?) ORDER BY ordinal_position",
	)).WithArgs("accounts").WillReturnRows(
		sqlmock.NewRows([]string{"column_name"}).
			AddRow("id").AddRow("name").AddRow("updated_at"),
	)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, name FROM accounts ORDER BY id LIMIT ? OFFSET ?",
	)).WithArgs(2, 0).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "alice").
			AddRow(int64(2), "bob"),
	)

	exclude := map[string]struct{}{"updated_at": {}}
	page, err := src.Page(context.Background(), exclude, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "alice", page[0]["name"])
	assert.NotContains(t, page[0], "updated_at")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSource_PageFailure(t *testing.T) {
	src, mock := setupSQLSource(t)

	mock.ExpectQuery("information_schema").WillReturnRows(
		sqlmock.NewRows([]string{"column_name"}).AddRow("id"),
	)
	mock.ExpectQuery("SELECT id FROM accounts").WillReturnError(assert.AnError)

	_, err := src.Page(context.Background(), nil, 0, 10)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to page accounts")
}

func TestSQLSource_DistinctIDs(t *testing.T) {
	src, mock := setupSQLSource(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT id FROM accounts")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(7)))

	ids, err := src.DistinctIDs(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "7")
}

func TestSQLSource_AllColumnsExcluded(t *testing.T) {
	src, mock := setupSQLSource(t)

	mock.ExpectQuery("information_schema").WillReturnRows(
		sqlmock.NewRows([]string{"column_name"}).AddRow("updated_at"),
	)

	_, err := src.Page(context.Background(), map[string]struct{}{"updated_at": {}}, 0, 10)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no columns left")
}
