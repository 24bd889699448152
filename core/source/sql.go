package source

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"datarecon/core/record"

	"github.com/jmoiron/sqlx"
)

// sqlSource reads a PostgreSQL or Snowflake table through sqlx with ORDER BY
// id LIMIT/OFFSET paging. The projection is resolved once per run from
// information_schema.
type sqlSource struct {
	name     string
	db       *sqlx.DB
	table    string
	idColumn string

	mu      sync.Mutex
	columns []string
}

// NewSQL creates a source over an sqlx-managed table.
func NewSQL(name string, db *sqlx.DB, table, idColumn string) Source {
	return &sqlSource{name: name, db: db, table: table, idColumn: idColumn}
}

func (s *sqlSource) Name() string {
	return s.name
}

func (s *sqlSource) Count(ctx context.Context) (int64, error) {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)
	if err := s.db.GetContext(ctx, &n, query); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.table, err)
	}
	return n, nil
}

func (s *sqlSource) Page(ctx context.Context, exclude map[string]struct{}, offset, limit int) ([]record.Record, error) {
	cols, err := s.projection(ctx, exclude)
	if err != nil {
		return nil, err
	}

	query := s.db.Rebind(fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s LIMIT ? OFFSET ?",
		strings.Join(cols, ", "), s.table, s.idColumn,
	))
	rows, err := s.db.QueryxContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to page %s at offset %d: %w", s.table, offset, err)
	}
	defer rows.Close()

	var page []record.Record
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", s.table, err)
		}
		// Snowflake reports column names uppercase; normalize so the id
		// field and exclusion set match regardless of backend.
		rec := make(record.Record, len(row))
		for name, val := range row {
			rec[strings.ToLower(name)] = val
		}
		page = append(page, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to page %s at offset %d: %w", s.table, offset, err)
	}
	return page, nil
}

func (s *sqlSource) DistinctIDs(ctx context.Context) (map[string]struct{}, error) {
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s", s.idColumn, s.table)
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct ids of %s: %w", s.table, err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var val any
		if err := rows.Scan(&val); err != nil {
			return nil, fmt.Errorf("failed to scan id of %s: %w", s.table, err)
		}
		if key, ok := record.Key(val); ok {
			ids[key] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list distinct ids of %s: %w", s.table, err)
	}
	return ids, nil
}

func (s *sqlSource) Close() error {
	return s.db.Close()
}

func (s *sqlSource) projection(ctx context.Context, exclude map[string]struct{}) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.columns != nil {
		return s.columns, nil
	}

	query := s.db.Rebind(
		"SELECT column_name FROM information_schema.columns WHERE LOWER(table_name) = LOWER(?) ORDER BY ordinal_position",
	)
	var names []string
	if err := s.db.SelectContext(ctx, &names, query, s.table); err != nil {
		return nil, fmt.Errorf("failed to inspect columns of %s: %w", s.table, err)
	}

	cols := make([]string, 0, len(names))
	for _, name := range names {
		if _, skip := exclude[strings.ToLower(name)]; skip {
			continue
		}
		cols = append(cols, strings.ToLower(name))
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s has no columns left after exclusion", s.table)
	}
	s.columns = cols
	return cols, nil
}
