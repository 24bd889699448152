package source

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"datarecon/core/database"
	"datarecon/core/record"

	"gorm.io/gorm"
)

// gormSource reads a MySQL or SQLite table through gorm with ORDER BY id
// LIMIT/OFFSET paging. The excluded-field projection is pushed down into the
// SELECT column list using schema inspection.
type gormSource struct {
	name     string
	db       *gorm.DB
	table    string
	idColumn string

	mu      sync.Mutex
	columns []string // memoized projection, exclusion set is fixed per run
}

// NewGorm creates a source over a gorm-managed table.
func NewGorm(name string, db *gorm.DB, table, idColumn string) Source {
	return &gormSource{name: name, db: db, table: table, idColumn: idColumn}
}

func (s *gormSource) Name() string {
	return s.name
}

func (s *gormSource) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Table(s.table).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.table, err)
	}
	return n, nil
}

func (s *gormSource) Page(ctx context.Context, exclude map[string]struct{}, offset, limit int) ([]record.Record, error) {
	cols, err := s.projection(exclude)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	err = s.db.WithContext(ctx).
		Table(s.table).
		Select(strings.Join(cols, ", ")).
		Order(s.idColumn + " ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to page %s at offset %d: %w", s.table, offset, err)
	}

	page := make([]record.Record, 0, len(rows))
	for _, row := range rows {
		page = append(page, record.Record(row))
	}
	return page, nil
}

func (s *gormSource) DistinctIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.WithContext(ctx).
		Table(s.table).
		Distinct(s.idColumn).
		Rows()
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

func (s *gormSource) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *gormSource) projection(exclude map[string]struct{}) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.columns != nil {
		return s.columns, nil
	}

	cols, err := database.ProjectColumns(s.db, s.table, exclude)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s has no columns left after exclusion", s.table)
	}
	s.columns = cols
	return cols, nil
}
