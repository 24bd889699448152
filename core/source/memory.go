package source

import (
	"context"

	"datarecon/core/record"
)

// memorySource serves a fixed slice of records in slice order. It backs the
// "static" factory kind and the test suites.
type memorySource struct {
	name    string
	idField string
	records []record.Record
}

// NewMemory creates a source over an in-memory record slice. The slice order
// is the stable page order.
func NewMemory(name, idField string, records []record.Record) Source {
	return &memorySource{name: name, idField: idField, records: records}
}

func (s *memorySource) Name() string {
	return s.name
}

func (s *memorySource) Count(ctx context.Context) (int64, error) {
	return int64(len(s.records)), nil
}

func (s *memorySource) Page(ctx context.Context, exclude map[string]struct{}, offset, limit int) ([]record.Record, error) {
	if offset >= len(s.records) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.records) {
		end = len(s.records)
	}

	page := make([]record.Record, 0, end-offset)
	for _, rec := range s.records[offset:end] {
		projected := make(record.Record, len(rec))
		for name, val := range rec {
			if _, skip := exclude[name]; skip {
				continue
			}
			projected[name] = val
		}
		page = append(page, projected)
	}
	return page, nil
}

func (s *memorySource) DistinctIDs(ctx context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{}, len(s.records))
	for _, rec := range s.records {
		if id, err := record.ID(rec, s.idField); err == nil {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

func (s *memorySource) Close() error {
	return nil
}
