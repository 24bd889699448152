package source

import (
	"context"

	"datarecon/core/record"
)

// Scanner pages through a Source deterministically and exhaustively, yielding
// bounded-size batches. It is restartable by offset and carries the run's
// field-exclusion projection into every page request.
type Scanner struct {
	src      Source
	exclude  map[string]struct{}
	pageSize int
	offset   int
}

// NewScanner creates a scanner over src with the given page size and
// projection. pageSize must be positive.
func NewScanner(src Source, exclude map[string]struct{}, pageSize int) *Scanner {
	return &Scanner{
		src:      src,
		exclude:  exclude,
		pageSize: pageSize,
	}
}

// Next fetches the next batch. An empty batch signals the end of the source.
// On error the offset does not advance; no partial-batch retry is attempted
// here since the run aborts on paging failure to avoid duplicate accounting.
func (s *Scanner) Next(ctx context.Context) ([]record.Record, error) {
	batch, err := s.src.Page(ctx, s.exclude, s.offset, s.pageSize)
	if err != nil {
		return nil, err
	}
	s.offset += len(batch)
	return batch, nil
}

// Restart repositions the scanner at the given record offset.
func (s *Scanner) Restart(offset int) {
	s.offset = offset
}

// Offset returns the number of records consumed so far.
func (s *Scanner) Offset() int {
	return s.offset
}
