package source

import (
	"context"

	"datarecon/core/record"
)

// Source is one side of a reconciliation: a record dataset that can be paged
// through deterministically.
//
// Precondition: Page must return records in a stable order for the duration
// of one pass, and rows that have been read but not yet paged must not be
// mutated concurrently. Offset/limit paging cannot detect such mutation; for
// live stores, reconcile against a snapshot read instead.
type Source interface {
	// Name identifies the dataset in logs and errors (e.g. "source", "target").
	Name() string

	// Count returns the total number of records in the dataset.
	Count(ctx context.Context) (int64, error)

	// Page returns up to limit records starting at offset, in a stable order,
	// with the excluded fields projected away where the backend supports it.
	// An empty page signals the end of the dataset.
	Page(ctx context.Context, exclude map[string]struct{}, offset, limit int) ([]record.Record, error)

	// DistinctIDs returns the set of identifier keys in the dataset. The
	// reconciler uses it only for the target-only set-difference step.
	DistinctIDs(ctx context.Context) (map[string]struct{}, error)

	// Close releases any connections held by the source.
	Close() error
}
