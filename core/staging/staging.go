package staging

import (
	"context"

	"datarecon/core/record"
)

// Pair is one (id, digest) write produced by a scan pass.
type Pair struct {
	ID     string
	Digest record.Digest
}

// Entry pairs the source and target digests staged for one record id during
// a run. An empty digest means that side never produced one. Entries are
// created by the source pass only; the target pass mutates existing entries.
type Entry struct {
	ID           string        `json:"id"`
	SourceDigest record.Digest `json:"source_digest"`
	TargetDigest record.Digest `json:"target_digest"`
}

// Predicate selects entries by classification.
type Predicate int

const (
	// All matches every staged entry.
	All Predicate = iota
	// Match selects entries whose two digests are present and equal.
	Match
	// SourceOnly selects entries with no target digest.
	SourceOnly
	// Differing selects entries whose two digests are present and unequal.
	Differing
)

// Matches reports whether the entry satisfies the predicate.
func (p Predicate) Matches(e Entry) bool {
	switch p {
	case Match:
		return e.SourceDigest != "" && e.TargetDigest != "" && e.SourceDigest == e.TargetDigest
	case SourceOnly:
		return e.TargetDigest == ""
	case Differing:
		return e.SourceDigest != "" && e.TargetDigest != "" && e.SourceDigest != e.TargetDigest
	default:
		return true
	}
}

// Store is the keyed side-table built up by the two scan passes. It is scoped
// to one reconciliation run; Reset discards any previous run's entries.
//
// Implementations accept unordered batched writes: batches within one pass
// may land in any order, and a failed batch is reported as a batch-level
// error without poisoning other batches.
type Store interface {
	// Reset drops all entries, returning the store to its initial state.
	Reset(ctx context.Context) error

	// UpsertSourceBatch creates entries for unknown ids and overwrites the
	// source digest of known ones. Re-running the source pass for the same id
	// overwrites rather than duplicates.
	UpsertSourceBatch(ctx context.Context, pairs []Pair) error

	// UpdateTargetBatch sets the target digest on existing entries only.
	// Ids unknown to the store are silently skipped; records present only in
	// the target are detected by a separate set-difference step, not here.
	UpdateTargetBatch(ctx context.Context, pairs []Pair) error

	// Count returns the number of entries matching the predicate.
	Count(ctx context.Context, pred Predicate) (int64, error)

	// Sample returns up to limit entries matching the predicate, in insertion
	// order, so diff reports stay bounded and deterministic.
	Sample(ctx context.Context, pred Predicate, limit int) ([]Entry, error)

	// CountExisting returns how many of the given ids are staged. The
	// reconciler subtracts this from the target id count to obtain the
	// target-only total.
	CountExisting(ctx context.Context, ids map[string]struct{}) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
