// Package staging implements the keyed side-table a reconciliation run builds
// from its two scan passes.
//
// Each entry maps a record id to the pair of digests the source and target
// passes produced for it. The source pass creates entries (upsert), the
// target pass mutates existing ones (update-only); an id present only in the
// target therefore never appears in the store and is counted by the
// reconciler's set-difference step instead.
//
// # Backends
//
// Two implementations are provided: an in-memory map for id spaces that fit
// in process memory, and a SQLite table through gorm for runs too large for
// that. Both keep insertion order so bounded samples are deterministic, and
// both accept unordered batched writes within a pass.
package staging
