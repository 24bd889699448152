// Package source provides the dataset backends a reconciliation run scans.
//
// A Source pages through one side of the reconciliation (source or target)
// deterministically and exhaustively. The Scanner wraps a Source with a fixed
// page size, yielding bounded batches until an empty batch signals the end.
//
// # Backends
//
//   - mysql, sqlite: gorm-managed tables with the projection pushed into the
//     SELECT via schema inspection.
//   - postgres, snowflake: sqlx-managed tables with information_schema
//     projection.
//   - object: NDJSON objects in bucket storage with ranged-GET restartable
//     paging.
//   - memory: fixture-backed, for tests.
//
// # Stable ordering
//
// Every backend orders pages by the id column (or line order for objects).
// Offset/limit paging assumes the dataset is not mutated between pages of one
// pass; reconciling a live, mutating store requires a snapshot read instead.
package source
