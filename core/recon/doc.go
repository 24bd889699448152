// Package recon implements the dataset reconciliation engine.
//
// A run scans the source dataset, reduces every record to a digest of its
// canonical form and stages it by id; then scans the target dataset the same
// way, updating the staged entries. Classification falls out of the staged
// digest pairs: match, source-only, differing — plus target-only, computed by
// an explicit set difference because the target pass never creates entries.
//
// # Error policy
//
// Paging or connection failures abort the run (UnavailableError); no partial
// result is reported as final. Failed staging batch writes degrade the run:
// the affected records are counted as unresolved, the run continues, and the
// report is marked incomplete. Records that cannot be canonicalized are
// staged with a side-tagged sentinel digest so they classify as differing
// rather than blocking the run.
//
// # Concurrency
//
// The two passes are strictly sequential with respect to each other. Within
// a pass, page retrieval is sequential (the pagination contract requires a
// stable order) while hashing and staging writes run on a bounded worker
// pool, since records are independent and commutative within one pass.
// Cancellation is honored between batches.
package recon
