// Package record defines the dataset record model and its reduction to
// fixed-size digests.
//
// A record is reduced in two steps: Canonicalize produces a deterministic,
// field-order-independent byte form with the configured volatile fields
// removed, and DigestBytes hashes that form with SHA-256. All comparison in
// the reconciliation engine happens on digests, never on raw records, which
// is what bounds memory for arbitrarily large datasets.
//
// # Canonical form
//
// The canonical form is JSON-shaped with three extra rules: object keys are
// sorted ascending by code point at every depth, strings are NFC normalized
// with HTML escaping disabled, and every numeric representation is reduced to
// one decimal string (int64(1), float64(1.0) and json.Number("1.00") are the
// same value). Field exclusion applies at the top level only.
//
// Values outside the mapping/sequence/scalar vocabulary fail with an error;
// the engine classifies such records as forced mismatches rather than
// aborting the run.
package record
