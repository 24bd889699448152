package recon

import (
	"time"

	"datarecon/core/record"
)

// DiffSample is one differing record surfaced for human review.
type DiffSample struct {
	ID           string        `json:"id"`
	SourceDigest record.Digest `json:"source_digest"`
	TargetDigest record.Digest `json:"target_digest"`
}

// Report is the final result of one reconciliation run.
type Report struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`

	// Started and Finished bound the run in time.
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	// Complete is false when batch write failures degraded the run.
	Complete bool `json:"complete"`

	// FailedBatches counts staging batch writes that failed.
	FailedBatches int `json:"failed_batches"`

	// Unresolved counts records in failed batches whose classification is
	// unknown.
	Unresolved int64 `json:"unresolved"`

	// Malformed counts records that could not be canonicalized (classified as
	// forced mismatches) or carried no usable identifier (skipped).
	Malformed int64 `json:"malformed"`

	// Total is |sourceIds ∪ targetIds| observed during the run.
	Total int64 `json:"total"`

	// Match counts ids whose two digests are present and equal.
	Match int64 `json:"match"`

	// SourceOnly counts ids never seen by the target pass.
	SourceOnly int64 `json:"source_only"`

	// TargetOnly counts target ids absent from the staging store, computed by
	// set difference since the target pass never creates entries.
	TargetOnly int64 `json:"target_only"`

	// Differing counts ids whose two digests are present and unequal.
	Differing int64 `json:"differing"`

	// Sample holds up to the configured cap of differing entries.
	Sample []DiffSample `json:"sample"`

	// SampleTruncated is how many differing entries are not shown.
	SampleTruncated int64 `json:"sample_truncated"`

	// BatchErrors holds a capped sample of batch failure messages.
	BatchErrors []string `json:"batch_errors,omitempty"`
}

// Duration returns the wall time the run took.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Progress is the running state of one pass, delivered after each batch.
type Progress struct {
	// Side is the pass currently scanning.
	Side Side `json:"side"`
	// Batches is the number of batches processed so far in this pass.
	Batches int `json:"batches"`
	// Records is the number of records processed so far in this pass.
	Records int64 `json:"records"`
}
