package recon

import "fmt"

// Side names one side of a reconciliation run.
type Side string

const (
	// SideSource is the dataset scanned by pass 1.
	SideSource Side = "source"
	// SideTarget is the dataset scanned by pass 2.
	SideTarget Side = "target"
)

// UnavailableError reports a paging or connection failure mid-pass. It is
// fatal: the run aborts and no partial result is reported as final.
type UnavailableError struct {
	Side Side
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s dataset unavailable: %v", e.Side, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// StagingWriteError reports one failed batch write. Batch writes are
// independent, so the run continues and reports a degraded result instead of
// crashing; the affected records are counted as unresolved.
type StagingWriteError struct {
	Side    Side
	Batch   int
	Records int
	Err     error
}

func (e *StagingWriteError) Error() string {
	return fmt.Sprintf("staging write failed for %s batch %d (%d records): %v", e.Side, e.Batch, e.Records, e.Err)
}

func (e *StagingWriteError) Unwrap() error {
	return e.Err
}
