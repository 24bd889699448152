package report

import (
	"fmt"
	"strings"

	"datarecon/core/recon"
)

// Render produces the human-readable text form of a run report: the five
// counts, the capped differing sample with a trailing "more not shown" line,
// and a partial-run banner when batch failures degraded the result.
func Render(rep *recon.Report) string {
	var b strings.Builder

	status := "COMPLETE"
	if !rep.Complete {
		status = fmt.Sprintf("PARTIAL (%d failed batches, %d records unresolved)",
			rep.FailedBatches, rep.Unresolved)
	}

	fmt.Fprintf(&b, "Reconciliation %s\n", rep.RunID)
	fmt.Fprintf(&b, "Status:      %s\n", status)
	fmt.Fprintf(&b, "Duration:    %s\n", rep.Duration())
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "Total:       %d\n", rep.Total)
	fmt.Fprintf(&b, "Match:       %d\n", rep.Match)
	fmt.Fprintf(&b, "Source only: %d\n", rep.SourceOnly)
	fmt.Fprintf(&b, "Target only: %d\n", rep.TargetOnly)
	fmt.Fprintf(&b, "Differing:   %d\n", rep.Differing)
	if rep.Malformed > 0 {
		fmt.Fprintf(&b, "Malformed:   %d\n", rep.Malformed)
	}

	if len(rep.Sample) > 0 {
		fmt.Fprintf(&b, "\nDiffering records:\n")
		for _, s := range rep.Sample {
			fmt.Fprintf(&b, "  %s  source=%s  target=%s\n", s.ID, s.SourceDigest, s.TargetDigest)
		}
		if rep.SampleTruncated > 0 {
			fmt.Fprintf(&b, "  %d more not shown\n", rep.SampleTruncated)
		}
	}

	if len(rep.BatchErrors) > 0 {
		fmt.Fprintf(&b, "\nBatch errors:\n")
		for _, msg := range rep.BatchErrors {
			fmt.Fprintf(&b, "  - %s\n", msg)
		}
	}

	return b.String()
}
