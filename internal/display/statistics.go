package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/moguls753/lmdb-write-benchmark/internal/benchmark"
	"github.com/moguls753/lmdb-write-benchmark/internal/benchmark/statistics"
)

// Summary prints a statistical summary of the periodic rates of a run. No
// line starts with '>', so chart tooling ignores it.
func Summary(out io.Writer, label string, result *benchmark.RunResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 80))
	fmt.Fprintf(out, "Write Throughput - Statistical Summary (%s, %d samples)\n", label, len(result.Samples))
	fmt.Fprintln(out, strings.Repeat("=", 80))
	fmt.Fprintf(out, "Records:  %d in %d batches\n", result.Records, result.Batches)
	fmt.Fprintf(out, "Written:  %s\n", benchmark.FormatBytes(int64(result.Final.Bytes)))
	fmt.Fprintf(out, "Average:  %.2f MiB/s over %.2fs\n", result.Final.MiBPerSec, result.Final.Elapsed)

	if len(result.Samples) == 0 {
		fmt.Fprintln(out, "\nNo periodic samples; run longer or lower the report cadence.")
		return
	}

	fmt.Fprintln(out, "\nPeriodic MiB/s")
	stats := statistics.Calculate(result.Rates())
	fmt.Fprintln(out, "┌──────────┬──────────┬──────────┬──────────┬──────────┬──────────┬───────┐")
	fmt.Fprintln(out, "│ Median   │ Mean     │ StdDev   │ Min      │ P5       │ Max      │ CV %  │")
	fmt.Fprintln(out, "├──────────┼──────────┼──────────┼──────────┼──────────┼──────────┼───────┤")
	fmt.Fprintf(out, "│ %8.2f │ %8.2f │ %8.2f │ %8.2f │ %8.2f │ %8.2f │ %5.1f │\n",
		stats.Median, stats.Mean, stats.StdDev, stats.Min, stats.P5, stats.Max, stats.CV)
	fmt.Fprintln(out, "└──────────┴──────────┴──────────┴──────────┴──────────┴──────────┴───────┘")

	drift, ok := statistics.CalculateDrift(result.Rates())
	if !ok {
		return
	}

	fmt.Fprintln(out, "\nThroughput drift (first half vs second half):")
	fmt.Fprintln(out, "┌─────────────┬──────────┬───────────┬──────────────┐")
	fmt.Fprintln(out, "│ Median Diff │ p-value  │ Overlap?  │ Significant? │")
	fmt.Fprintln(out, "├─────────────┼──────────┼───────────┼──────────────┤")
	fmt.Fprintf(out, "│ %+10.1f%% │ %8.4f │ %-9s │ %-12s │\n",
		drift.MedianDiffPct, drift.PValue, yesNo(drift.HasOverlap), significance(drift))
	fmt.Fprintln(out, "└─────────────┴──────────┴───────────┴──────────────┘")
}

func significance(d statistics.Drift) string {
	switch {
	case !d.HasOverlap:
		return "No overlap"
	case d.PValue < 0.001:
		return "*** (p<0.001)"
	case d.PValue < 0.01:
		return "** (p<0.01)"
	case d.PValue < 0.05:
		return "* (p<0.05)"
	default:
		return "n.s."
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
