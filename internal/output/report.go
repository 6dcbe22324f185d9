package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/torosent/sortbench/internal/metrics"
	"github.com/torosent/sortbench/internal/threshold"
)

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, stats metrics.Stats) {
	fmt.Fprintln(w, "\n--- Sort Benchmark Results ---")
	fmt.Fprintf(w, "Total Trials:      %d\n", stats.Trials)
	fmt.Fprintf(w, "Successful:        %d\n", stats.TrialSuccesses)
	fmt.Fprintf(w, "Failed:            %d\n", stats.TrialFailures)
	fmt.Fprintf(w, "Duration:          %s\n", stats.Duration)
	fmt.Fprintf(w, "Trials/sec:        %.2f\n", stats.TrialsPerSec)

	fmt.Fprintln(w, "\nSupplier:")
	fmt.Fprintf(w, "  Calls:           %d\n", stats.Calls)
	fmt.Fprintf(w, "  Failed Calls:    %d\n", stats.FailedCalls)
	fmt.Fprintf(w, "  Batches:         %d\n", stats.Batches)
	fmt.Fprintf(w, "  Empty Batches:   %d\n", stats.EmptyBatches)
	fmt.Fprintf(w, "  End of Stream:   %d\n", stats.EndOfStreams)
	fmt.Fprintf(w, "  Rows:            %d\n", stats.Rows)
	fmt.Fprintf(w, "  Rows/sec:        %.2f\n", stats.RowsPerSec)

	writeLatency(w, "Next Latency:", stats.Next)
	writeLatency(w, "Sort Latency:", stats.Sort)

	if len(stats.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, row := range metrics.SortedErrors(stats.Errors) {
			fmt.Fprintf(w, "  %s: %d\n", row.Kind, row.Count)
		}
	}
}

func writeLatency(w io.Writer, title string, lat metrics.LatencyStats) {
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintf(w, "  Min:             %s\n", lat.Min)
	fmt.Fprintf(w, "  Max:             %s\n", lat.Max)
	fmt.Fprintf(w, "  Mean:            %s\n", lat.Mean)
	fmt.Fprintf(w, "  P50:             %s\n", lat.P50)
	fmt.Fprintf(w, "  P90:             %s\n", lat.P90)
	fmt.Fprintf(w, "  P95:             %s\n", lat.P95)
	fmt.Fprintf(w, "  P99:             %s\n", lat.P99)
}

type jsonReport struct {
	metrics.Stats
	RunID      string            `json:"run_id,omitempty"`
	Thresholds *ThresholdSummary `json:"thresholds,omitempty"`
}

// PrintJSONReport outputs a JSON-formatted report. Threshold results are
// included when present.
func PrintJSONReport(w io.Writer, runID string, stats metrics.Stats, results []threshold.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Stats:      stats,
		RunID:      runID,
		Thresholds: SummarizeThresholds(results),
	})
}
