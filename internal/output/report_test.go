package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/torosent/sortbench/internal/metrics"
	"github.com/torosent/sortbench/internal/threshold"
)

func sampleStats() metrics.Stats {
	return metrics.Stats{
		Trials:         20,
		TrialSuccesses: 19,
		TrialFailures:  1,
		Calls:          120,
		FailedCalls:    1,
		Batches:        100,
		Rows:           95_000,
		EndOfStreams:   19,
		RowsPerSec:     47_500,
		TrialsPerSec:   10,
		Sort: metrics.LatencyStats{
			P95:   12 * time.Millisecond,
			P95Ms: 12,
		},
		Duration: 2 * time.Second,
		Errors:   map[string]int{"Injected fault": 1},
	}
}

func TestPrintReportBasic(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, sampleStats())

	output := buf.String()
	for _, want := range []string{
		"Total Trials:      20",
		"Failed:            1",
		"Rows:            95000",
		"Next Latency:",
		"Sort Latency:",
		"P95:             12ms",
		"Injected fault: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestPrintReportOmitsEmptyErrors(t *testing.T) {
	stats := sampleStats()
	stats.Errors = nil
	var buf bytes.Buffer
	PrintReport(&buf, stats)
	if strings.Contains(buf.String(), "Errors:") {
		t.Errorf("did not expect an error section:\n%s", buf.String())
	}
}

func TestPrintJSONReport(t *testing.T) {
	th, err := threshold.Parse("sort_duration:p95 < 50")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	stats := sampleStats()
	results := threshold.NewEvaluator([]threshold.Threshold{th}).Evaluate(stats)

	var buf bytes.Buffer
	if err := PrintJSONReport(&buf, "01ARZ3NDEKTSV4RRFFQ69G5FAV", stats, results); err != nil {
		t.Fatalf("PrintJSONReport() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["run_id"] != "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
		t.Errorf("run_id = %v", decoded["run_id"])
	}
	if decoded["rows"] != float64(95_000) {
		t.Errorf("rows = %v", decoded["rows"])
	}
	sortLatency, ok := decoded["sort_latency"].(map[string]any)
	if !ok || sortLatency["p95_ms"] != float64(12) {
		t.Errorf("sort_latency = %v", decoded["sort_latency"])
	}
	thresholds, ok := decoded["thresholds"].(map[string]any)
	if !ok || thresholds["passed"] != float64(1) {
		t.Errorf("thresholds = %v", decoded["thresholds"])
	}
}

func TestPrintJSONReportWithoutThresholds(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSONReport(&buf, "", sampleStats(), nil); err != nil {
		t.Fatalf("PrintJSONReport() error = %v", err)
	}
	if strings.Contains(buf.String(), "thresholds") || strings.Contains(buf.String(), "run_id") {
		t.Errorf("expected empty fields to be omitted:\n%s", buf.String())
	}
}
