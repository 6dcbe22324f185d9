package threshold

import (
	"strings"
	"testing"
	"time"

	"github.com/torosent/sortbench/internal/metrics"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Threshold
		wantError bool
	}{
		{
			name:  "sort p95 latency",
			input: "sort_duration:p95 < 500",
			want: Threshold{
				Metric:    "sort_duration",
				Aggregate: "p95",
				Operator:  "<",
				Value:     500,
				Raw:       "sort_duration:p95 < 500",
			},
		},
		{
			name:  "trial failure rate",
			input: "trial_failed:rate < 0.01",
			want: Threshold{
				Metric:    "trial_failed",
				Aggregate: "rate",
				Operator:  "<",
				Value:     0.01,
				Raw:       "trial_failed:rate < 0.01",
			},
		},
		{
			name:  "supplier call p99 with <=",
			input: "next_duration:p99<=2.5",
			want: Threshold{
				Metric:    "next_duration",
				Aggregate: "p99",
				Operator:  "<=",
				Value:     2.5,
				Raw:       "next_duration:p99<=2.5",
			},
		},
		{
			name:  "row rate with >",
			input: "  rows:rate > 100000  ",
			want: Threshold{
				Metric:    "rows",
				Aggregate: "rate",
				Operator:  ">",
				Value:     100000,
				Raw:       "rows:rate > 100000",
			},
		},
		{
			name:  "batch count",
			input: "batches:count >= 10",
			want: Threshold{
				Metric:    "batches",
				Aggregate: "count",
				Operator:  ">=",
				Value:     10,
				Raw:       "batches:count >= 10",
			},
		},
		{name: "empty string", input: "", wantError: true},
		{name: "missing operator", input: "sort_duration:p95 500", wantError: true},
		{name: "invalid metric", input: "http_req_duration:p95 < 500", wantError: true},
		{name: "invalid aggregate", input: "sort_duration:p85 < 500", wantError: true},
		{name: "invalid operator", input: "sort_duration:p95 << 500", wantError: true},
		{name: "value not a number", input: "sort_duration:p95 < abc", wantError: true},
		{name: "value with two dots", input: "sort_duration:p95 < 1.2.3", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantError {
				t.Fatalf("Parse() error = %v, wantError %v", err, tt.wantError)
			}
			if !tt.wantError && got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMultiple(t *testing.T) {
	got, err := ParseMultiple([]string{
		"sort_duration:p95 < 500",
		"trial_failed:rate < 0.01",
		"rows:rate > 100",
	})
	if err != nil {
		t.Fatalf("ParseMultiple() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ParseMultiple() returned %d thresholds, want 3", len(got))
	}

	got, err = ParseMultiple(nil)
	if err != nil || got != nil {
		t.Fatalf("ParseMultiple(nil) = %v, %v", got, err)
	}

	_, err = ParseMultiple([]string{"sort_duration:p95 < 500", "invalid threshold"})
	if err == nil || !strings.Contains(err.Error(), "threshold[1]") {
		t.Fatalf("expected error naming threshold[1], got %v", err)
	}
}

func sampleStats() metrics.Stats {
	return metrics.Stats{
		Trials:         100,
		TrialSuccesses: 98,
		TrialFailures:  2,
		Batches:        4000,
		Rows:           1_000_000,
		RowsPerSec:     250_000,
		Next: metrics.LatencyStats{
			MinMs:  0.01,
			MaxMs:  3,
			MeanMs: 0.2,
			P50Ms:  0.1,
			P90Ms:  0.5,
			P95Ms:  0.8,
			P99Ms:  2,
		},
		Sort: metrics.LatencyStats{
			MinMs:  10.5,
			MaxMs:  500.25,
			MeanMs: 100.75,
			P50Ms:  80.5,
			P90Ms:  200.25,
			P95Ms:  300.5,
			P99Ms:  400.5,
		},
		Duration: 4 * time.Second,
	}
}

func TestEvaluator(t *testing.T) {
	stats := sampleStats()

	tests := []struct {
		name       string
		thresholds []string
		wantPass   []bool
	}{
		{
			name: "all thresholds pass",
			thresholds: []string{
				"sort_duration:p99 < 500",
				"trial_failed:rate < 0.05",
				"rows:rate > 100000",
			},
			wantPass: []bool{true, true, true},
		},
		{
			name: "some thresholds fail",
			thresholds: []string{
				"sort_duration:p99 < 300",
				"trial_failed:count < 1",
				"batches:count >= 4000",
			},
			wantPass: []bool{false, false, true},
		},
		{
			name: "supplier call latency",
			thresholds: []string{
				"next_duration:p50 < 1",
				"next_duration:max <= 3",
				"next_duration:min > 0.1",
			},
			wantPass: []bool{true, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thresholds, err := ParseMultiple(tt.thresholds)
			if err != nil {
				t.Fatalf("ParseMultiple() error = %v", err)
			}

			results := NewEvaluator(thresholds).Evaluate(stats)
			if len(results) != len(tt.wantPass) {
				t.Fatalf("got %d results, want %d", len(results), len(tt.wantPass))
			}
			for i, result := range results {
				if result.Pass != tt.wantPass[i] {
					t.Errorf("threshold[%d] %q: got pass=%v, want %v (actual=%.2f)",
						i, result.Threshold.Raw, result.Pass, tt.wantPass[i], result.Actual)
				}
			}
		})
	}
}

func TestEvaluatorReportsExtractionError(t *testing.T) {
	results := NewEvaluator([]Threshold{{Metric: "batches", Aggregate: "rate", Operator: ">", Raw: "batches:rate > 0"}}).
		Evaluate(sampleStats())
	if len(results) != 1 || results[0].Pass {
		t.Fatalf("expected one failing result, got %+v", results)
	}
	if !strings.HasPrefix(results[0].Message, "error:") {
		t.Errorf("Message = %q", results[0].Message)
	}
}

func TestEvaluatorNoThresholds(t *testing.T) {
	if got := NewEvaluator(nil).Evaluate(sampleStats()); got != nil {
		t.Fatalf("expected nil results, got %v", got)
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name     string
		actual   float64
		operator string
		expected float64
		want     bool
	}{
		{"less than true", 50, "<", 100, true},
		{"less than equal", 100, "<", 100, false},
		{"less than or equal equal", 100, "<=", 100, true},
		{"less than or equal false", 150, "<=", 100, false},
		{"greater than true", 150, ">", 100, true},
		{"greater than equal", 100, ">", 100, false},
		{"greater than or equal equal", 100, ">=", 100, true},
		{"greater than or equal false", 50, ">=", 100, false},
		{"equal true", 100, "==", 100, true},
		{"equal false", 100, "==", 101, false},
		{"equal with floating point precision", 100.0000000001, "==", 100, true},
		{"unknown operator", 1, "!=", 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compareValues(tt.actual, tt.operator, tt.expected); got != tt.want {
				t.Errorf("compareValues(%.2f, %s, %.2f) = %v, want %v",
					tt.actual, tt.operator, tt.expected, got, tt.want)
			}
		})
	}
}

func TestExtractMetricValue(t *testing.T) {
	stats := sampleStats()

	tests := []struct {
		name      string
		threshold Threshold
		want      float64
		wantError bool
	}{
		{"sort p50", Threshold{Metric: "sort_duration", Aggregate: "p50"}, 80.5, false},
		{"sort p95", Threshold{Metric: "sort_duration", Aggregate: "p95"}, 300.5, false},
		{"sort avg", Threshold{Metric: "sort_duration", Aggregate: "avg"}, 100.75, false},
		{"sort min", Threshold{Metric: "sort_duration", Aggregate: "min"}, 10.5, false},
		{"next p90", Threshold{Metric: "next_duration", Aggregate: "p90"}, 0.5, false},
		{"next p99", Threshold{Metric: "next_duration", Aggregate: "p99"}, 2, false},
		{"trial failed rate", Threshold{Metric: "trial_failed", Aggregate: "rate"}, 0.02, false},
		{"trial failed count", Threshold{Metric: "trial_failed", Aggregate: "count"}, 2, false},
		{"rows count", Threshold{Metric: "rows", Aggregate: "count"}, 1_000_000, false},
		{"rows rate", Threshold{Metric: "rows", Aggregate: "rate"}, 250_000, false},
		{"batches count", Threshold{Metric: "batches", Aggregate: "count"}, 4000, false},
		{"unsupported metric", Threshold{Metric: "invalid_metric", Aggregate: "p95"}, 0, true},
		{"latency with rate", Threshold{Metric: "sort_duration", Aggregate: "rate"}, 0, true},
		{"failures with p95", Threshold{Metric: "trial_failed", Aggregate: "p95"}, 0, true},
		{"rows with max", Threshold{Metric: "rows", Aggregate: "max"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractMetricValue(tt.threshold, stats)
			if (err != nil) != tt.wantError {
				t.Fatalf("extractMetricValue() error = %v, wantError %v", err, tt.wantError)
			}
			if !tt.wantError && got != tt.want {
				t.Errorf("extractMetricValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrialFailureRateWithoutTrials(t *testing.T) {
	got, err := extractMetricValue(Threshold{Metric: "trial_failed", Aggregate: "rate"}, metrics.Stats{})
	if err != nil || got != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
}
