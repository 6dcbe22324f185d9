package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestGenerateHTMLReport(t *testing.T) {
	history := []HistoryEntry{{
		RunID:            "01PREVIOUSRUN",
		StartedAt:        time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		Supplier:         "csv",
		Algorithm:        "merge-runs",
		Stats:            sampleStats(),
		ThresholdsPassed: false,
	}}
	meta := ReportMetadata{Supplier: "generator", Algorithm: "materialize", SortKeys: []string{"0", "1:desc"}, BatchCapacity: 256}

	var buf bytes.Buffer
	err := GenerateHTMLReport(&buf, "01CURRENTRUN", sampleStats(), history, evaluate(t, "sort_duration:p95 < 50"), meta)
	if err != nil {
		t.Fatalf("GenerateHTMLReport() error = %v", err)
	}

	html := buf.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"Run: 01CURRENTRUN",
		"Keys: 0, 1:desc",
		"Batch capacity: 256",
		"Thresholds (1/1 Passed)",
		"Injected fault",
		"Previous Runs",
		"01PREVIOUSRUN",
		"2026-03-04 05:06:07",
		"47500.00",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in report", want)
		}
	}
}

func TestGenerateHTMLReportMinimal(t *testing.T) {
	stats := sampleStats()
	stats.Errors = nil

	var buf bytes.Buffer
	if err := GenerateHTMLReport(&buf, "run", stats, nil, nil, ReportMetadata{}); err != nil {
		t.Fatalf("GenerateHTMLReport() error = %v", err)
	}
	html := buf.String()
	for _, unwanted := range []string{"Thresholds (", "Previous Runs", "<h2>Errors</h2>"} {
		if strings.Contains(html, unwanted) {
			t.Errorf("did not expect %q in report", unwanted)
		}
	}
}

func TestGenerateHTMLReportEscapesData(t *testing.T) {
	var buf bytes.Buffer
	meta := ReportMetadata{Supplier: "<script>alert(1)</script>"}
	if err := GenerateHTMLReport(&buf, "run", sampleStats(), nil, nil, meta); err != nil {
		t.Fatalf("GenerateHTMLReport() error = %v", err)
	}
	if strings.Contains(buf.String(), "<script>alert(1)</script>") {
		t.Error("expected supplier name to be escaped")
	}
}
