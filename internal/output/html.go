package output

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/torosent/sortbench/internal/metrics"
	"github.com/torosent/sortbench/internal/threshold"
)

// HTMLReportData contains all data needed for the HTML report template.
type HTMLReportData struct {
	GeneratedAt      string
	RunID            string
	Stats            metrics.Stats
	Errors           []metrics.ErrorCount
	ThresholdSummary *ThresholdSummary
	History          []HistoryEntry
	Metadata         ReportMetadata
}

// ReportMetadata describes the benchmark configuration.
type ReportMetadata struct {
	Supplier      string
	Algorithm     string
	SortKeys      []string
	BatchCapacity int
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"formatDuration": func(d time.Duration) string {
		return d.String()
	},
	"formatFloat": func(f float64) string {
		return fmt.Sprintf("%.2f", f)
	},
	"formatPercent": func(part, total int64) string {
		if total == 0 {
			return "0.0"
		}
		return fmt.Sprintf("%.1f", (float64(part)/float64(total))*100)
	},
}).Parse(htmlTemplate))

// GenerateHTMLReport writes a standalone HTML report. history holds earlier
// runs from the history file and may be empty.
func GenerateHTMLReport(w io.Writer, runID string, stats metrics.Stats, history []HistoryEntry, thresholdResults []threshold.Result, metadata ReportMetadata) error {
	data := HTMLReportData{
		GeneratedAt:      time.Now().Format(time.RFC3339),
		RunID:            runID,
		Stats:            stats,
		Errors:           metrics.SortedErrors(stats.Errors),
		ThresholdSummary: SummarizeThresholds(thresholdResults),
		History:          history,
		Metadata:         metadata,
	}
	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Sort Benchmark Report</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background: #f5f7fa; color: #2c3e50; padding: 20px; }
        .container { max-width: 1100px; margin: 0 auto; background: white; border-radius: 8px; padding: 30px; }
        h1 { margin-top: 0; }
        .meta { color: #7f8c8d; font-size: 14px; }
        .cards { display: flex; gap: 16px; flex-wrap: wrap; margin: 20px 0; }
        .card { flex: 1; min-width: 160px; background: #f8f9fa; border-radius: 6px; padding: 16px; }
        .card .label { font-size: 12px; text-transform: uppercase; color: #7f8c8d; }
        .card .value { font-size: 24px; font-weight: 600; }
        table { width: 100%; border-collapse: collapse; margin: 12px 0 24px; }
        th, td { text-align: left; padding: 8px 10px; border-bottom: 1px solid #ecf0f1; }
        th { background: #f8f9fa; }
        .pass { color: #27ae60; font-weight: 600; }
        .fail { color: #c0392b; font-weight: 600; }
    </style>
</head>
<body>
<div class="container">
    <h1>Sort Benchmark Report</h1>
    <div class="meta">Run: {{.RunID}} | Generated: {{.GeneratedAt}} | Duration: {{formatDuration .Stats.Duration}}</div>
    <div class="meta">Supplier: {{.Metadata.Supplier}} | Algorithm: {{.Metadata.Algorithm}} | Keys: {{range $i, $k := .Metadata.SortKeys}}{{if $i}}, {{end}}{{$k}}{{end}} | Batch capacity: {{.Metadata.BatchCapacity}}</div>

    <div class="cards">
        <div class="card"><div class="label">Trials</div><div class="value">{{.Stats.Trials}}</div></div>
        <div class="card"><div class="label">Successful</div><div class="value">{{.Stats.TrialSuccesses}}</div><div>{{formatPercent .Stats.TrialSuccesses .Stats.Trials}}%</div></div>
        <div class="card"><div class="label">Failed</div><div class="value">{{.Stats.TrialFailures}}</div><div>{{formatPercent .Stats.TrialFailures .Stats.Trials}}%</div></div>
        <div class="card"><div class="label">Rows/sec</div><div class="value">{{formatFloat .Stats.RowsPerSec}}</div></div>
    </div>

    <h2>Supplier</h2>
    <table>
        <tr><th>Calls</th><th>Failed calls</th><th>Batches</th><th>Empty batches</th><th>End of stream</th><th>Rows</th></tr>
        <tr><td>{{.Stats.Calls}}</td><td>{{.Stats.FailedCalls}}</td><td>{{.Stats.Batches}}</td><td>{{.Stats.EmptyBatches}}</td><td>{{.Stats.EndOfStreams}}</td><td>{{.Stats.Rows}}</td></tr>
    </table>

    <h2>Latency</h2>
    <table>
        <tr><th></th><th>Min</th><th>Mean</th><th>P50</th><th>P90</th><th>P95</th><th>P99</th><th>Max</th></tr>
        {{with .Stats.Next}}<tr><td>Next</td><td>{{formatDuration .Min}}</td><td>{{formatDuration .Mean}}</td><td>{{formatDuration .P50}}</td><td>{{formatDuration .P90}}</td><td>{{formatDuration .P95}}</td><td>{{formatDuration .P99}}</td><td>{{formatDuration .Max}}</td></tr>{{end}}
        {{with .Stats.Sort}}<tr><td>Sort</td><td>{{formatDuration .Min}}</td><td>{{formatDuration .Mean}}</td><td>{{formatDuration .P50}}</td><td>{{formatDuration .P90}}</td><td>{{formatDuration .P95}}</td><td>{{formatDuration .P99}}</td><td>{{formatDuration .Max}}</td></tr>{{end}}
    </table>

    {{if .ThresholdSummary}}
    <h2>Thresholds ({{.ThresholdSummary.Passed}}/{{.ThresholdSummary.Total}} Passed)</h2>
    <table>
        <tr><th>Threshold</th><th>Metric</th><th>Expected</th><th>Actual</th><th>Status</th></tr>
        {{range .ThresholdSummary.Results}}
        <tr>
            <td>{{.Threshold}}</td>
            <td>{{.Metric}} ({{.Aggregate}})</td>
            <td>{{.Operator}} {{formatFloat .Expected}}</td>
            <td>{{formatFloat .Actual}}</td>
            <td>{{if .Pass}}<span class="pass">PASS</span>{{else}}<span class="fail">FAIL</span>{{end}}</td>
        </tr>
        {{end}}
    </table>
    {{end}}

    {{if .Errors}}
    <h2>Errors</h2>
    <table>
        <tr><th>Kind</th><th>Count</th></tr>
        {{range .Errors}}<tr><td>{{.Kind}}</td><td>{{.Count}}</td></tr>{{end}}
    </table>
    {{end}}

    {{if .History}}
    <h2>Previous Runs</h2>
    <table>
        <tr><th>Run</th><th>Started</th><th>Supplier</th><th>Algorithm</th><th>Trials</th><th>Rows/sec</th><th>Sort P95 (ms)</th><th>Thresholds</th></tr>
        {{range .History}}
        <tr>
            <td>{{.RunID}}</td>
            <td>{{.StartedAt.Format "2006-01-02 15:04:05"}}</td>
            <td>{{.Supplier}}</td>
            <td>{{.Algorithm}}</td>
            <td>{{.Stats.Trials}}</td>
            <td>{{formatFloat .Stats.RowsPerSec}}</td>
            <td>{{formatFloat .Stats.Sort.P95Ms}}</td>
            <td>{{if .ThresholdsPassed}}<span class="pass">PASS</span>{{else}}<span class="fail">FAIL</span>{{end}}</td>
        </tr>
        {{end}}
    </table>
    {{end}}
</div>
</body>
</html>
`
