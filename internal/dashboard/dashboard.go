package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/torosent/sortbench/internal/metrics"
)

const (
	refreshInterval = 500 * time.Millisecond
	historyLen      = 100
	maxErrorRows    = 10
)

// RunConfig holds the benchmark parameters shown in the summary panel.
type RunConfig struct {
	Supplier      string
	Algorithm     string
	SortKeys      []string
	BatchCapacity int
	BatchRate     int // supplier calls per second (0 = unlimited)
	Concurrency   int
	Trials        int           // 0 = until Duration
	Duration      time.Duration // 0 = no time bound
	Rate          int           // trial starts per second (0 = unlimited)
	ConfigFile    string
}

// Dashboard renders a live terminal UI for supplier and sort metrics.
type Dashboard struct {
	collector    *metrics.Collector
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	grid         *ui.Grid
	sortSparks   *widgets.SparklineGroup
	sortPara     *widgets.Paragraph
	nextPara     *widgets.Paragraph
	rowsGauge    *widgets.Gauge
	errorList    *widgets.List
	summaryPara  *widgets.Paragraph
	supplierPara *widgets.Paragraph

	sortHistory []float64
	peakRows    float64
	startTime   time.Time
	runConfig   RunConfig
}

// New initializes the terminal and builds the widget grid. shutdownFunc is
// called when the user presses q or Ctrl-C.
func New(collector *metrics.Collector, cfg RunConfig, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dashboard{
		collector:    collector,
		ctx:          ctx,
		cancel:       cancel,
		shutdownFunc: shutdownFunc,
		sortHistory:  make([]float64, 0, historyLen),
		startTime:    time.Now(),
		runConfig:    cfg,
	}
	d.initWidgets()
	d.setupGrid()
	return d, nil
}

func (d *Dashboard) initWidgets() {
	sparkline := widgets.NewSparkline()
	sparkline.Title = "Sort (ms)"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.sortSparks = widgets.NewSparklineGroup(sparkline)
	d.sortSparks.Title = "Mean Sort Time"
	d.sortSparks.BorderStyle.Fg = ui.ColorCyan

	d.sortPara = widgets.NewParagraph()
	d.sortPara.Title = "Sort Latency"
	d.sortPara.Text = formatLatency(metrics.LatencyStats{})
	d.sortPara.BorderStyle.Fg = ui.ColorCyan

	d.nextPara = widgets.NewParagraph()
	d.nextPara.Title = "Next() Latency"
	d.nextPara.Text = formatLatency(metrics.LatencyStats{})
	d.nextPara.BorderStyle.Fg = ui.ColorCyan

	d.rowsGauge = widgets.NewGauge()
	d.rowsGauge.Title = "Rows Per Second"
	d.rowsGauge.BarColor = ui.ColorBlue
	d.rowsGauge.BorderStyle.Fg = ui.ColorCyan
	d.rowsGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	d.errorList = widgets.NewList()
	d.errorList.Title = "Supplier Failures"
	d.errorList.Rows = formatErrorRows(nil)
	d.errorList.TextStyle = ui.NewStyle(ui.ColorYellow)
	d.errorList.BorderStyle.Fg = ui.ColorCyan

	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Benchmark"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	d.supplierPara = widgets.NewParagraph()
	d.supplierPara.Title = "Supplier"
	d.supplierPara.Text = "Waiting for data..."
	d.supplierPara.BorderStyle.Fg = ui.ColorCyan
}

func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)
	d.grid.Set(
		ui.NewRow(0.16,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.22,
			ui.NewCol(0.5, d.rowsGauge),
			ui.NewCol(0.5, d.supplierPara),
		),
		ui.NewRow(0.32,
			ui.NewCol(0.65, d.sortSparks),
			ui.NewCol(0.35, d.sortPara),
		),
		ui.NewRow(0.30,
			ui.NewCol(0.5, d.nextPara),
			ui.NewCol(0.5, d.errorList),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop ends the update loop and restores the terminal.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	ui.Close()
	// Give the terminal time to restore before reports are printed.
	time.Sleep(100 * time.Millisecond)
}

func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()
	d.render()

	for {
		select {
		case <-d.ctx.Done():
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Stop cancels the loop once the runner has unwound.
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.mu.Lock()
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				d.mu.Unlock()
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

// update refreshes widget data from the collector.
func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	elapsed := d.collector.Elapsed()
	stats := d.collector.Stats(elapsed)

	if stats.Sort.Mean > 0 {
		d.sortHistory = appendHistory(d.sortHistory, stats.Sort.MeanMs, historyLen)
		d.sortSparks.Sparklines[0].Data = d.sortHistory
		d.sortSparks.Title = fmt.Sprintf(
			"Mean Sort Time | Current: %.2fms | Min: %.2fms | Max: %.2fms",
			stats.Sort.MeanMs, stats.Sort.MinMs, stats.Sort.MaxMs,
		)
	}

	if stats.RowsPerSec > d.peakRows {
		d.peakRows = stats.RowsPerSec
	}
	d.rowsGauge.Percent = gaugePercent(stats.RowsPerSec, d.peakRows)
	d.rowsGauge.Label = fmt.Sprintf("%.0f rows/s", stats.RowsPerSec)

	d.summaryPara.Text = formatSummary(d.runConfig, stats, elapsed)
	d.supplierPara.Text = formatSupplier(stats)
	d.sortPara.Text = formatLatency(stats.Sort)
	d.nextPara.Text = formatLatency(stats.Next)
	d.errorList.Rows = formatErrorRows(stats.Errors)
}

func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

func appendHistory(history []float64, v float64, limit int) []float64 {
	history = append(history, v)
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}

// gaugePercent scales current against the peak seen so far.
func gaugePercent(current, peak float64) int {
	if peak <= 0 || current <= 0 {
		return 0
	}
	pct := int(current / peak * 100)
	if pct > 100 {
		pct = 100
	}
	return pct
}

func formatLatency(l metrics.LatencyStats) string {
	return fmt.Sprintf(
		"Min:  %.2fms\nMean: %.2fms\nP50:  %.2fms\nP90:  %.2fms\nP99:  %.2fms",
		l.MinMs, l.MeanMs, l.P50Ms, l.P90Ms, l.P99Ms,
	)
}

func formatSupplier(stats metrics.Stats) string {
	return fmt.Sprintf(
		"Calls:          %d\nFailed calls:   %d\nBatches:        %d\nEmpty batches:  %d\nRows:           %d\nEnd of streams: %d",
		stats.Calls, stats.FailedCalls, stats.Batches, stats.EmptyBatches, stats.Rows, stats.EndOfStreams,
	)
}

func formatSummary(cfg RunConfig, stats metrics.Stats, elapsed time.Duration) string {
	successRate := 0.0
	if stats.Trials > 0 {
		successRate = float64(stats.TrialSuccesses) / float64(stats.Trials) * 100
	}
	return fmt.Sprintf(
		"%s\nElapsed: %s | Trials: %d | Failed: %d | Success Rate: %.1f%% | %.2f trials/s",
		formatRunConfig(cfg),
		elapsed.Round(time.Second),
		stats.Trials,
		stats.TrialFailures,
		successRate,
		stats.TrialsPerSec,
	)
}

// formatErrorRows lists failure kinds, most frequent first.
func formatErrorRows(errs map[string]int) []string {
	if len(errs) == 0 {
		return []string{"[No failures](fg:green)"}
	}
	kinds := make([]string, 0, len(errs))
	for kind := range errs {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if errs[kinds[i]] == errs[kinds[j]] {
			return kinds[i] < kinds[j]
		}
		return errs[kinds[i]] > errs[kinds[j]]
	})
	if len(kinds) > maxErrorRows {
		kinds = kinds[:maxErrorRows]
	}
	rows := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		rows = append(rows, fmt.Sprintf("[%s](fg:red) %d", kind, errs[kind]))
	}
	return rows
}

func formatRunConfig(cfg RunConfig) string {
	var parts []string

	if cfg.Supplier != "" {
		parts = append(parts, fmt.Sprintf("Supplier: %s", cfg.Supplier))
	}
	if cfg.Algorithm != "" {
		parts = append(parts, fmt.Sprintf("Sort: %s", cfg.Algorithm))
	}
	if len(cfg.SortKeys) > 0 {
		parts = append(parts, fmt.Sprintf("Keys: %s", strings.Join(cfg.SortKeys, ",")))
	}
	if cfg.BatchCapacity > 0 {
		parts = append(parts, fmt.Sprintf("Batch: %d", cfg.BatchCapacity))
	}
	if cfg.BatchRate > 0 {
		parts = append(parts, fmt.Sprintf("Batch rate: %d/s", cfg.BatchRate))
	}
	if cfg.Concurrency > 0 {
		parts = append(parts, fmt.Sprintf("Workers: %d", cfg.Concurrency))
	}
	if cfg.Rate > 0 {
		parts = append(parts, fmt.Sprintf("Rate: %d/s", cfg.Rate))
	} else {
		parts = append(parts, "Rate: unlimited")
	}
	if cfg.Trials > 0 {
		parts = append(parts, fmt.Sprintf("Trials: %d", cfg.Trials))
	}
	if cfg.Duration > 0 {
		parts = append(parts, fmt.Sprintf("Duration: %s", cfg.Duration))
	}
	if cfg.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", cfg.ConfigFile))
	}

	return strings.Join(parts, " | ")
}
