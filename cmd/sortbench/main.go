package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/torosent/sortbench/internal/config"
	"github.com/torosent/sortbench/internal/dashboard"
	"github.com/torosent/sortbench/internal/logging"
	"github.com/torosent/sortbench/internal/metrics"
	"github.com/torosent/sortbench/internal/output"
	"github.com/torosent/sortbench/internal/runner"
	"github.com/torosent/sortbench/internal/sorter"
	"github.com/torosent/sortbench/internal/threshold"
	"github.com/torosent/sortbench/internal/tracing"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}
	keys, err := sorter.ParseKeys(cfg.Sort.Keys)
	if err != nil {
		return err
	}

	// The dashboard owns the terminal; log lines would tear its frames.
	logOut := stderr
	if cfg.Dashboard {
		logOut = io.Discard
	}
	log := logging.New(logOut, cfg.Verbose)
	defer func() { _ = log.Sync() }()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	collector := metrics.NewCollector()
	trial := newSortTrial(cfg, keys, collector, log)
	if provider.Enabled() {
		trial.tracer = provider.Tracer()
	}

	var wrapped runner.Trial = trial
	if cfg.LogErrors {
		trial.failures = logging.NewFailureLogger(log, "supplier")
		wrapped = runner.WithLogging(wrapped, logging.NewFailureLogger(log, "trial"))
	}

	r := runner.New(runner.Options{
		Concurrency:   cfg.Concurrency,
		Trials:        cfg.Trials,
		Duration:      cfg.Duration,
		RatePerSecond: cfg.Rate,
		ArrivalModel:  toRunnerArrivalModel(cfg.Arrival.Model),
		Trial:         wrapped,
	})

	printConfig(log, cfg)
	log.Debug("starting benchmark",
		zap.String("supplier", string(cfg.Supplier.Type)),
		zap.String("algorithm", cfg.Sort.Algorithm),
		zap.Int("concurrency", cfg.Concurrency),
		zap.Int("trials", cfg.Trials),
		zap.Duration("duration", cfg.Duration),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(collector, dashboardConfig(cfg), cancel)
		if err != nil {
			return err
		}
		dash.Start()
	}

	var progress *output.ProgressReporter
	if !cfg.JSONOutput && !cfg.Dashboard {
		progress = output.NewProgressReporter(collector, progressInterval, stdout)
		progress.Start()
	}

	startedAt := time.Now()
	collector.Start()
	result := r.Run(ctx)
	stats := collector.Stats(result.Duration)

	if dash != nil {
		dash.Stop()
	}
	if progress != nil {
		progress.Stop()
		fmt.Fprintln(stdout)
	}

	results := threshold.NewEvaluator(thresholds).Evaluate(stats)
	runID := output.NewRunID()

	passed := true
	if cfg.JSONOutput {
		if err := output.PrintJSONReport(stdout, runID, stats, results); err != nil {
			return err
		}
		for _, res := range results {
			passed = passed && res.Pass
		}
	} else {
		output.PrintReport(stdout, stats)
		passed = output.PrintThresholdResults(stdout, results)
	}

	var history []output.HistoryEntry
	if cfg.HistoryFile != "" {
		history, err = output.ReadHistory(cfg.HistoryFile)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		entry := output.HistoryEntry{
			RunID:            runID,
			StartedAt:        startedAt.UTC(),
			Supplier:         string(cfg.Supplier.Type),
			Algorithm:        cfg.Sort.Algorithm,
			BatchCapacity:    cfg.Supplier.BatchCapacity,
			Stats:            stats,
			ThresholdsPassed: passed,
		}
		if err := output.AppendHistory(cfg.HistoryFile, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
	}

	if cfg.HTMLOutput != "" {
		if err := writeHTMLReport(cfg, runID, stats, history, results); err != nil {
			return err
		}
		if !cfg.JSONOutput {
			fmt.Fprintf(stdout, "\nHTML report written to %s\n", cfg.HTMLOutput)
		}
	}

	if !passed {
		return errors.New("threshold check failed")
	}
	if result.Errors > 0 {
		return fmt.Errorf("%d of %d trials failed", result.Errors, result.Total)
	}
	return nil
}

func writeHTMLReport(cfg *config.Config, runID string, stats metrics.Stats, history []output.HistoryEntry, results []threshold.Result) error {
	f, err := os.Create(cfg.HTMLOutput)
	if err != nil {
		return fmt.Errorf("create html report: %w", err)
	}
	meta := output.ReportMetadata{
		Supplier:      string(cfg.Supplier.Type),
		Algorithm:     cfg.Sort.Algorithm,
		SortKeys:      cfg.Sort.Keys,
		BatchCapacity: cfg.Supplier.BatchCapacity,
	}
	if err := output.GenerateHTMLReport(f, runID, stats, history, results, meta); err != nil {
		f.Close()
		return fmt.Errorf("generate html report: %w", err)
	}
	return f.Close()
}

func dashboardConfig(cfg *config.Config) dashboard.RunConfig {
	return dashboard.RunConfig{
		Supplier:      string(cfg.Supplier.Type),
		Algorithm:     cfg.Sort.Algorithm,
		SortKeys:      cfg.Sort.Keys,
		BatchCapacity: cfg.Supplier.BatchCapacity,
		BatchRate:     cfg.Supplier.BatchRate,
		Concurrency:   cfg.Concurrency,
		Trials:        cfg.Trials,
		Duration:      cfg.Duration,
		Rate:          cfg.Rate,
		ConfigFile:    cfg.ConfigFile,
	}
}

func toRunnerArrivalModel(model config.ArrivalModel) runner.ArrivalModel {
	switch model {
	case config.ArrivalModelPoisson:
		return runner.ArrivalModelPoisson
	default:
		return runner.ArrivalModelUniform
	}
}

// printConfig logs the resolved configuration at debug level.
func printConfig(log *zap.Logger, cfg *config.Config) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	log.Debug("resolved configuration", zap.ByteString("config", raw))
}
