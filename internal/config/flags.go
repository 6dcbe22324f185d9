package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sortbench",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	defaults := Default()

	// Supplier flags
	flags.String("supplier", string(defaults.Supplier.Type), "Row producer: generator, empty, csv, json or yaml")
	flags.String("path", "", "Fixture file for csv, json and yaml suppliers")
	flags.Bool("csv-header", false, "Treat the first CSV record as column names")
	flags.String("csv-delimiter", ",", "CSV field delimiter (single character)")
	flags.Int64("rows", defaults.Supplier.Rows, "Rows produced by the generator")
	flags.Int("columns", defaults.Supplier.Columns, "Columns per generated row")
	flags.Int64("seed", defaults.Supplier.Seed, "Generator random seed")
	flags.String("distribution", "uniform", "Generated key order: uniform, sorted, reversed or duplicates")
	flags.Int("cardinality", 0, "Distinct keys for the duplicates distribution (0 means default)")
	flags.Int("payload-width", 0, "Length of generated string columns (0 means default)")
	flags.IntP("batch-capacity", "b", defaults.Supplier.BatchCapacity, "Maximum rows per batch")
	flags.Int("batch-rate", 0, "Supplier calls per second limit (0 means unlimited)")
	flags.Int("fail-on-call", 0, "Inject a supplier failure on this call (0 disables)")
	flags.Int64("fail-after-rows", 0, "Inject a supplier failure once this many rows were delivered (0 disables)")

	// Sort flags
	flags.String("algorithm", defaults.Sort.Algorithm, "Sort algorithm: materialize or merge-runs")
	flags.StringSlice("key", nil, "Sort key as column[:asc|desc] (repeatable, default column 0)")

	// Load control flags
	flags.IntP("concurrency", "c", defaults.Concurrency, "Number of concurrent trial workers")
	flags.IntP("trials", "n", defaults.Trials, "Total number of trials (0 means until duration, or a single trial without one)")
	flags.DurationP("duration", "d", 0, "How long to run the benchmark (e.g. 30s, 1m)")
	flags.IntP("rate", "r", 0, "Trial starts per second limit (0 means unlimited)")
	flags.String("arrival-model", string(ArrivalModelUniform), "Arrival model to use when pacing trials (uniform or poisson)")

	// Output flags
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.Bool("dashboard", false, "Show live terminal dashboard with supplier and sort metrics")
	flags.Bool("log-errors", false, "Log each supplier and trial failure to stderr")
	flags.BoolP("verbose", "v", false, "Log every trial at debug level")
	flags.String("html-output", "", "Generate HTML report to the specified file path")
	flags.String("history-file", "", "Append a run summary to this JSON lines file")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Threshold flags
	flags.StringSlice("threshold", nil, "Performance thresholds (repeatable, e.g., 'sort_duration:p95 < 500')")

	// Tracing flags
	flags.String("tracing-endpoint", "", "OTLP collector endpoint (host:port)")
	flags.String("tracing-protocol", defaults.Tracing.Protocol, "OTLP protocol: grpc or http")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.String("tracing-service-name", "", "Service name reported with spans")
	flags.Float64("tracing-sample-rate", defaults.Tracing.SampleRate, "Fraction of trials to sample (0.0 to 1.0)")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("supplier") {
		val, err := fs.GetString("supplier")
		if err != nil {
			return err
		}
		cfg.Supplier.Type = SupplierType(val)
	}
	if fs.Changed("path") {
		val, err := fs.GetString("path")
		if err != nil {
			return err
		}
		cfg.Supplier.Path = val
	}
	if fs.Changed("csv-header") {
		val, err := fs.GetBool("csv-header")
		if err != nil {
			return err
		}
		cfg.Supplier.Header = val
	}
	if fs.Changed("csv-delimiter") {
		val, err := fs.GetString("csv-delimiter")
		if err != nil {
			return err
		}
		cfg.Supplier.Delimiter = val
	}
	if fs.Changed("rows") {
		val, err := fs.GetInt64("rows")
		if err != nil {
			return err
		}
		cfg.Supplier.Rows = val
	}
	if fs.Changed("columns") {
		val, err := fs.GetInt("columns")
		if err != nil {
			return err
		}
		cfg.Supplier.Columns = val
	}
	if fs.Changed("seed") {
		val, err := fs.GetInt64("seed")
		if err != nil {
			return err
		}
		cfg.Supplier.Seed = val
	}
	if fs.Changed("distribution") {
		val, err := fs.GetString("distribution")
		if err != nil {
			return err
		}
		cfg.Supplier.Distribution = val
	}
	if fs.Changed("cardinality") {
		val, err := fs.GetInt("cardinality")
		if err != nil {
			return err
		}
		cfg.Supplier.Cardinality = val
	}
	if fs.Changed("payload-width") {
		val, err := fs.GetInt("payload-width")
		if err != nil {
			return err
		}
		cfg.Supplier.PayloadWidth = val
	}
	if fs.Changed("batch-capacity") {
		val, err := fs.GetInt("batch-capacity")
		if err != nil {
			return err
		}
		cfg.Supplier.BatchCapacity = val
	}
	if fs.Changed("batch-rate") {
		val, err := fs.GetInt("batch-rate")
		if err != nil {
			return err
		}
		cfg.Supplier.BatchRate = val
	}
	if fs.Changed("fail-on-call") {
		val, err := fs.GetInt("fail-on-call")
		if err != nil {
			return err
		}
		cfg.Supplier.FailOnCall = val
	}
	if fs.Changed("fail-after-rows") {
		val, err := fs.GetInt64("fail-after-rows")
		if err != nil {
			return err
		}
		cfg.Supplier.FailAfterRows = val
	}
	if fs.Changed("algorithm") {
		val, err := fs.GetString("algorithm")
		if err != nil {
			return err
		}
		cfg.Sort.Algorithm = val
	}
	if fs.Changed("key") {
		vals, err := fs.GetStringSlice("key")
		if err != nil {
			return err
		}
		cfg.Sort.Keys = vals
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("trials") {
		val, err := fs.GetInt("trials")
		if err != nil {
			return err
		}
		cfg.Trials = val
	}
	if fs.Changed("duration") {
		val, err := fs.GetDuration("duration")
		if err != nil {
			return err
		}
		cfg.Duration = val
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("arrival-model") {
		val, err := fs.GetString("arrival-model")
		if err != nil {
			return err
		}
		cfg.Arrival.Model = ArrivalModel(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}
	if fs.Changed("verbose") {
		val, err := fs.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = val
	}
	if fs.Changed("html-output") {
		val, err := fs.GetString("html-output")
		if err != nil {
			return err
		}
		cfg.HTMLOutput = val
	}
	if fs.Changed("history-file") {
		val, err := fs.GetString("history-file")
		if err != nil {
			return err
		}
		cfg.HistoryFile = val
	}
	if fs.Changed("threshold") {
		vals, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = vals
	}
	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("tracing-insecure") {
		val, err := fs.GetBool("tracing-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("tracing-service-name") {
		val, err := fs.GetString("tracing-service-name")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = val
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	return nil
}
