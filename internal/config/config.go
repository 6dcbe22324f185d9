package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/torosent/sortbench/internal/sorter"
)

type SupplierType string

const (
	SupplierGenerator SupplierType = "generator"
	SupplierEmpty     SupplierType = "empty"
	SupplierCSV       SupplierType = "csv"
	SupplierJSON      SupplierType = "json"
	SupplierYAML      SupplierType = "yaml"
)

type Config struct {
	Supplier    SupplierConfig `mapstructure:"supplier"`
	Sort        SortConfig     `mapstructure:"sort"`
	Concurrency int            `mapstructure:"concurrency"`
	Trials      int            `mapstructure:"trials"`
	Duration    time.Duration  `mapstructure:"duration"`
	Rate        int            `mapstructure:"rate"`
	Arrival     ArrivalConfig  `mapstructure:"arrival"`
	JSONOutput  bool           `mapstructure:"json_output"`
	Dashboard   bool           `mapstructure:"dashboard"`
	LogErrors   bool           `mapstructure:"log_errors"`
	Verbose     bool           `mapstructure:"verbose"`
	HTMLOutput  string         `mapstructure:"html_output"`
	HistoryFile string         `mapstructure:"history_file"`
	Thresholds  []string       `mapstructure:"thresholds"`
	Tracing     TracingConfig  `mapstructure:"tracing"`
	ConfigFile  string         `mapstructure:"-"`
}

// SupplierConfig selects the producer for each trial and the faults and
// pacing wrapped around it.
type SupplierConfig struct {
	Type          SupplierType `mapstructure:"type"`
	Path          string       `mapstructure:"path"`
	Header        bool         `mapstructure:"header"`    // csv: first record holds column names
	Delimiter     string       `mapstructure:"delimiter"` // csv: single character, "," by default
	Rows          int64        `mapstructure:"rows"`
	Columns       int          `mapstructure:"columns"`
	Seed          int64        `mapstructure:"seed"`
	Distribution  string       `mapstructure:"distribution"`
	Cardinality   int          `mapstructure:"cardinality"`
	PayloadWidth  int          `mapstructure:"payload_width"`
	BatchCapacity int          `mapstructure:"batch_capacity"`
	BatchRate     int          `mapstructure:"batch_rate"` // supplier calls per second, 0 means unlimited
	FailOnCall    int          `mapstructure:"fail_on_call"`
	FailAfterRows int64        `mapstructure:"fail_after_rows"`
}

type SortConfig struct {
	Algorithm string   `mapstructure:"algorithm"`
	Keys      []string `mapstructure:"keys"`
}

type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

type ArrivalConfig struct {
	Model ArrivalModel `mapstructure:"model"`
}

// TracingConfig configures OpenTelemetry span export.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" (default) or "http"
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// Enabled reports whether an OTLP endpoint is configured directly or through
// OTEL_EXPORTER_OTLP_ENDPOINT.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" || os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Trials < 0 {
		issues = append(issues, "trials must be >= 0")
	}
	if c.Duration < 0 {
		issues = append(issues, "duration must be >= 0")
	}

	switch c.Arrival.Model {
	case "", ArrivalModelUniform, ArrivalModelPoisson:
	default:
		issues = append(issues, fmt.Sprintf("arrival model must be uniform or poisson, got %q", c.Arrival.Model))
	}

	issues = append(issues, validateSupplierConfig(c.Supplier)...)
	issues = append(issues, validateSortConfig(c.Sort)...)
	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if c.JSONOutput && c.Verbose {
		issues = append(issues, "json-output and verbose are mutually exclusive")
	}
	if c.Dashboard && c.JSONOutput {
		issues = append(issues, "dashboard and json-output are mutually exclusive")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateSupplierConfig(s SupplierConfig) []string {
	var issues []string

	switch s.Type {
	case SupplierGenerator, SupplierEmpty:
	case SupplierCSV, SupplierJSON, SupplierYAML:
		if strings.TrimSpace(s.Path) == "" {
			issues = append(issues, fmt.Sprintf("supplier path is required for type %s", s.Type))
		}
	default:
		issues = append(issues, fmt.Sprintf("supplier type must be one of generator, empty, csv, json, yaml; got %q", s.Type))
	}

	if s.Type == SupplierGenerator {
		if s.Rows < 0 {
			issues = append(issues, "supplier rows must be >= 0")
		}
		if s.Columns < 1 {
			issues = append(issues, "supplier columns must be >= 1")
		}
		switch s.Distribution {
		case "", "uniform", "sorted", "reversed", "duplicates":
		default:
			issues = append(issues, fmt.Sprintf("supplier distribution must be uniform, sorted, reversed or duplicates; got %q", s.Distribution))
		}
		if s.Cardinality < 0 {
			issues = append(issues, "supplier cardinality must be >= 0")
		}
		if s.PayloadWidth < 0 {
			issues = append(issues, "supplier payload width must be >= 0")
		}
	}
	if s.Delimiter != "" && len([]rune(s.Delimiter)) != 1 {
		issues = append(issues, fmt.Sprintf("supplier delimiter must be a single character, got %q", s.Delimiter))
	}
	if s.BatchCapacity < 1 {
		issues = append(issues, "supplier batch capacity must be >= 1")
	}
	if s.BatchRate < 0 {
		issues = append(issues, "supplier batch rate must be >= 0")
	}
	if s.FailOnCall < 0 {
		issues = append(issues, "supplier fail-on-call must be >= 0")
	}
	if s.FailAfterRows < 0 {
		issues = append(issues, "supplier fail-after-rows must be >= 0")
	}
	return issues
}

func validateSortConfig(s SortConfig) []string {
	var issues []string
	switch sorter.Algorithm(s.Algorithm) {
	case "", sorter.AlgorithmMaterialize, sorter.AlgorithmMergeRuns:
	default:
		issues = append(issues, fmt.Sprintf("sort algorithm must be materialize or merge-runs, got %q", s.Algorithm))
	}
	if _, err := sorter.ParseKeys(s.Keys); err != nil {
		issues = append(issues, err.Error())
	}
	return issues
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing protocol must be grpc or http, got %q", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing sample rate must be between 0 and 1, got %g", t.SampleRate))
	}
	return issues
}
