package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Default returns the configuration used before file settings and flags apply.
func Default() *Config {
	return &Config{
		Supplier: SupplierConfig{
			Type:          SupplierGenerator,
			Rows:          10_000,
			Columns:       2,
			Seed:          1,
			BatchCapacity: 1024,
		},
		Sort:        SortConfig{Algorithm: "materialize"},
		Concurrency: 1,
		Arrival:     ArrivalConfig{Model: ArrivalModelUniform},
		Tracing:     TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}
}

// Load parses command-line arguments and configuration files to produce a Config.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	// If no arguments provided and no config file, show help/usage
	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	cfg.ConfigFile = configPath

	if err := applyConfigSettings(cfg, cfgViper.AllSettings()); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Supplier.Type = SupplierType(strings.ToLower(strings.TrimSpace(string(cfg.Supplier.Type))))
	cfg.Supplier.Path = strings.TrimSpace(cfg.Supplier.Path)
	cfg.Supplier.Distribution = strings.ToLower(strings.TrimSpace(cfg.Supplier.Distribution))
	cfg.Sort.Algorithm = strings.ToLower(strings.TrimSpace(cfg.Sort.Algorithm))
	cfg.Arrival.Model = ArrivalModel(strings.ToLower(strings.TrimSpace(string(cfg.Arrival.Model))))
	cfg.HistoryFile = strings.TrimSpace(cfg.HistoryFile)
	cfg.HTMLOutput = strings.TrimSpace(cfg.HTMLOutput)
	if cfg.Trials == 0 && cfg.Duration == 0 {
		cfg.Trials = 1
	}

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "supplier"); ok {
		if err := applySupplierSettings(&cfg.Supplier, raw); err != nil {
			return fmt.Errorf("supplier: %w", err)
		}
	}

	if raw, ok := lookupSetting(settings, "sort"); ok {
		if err := applySortSettings(&cfg.Sort, raw); err != nil {
			return fmt.Errorf("sort: %w", err)
		}
	}

	if raw, ok := lookupSetting(settings, "concurrency"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("concurrency: %w", err)
		}
		cfg.Concurrency = val
	}

	if raw, ok := lookupSetting(settings, "trials"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("trials: %w", err)
		}
		cfg.Trials = val
	}

	if raw, ok := lookupSetting(settings, "duration"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		cfg.Duration = dur
	}

	if raw, ok := lookupSetting(settings, "rate"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		cfg.Rate = val
	}

	if raw, ok := lookupSetting(settings, "arrival"); ok {
		arrival, err := parseArrival(raw)
		if err != nil {
			return fmt.Errorf("arrival: %w", err)
		}
		cfg.Arrival = arrival
	}

	if raw, ok := lookupSetting(settings, "jsonoutput", "json_output", "json-output"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("jsonOutput: %w", err)
		}
		cfg.JSONOutput = val
	}

	if raw, ok := lookupSetting(settings, "dashboard"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		cfg.Dashboard = val
	}

	if raw, ok := lookupSetting(settings, "logerrors", "log_errors", "log-errors"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("logErrors: %w", err)
		}
		cfg.LogErrors = val
	}

	if raw, ok := lookupSetting(settings, "verbose"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("verbose: %w", err)
		}
		cfg.Verbose = val
	}

	if raw, ok := lookupSetting(settings, "htmloutput", "html_output", "html-output"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("htmlOutput: %w", err)
		}
		cfg.HTMLOutput = val
	}

	if raw, ok := lookupSetting(settings, "historyfile", "history_file", "history-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("historyFile: %w", err)
		}
		cfg.HistoryFile = val
	}

	if raw, ok := lookupSetting(settings, "thresholds"); ok {
		vals, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("thresholds: %w", err)
		}
		cfg.Thresholds = vals
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		if err := applyTracingSettings(&cfg.Tracing, raw); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
	}

	return nil
}

func applySupplierSettings(s *SupplierConfig, value interface{}) error {
	if value == nil {
		return nil
	}
	settings, err := toStringKeyMap(value)
	if err != nil {
		return err
	}

	if raw, ok := lookupSetting(settings, "type"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("type: %w", err)
		}
		s.Type = SupplierType(val)
	}
	if raw, ok := lookupSetting(settings, "path"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("path: %w", err)
		}
		s.Path = val
	}
	if raw, ok := lookupSetting(settings, "header"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("header: %w", err)
		}
		s.Header = val
	}
	if raw, ok := lookupSetting(settings, "delimiter"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("delimiter: %w", err)
		}
		s.Delimiter = val
	}
	if raw, ok := lookupSetting(settings, "rows"); ok {
		val, err := asInt64(raw)
		if err != nil {
			return fmt.Errorf("rows: %w", err)
		}
		s.Rows = val
	}
	if raw, ok := lookupSetting(settings, "columns"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("columns: %w", err)
		}
		s.Columns = val
	}
	if raw, ok := lookupSetting(settings, "seed"); ok {
		val, err := asInt64(raw)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		s.Seed = val
	}
	if raw, ok := lookupSetting(settings, "distribution"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("distribution: %w", err)
		}
		s.Distribution = val
	}
	if raw, ok := lookupSetting(settings, "cardinality"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("cardinality: %w", err)
		}
		s.Cardinality = val
	}
	if raw, ok := lookupSetting(settings, "payloadwidth", "payload_width", "payload-width"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("payloadWidth: %w", err)
		}
		s.PayloadWidth = val
	}
	if raw, ok := lookupSetting(settings, "batchcapacity", "batch_capacity", "batch-capacity"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("batchCapacity: %w", err)
		}
		s.BatchCapacity = val
	}
	if raw, ok := lookupSetting(settings, "batchrate", "batch_rate", "batch-rate"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("batchRate: %w", err)
		}
		s.BatchRate = val
	}
	if raw, ok := lookupSetting(settings, "failoncall", "fail_on_call", "fail-on-call"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("failOnCall: %w", err)
		}
		s.FailOnCall = val
	}
	if raw, ok := lookupSetting(settings, "failafterrows", "fail_after_rows", "fail-after-rows"); ok {
		val, err := asInt64(raw)
		if err != nil {
			return fmt.Errorf("failAfterRows: %w", err)
		}
		s.FailAfterRows = val
	}
	return nil
}

func applySortSettings(s *SortConfig, value interface{}) error {
	if value == nil {
		return nil
	}
	settings, err := toStringKeyMap(value)
	if err != nil {
		return err
	}
	if raw, ok := lookupSetting(settings, "algorithm"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("algorithm: %w", err)
		}
		s.Algorithm = val
	}
	if raw, ok := lookupSetting(settings, "keys"); ok {
		vals, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("keys: %w", err)
		}
		s.Keys = vals
	}
	return nil
}

func parseArrival(value interface{}) (ArrivalConfig, error) {
	if value == nil {
		return ArrivalConfig{Model: ArrivalModelUniform}, nil
	}
	settings, err := toStringKeyMap(value)
	if err != nil {
		return ArrivalConfig{}, err
	}
	arrival := ArrivalConfig{Model: ArrivalModelUniform}
	if raw, ok := lookupSetting(settings, "model"); ok {
		val, err := asString(raw)
		if err != nil {
			return ArrivalConfig{}, fmt.Errorf("model: %w", err)
		}
		if val != "" {
			arrival.Model = ArrivalModel(val)
		}
	}
	return arrival, nil
}

func applyTracingSettings(t *TracingConfig, value interface{}) error {
	if value == nil {
		return nil
	}
	settings, err := toStringKeyMap(value)
	if err != nil {
		return err
	}
	if raw, ok := lookupSetting(settings, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("endpoint: %w", err)
		}
		t.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("protocol: %w", err)
		}
		t.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(settings, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("insecure: %w", err)
		}
		t.Insecure = val
	}
	if raw, ok := lookupSetting(settings, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("serviceName: %w", err)
		}
		t.ServiceName = val
	}
	if raw, ok := lookupSetting(settings, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("sampleRate: %w", err)
		}
		t.SampleRate = val
	}
	return nil
}
