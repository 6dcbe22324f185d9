package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/torosent/sortbench/internal/config"
	"github.com/torosent/sortbench/internal/metrics"
	"github.com/torosent/sortbench/internal/producer"
	"github.com/torosent/sortbench/internal/sorter"
	"github.com/torosent/sortbench/internal/supplier"
	"github.com/torosent/sortbench/internal/tracing"
)

// sortTrial runs one produce-and-sort trial per Run call. Every call opens
// its own supplier, so concurrent workers never share producer state.
type sortTrial struct {
	cfg       *config.Config
	keys      []sorter.Key
	collector *metrics.Collector
	log       *zap.Logger
	failures  supplier.FailureLogger
	tracer    trace.Tracer
	seq       atomic.Int64
}

func newSortTrial(cfg *config.Config, keys []sorter.Key, collector *metrics.Collector, log *zap.Logger) *sortTrial {
	if log == nil {
		log = zap.NewNop()
	}
	if len(keys) == 0 {
		keys = []sorter.Key{{Column: 0}}
	}
	return &sortTrial{cfg: cfg, keys: keys, collector: collector, log: log}
}

func (t *sortTrial) Run(ctx context.Context) error {
	n := t.seq.Add(1)

	var span trace.Span
	if t.tracer != nil {
		ctx, span = tracing.StartTrialSpan(ctx, t.tracer, string(t.cfg.Supplier.Type), t.cfg.Sort.Algorithm)
	}

	res, err := t.sortOnce(ctx)
	var (
		sortTime time.Duration
		rows     int
	)
	if res != nil {
		sortTime = res.SortTime
		rows = len(res.Rows)
	}
	if err != nil {
		err = fmt.Errorf("trial %d: %w", n, err)
	}
	abandoned := err != nil && ctx.Err() != nil
	if t.collector != nil && !abandoned {
		t.collector.RecordTrial(sortTime, err)
	}
	if span != nil {
		tracing.EndSpan(span, err, attribute.Int("sortbench.rows", rows))
	}

	if abandoned {
		t.log.Debug("trial abandoned", zap.Int64("trial", n), zap.Error(err))
		return err
	}
	t.log.Debug("trial finished",
		zap.Int64("trial", n),
		zap.Int("rows", rows),
		zap.Duration("sort_time", sortTime),
		zap.Error(err),
	)
	return err
}

func (t *sortTrial) sortOnce(ctx context.Context) (res *sorter.Result, err error) {
	s, err := producer.Open(producerSpec(t.cfg.Supplier))
	if err != nil {
		return nil, err
	}
	s = t.wrap(s)
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close supplier: %w", closeErr)
		}
	}()

	res, err = sorter.Sort(ctx, s, sorter.Options{
		Keys:          t.keys,
		Algorithm:     sorter.Algorithm(t.cfg.Sort.Algorithm),
		BatchCapacity: t.cfg.Supplier.BatchCapacity,
	})
	if err != nil {
		return res, err
	}
	if err := verify(res, t.keys, t.cfg.Supplier); err != nil {
		return res, err
	}
	return res, nil
}

// wrap layers the configured middlewares around s. The fault sits closest
// to the producer so observers and spans see the injected failure.
func (t *sortTrial) wrap(s supplier.Supplier) supplier.Supplier {
	sc := t.cfg.Supplier
	s = supplier.WithFault(s, supplier.Fault{OnCall: sc.FailOnCall, AfterRows: sc.FailAfterRows})
	if sc.BatchRate > 0 {
		s = supplier.WithRateLimit(s, rate.NewLimiter(rate.Limit(sc.BatchRate), 1))
	}
	if t.collector != nil {
		s = supplier.WithObserver(s, t.collector)
	}
	if t.failures != nil {
		s = supplier.WithLogging(s, t.failures)
	}
	if t.tracer != nil {
		s = tracing.WrapSupplier(s, t.tracer)
	}
	return s
}

// verify checks the sorted output against what the supplier delivered.
func verify(res *sorter.Result, keys []sorter.Key, sc config.SupplierConfig) error {
	if int64(len(res.Rows)) != res.Summary.Rows {
		return fmt.Errorf("sorted %d rows but supplier delivered %d", len(res.Rows), res.Summary.Rows)
	}
	if sc.Type == config.SupplierGenerator && res.Summary.Rows != sc.Rows {
		return fmt.Errorf("generator delivered %d rows, want %d", res.Summary.Rows, sc.Rows)
	}
	if !sorter.IsSorted(res.Rows, keys) {
		return fmt.Errorf("output of %d rows is not sorted", len(res.Rows))
	}
	return nil
}

func producerSpec(sc config.SupplierConfig) producer.Spec {
	spec := producer.Spec{
		Kind: producer.Kind(sc.Type),
		Path: sc.Path,
		CSV:  producer.CSVOptions{Header: sc.Header},
		Generator: producer.GeneratorOptions{
			Rows:         sc.Rows,
			Columns:      sc.Columns,
			Seed:         sc.Seed,
			Distribution: producer.Distribution(sc.Distribution),
			Cardinality:  sc.Cardinality,
			PayloadWidth: sc.PayloadWidth,
		},
	}
	if r := []rune(sc.Delimiter); len(r) == 1 {
		spec.CSV.Comma = r[0]
	}
	return spec
}
