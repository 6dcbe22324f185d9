// Package metrics collects per-call and per-trial measurements for sort
// benchmarks.
//
// # Collector
//
// The central [Collector] type aggregates metrics from all trial workers. It
// satisfies supplier.Observer, so it can be attached to a supplier chain
// directly:
//
//	collector := metrics.NewCollector()
//	collector.Start() // Mark benchmark start for accurate rates
//
//	s = supplier.WithObserver(s, collector)
//	res, err := sorter.Sort(ctx, s, opts)
//	collector.RecordTrial(res.SortTime, err)
//
//	stats := collector.Stats(collector.Elapsed())
//
// # Statistics
//
// The [Stats] type provides:
//   - Trial counts (total, successes, failures)
//   - Supplier call counts, delivered rows, empty batches, end-of-stream markers
//   - Latency percentiles (P50, P90, P95, P99) for supplier calls and sorts
//   - Rows and trials per second
//   - Failures grouped by [ErrorKind]
//
// # Thread Safety
//
// All Collector methods are safe to call from multiple goroutines.
package metrics
