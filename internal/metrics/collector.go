package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// latencyRecorder tracks one latency distribution.
type latencyRecorder struct {
	hist *hdrhistogram.Histogram
	min  time.Duration
	max  time.Duration
	sum  time.Duration
	n    int64
}

func newLatencyRecorder() *latencyRecorder {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	return &latencyRecorder{hist: hdrhistogram.New(1, 60_000_000, 3)}
}

func (r *latencyRecorder) record(latency time.Duration) {
	if latency > 0 {
		us := latency.Microseconds()
		if us < r.hist.LowestTrackableValue() {
			us = r.hist.LowestTrackableValue()
		}
		if us > r.hist.HighestTrackableValue() {
			us = r.hist.HighestTrackableValue()
		}
		_ = r.hist.RecordValue(us)
	}
	r.sum += latency
	r.n++
	if r.n == 1 || latency < r.min {
		r.min = latency
	}
	if latency > r.max {
		r.max = latency
	}
}

func (r *latencyRecorder) stats() LatencyStats {
	s := LatencyStats{Min: r.min, Max: r.max}
	if r.n > 0 {
		s.Mean = time.Duration(int64(r.sum) / r.n)
	}
	if r.hist.TotalCount() > 0 {
		s.P50 = time.Duration(r.hist.ValueAtQuantile(50)) * time.Microsecond
		s.P90 = time.Duration(r.hist.ValueAtQuantile(90)) * time.Microsecond
		s.P95 = time.Duration(r.hist.ValueAtQuantile(95)) * time.Microsecond
		s.P99 = time.Duration(r.hist.ValueAtQuantile(99)) * time.Microsecond
	}
	s.MinMs = toMs(s.Min)
	s.MaxMs = toMs(s.Max)
	s.MeanMs = toMs(s.Mean)
	s.P50Ms = toMs(s.P50)
	s.P90Ms = toMs(s.P90)
	s.P95Ms = toMs(s.P95)
	s.P99Ms = toMs(s.P99)
	return s
}

func toMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Collector records supplier calls and sort trials in a thread-safe manner.
type Collector struct {
	mu sync.Mutex

	next *latencyRecorder
	sort *latencyRecorder

	calls         int64
	failedCalls   int64
	batches       int64
	emptyBatches  int64
	rows          int64
	endOfStreams  int64
	trials        int64
	trialFailures int64

	errorsByType map[string]int64
	start        time.Time
}

// LatencyStats summarizes one latency distribution.
type LatencyStats struct {
	Min  time.Duration `json:"-"`
	Max  time.Duration `json:"-"`
	Mean time.Duration `json:"-"`
	P50  time.Duration `json:"-"`
	P90  time.Duration `json:"-"`
	P95  time.Duration `json:"-"`
	P99  time.Duration `json:"-"`

	// JSON-friendly millisecond fields.
	MinMs  float64 `json:"min_ms"`
	MaxMs  float64 `json:"max_ms"`
	MeanMs float64 `json:"mean_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P90Ms  float64 `json:"p90_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// Stats represents aggregated metrics.
type Stats struct {
	Trials         int64 `json:"trials"`
	TrialSuccesses int64 `json:"trial_successes"`
	TrialFailures  int64 `json:"trial_failures"`

	Calls        int64 `json:"calls"`
	FailedCalls  int64 `json:"failed_calls"`
	Batches      int64 `json:"batches"`
	EmptyBatches int64 `json:"empty_batches"`
	Rows         int64 `json:"rows"`
	EndOfStreams int64 `json:"end_of_streams"`

	Next LatencyStats `json:"next_latency"`
	Sort LatencyStats `json:"sort_latency"`

	Duration     time.Duration  `json:"-"`
	DurationMs   float64        `json:"duration_ms"`
	RowsPerSec   float64        `json:"rows_per_sec"`
	TrialsPerSec float64        `json:"trials_per_sec"`
	Errors       map[string]int `json:"errors,omitempty"`
}

func NewCollector() *Collector {
	return &Collector{
		next:         newLatencyRecorder(),
		sort:         newLatencyRecorder(),
		errorsByType: make(map[string]int64),
		start:        time.Now(),
	}
}

// Start marks the beginning of the benchmark for rate calculations.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
}

// Elapsed returns the time since Start.
func (c *Collector) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.start)
}

// ObserveBatch records one supplier call.
func (c *Collector) ObserveBatch(latency time.Duration, rows int, eos bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	c.next.record(latency)
	if err != nil {
		c.failedCalls++
		c.errorsByType[ErrorKind(err)]++
		return
	}
	if rows > 0 {
		c.batches++
		c.rows += int64(rows)
	} else {
		c.emptyBatches++
	}
	if eos {
		c.endOfStreams++
	}
}

// RecordTrial records one produce-and-sort trial. sortTime is only added to
// the sort distribution for successful trials.
func (c *Collector) RecordTrial(sortTime time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.trials++
	if err != nil {
		c.trialFailures++
		return
	}
	c.sort.record(sortTime)
}

// Stats computes and returns current aggregated statistics.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Trials:         c.trials,
		TrialSuccesses: c.trials - c.trialFailures,
		TrialFailures:  c.trialFailures,
		Calls:          c.calls,
		FailedCalls:    c.failedCalls,
		Batches:        c.batches,
		EmptyBatches:   c.emptyBatches,
		Rows:           c.rows,
		EndOfStreams:   c.endOfStreams,
		Next:           c.next.stats(),
		Sort:           c.sort.stats(),
		Duration:       elapsed,
		DurationMs:     toMs(elapsed),
	}

	if elapsed > 0 {
		stats.RowsPerSec = float64(c.rows) / elapsed.Seconds()
		stats.TrialsPerSec = float64(c.trials) / elapsed.Seconds()
	}

	if len(c.errorsByType) > 0 {
		stats.Errors = make(map[string]int, len(c.errorsByType))
		for k, v := range c.errorsByType {
			stats.Errors[k] = int(v)
		}
	}

	return stats
}
