package supplier

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/torosent/sortbench/internal/batch"
)

// Fault configures where WithFault makes a supplier fail.
type Fault struct {
	OnCall    int   // 1-based call that fails (0 disables)
	AfterRows int64 // fail on the first call that starts with at least this many rows delivered (0 disables)
	Err       error // optional cause joined with ErrInjectedFault
}

// Enabled reports whether the fault triggers at all.
func (f Fault) Enabled() bool {
	return f.OnCall > 0 || f.AfterRows > 0
}

type faultSupplier struct {
	inner Supplier
	fault Fault
	calls int
	rows  int64
}

// WithFault wraps s so that it fails at the configured point. Calls before
// that point are delegated unchanged.
func WithFault(s Supplier, f Fault) Supplier {
	if !f.Enabled() {
		return s
	}
	return &faultSupplier{inner: s, fault: f}
}

func (f *faultSupplier) Next(ctx context.Context, b *batch.Batch) (bool, error) {
	f.calls++
	if f.triggered() {
		if f.fault.Err != nil {
			return false, fmt.Errorf("%w at call %d: %w", ErrInjectedFault, f.calls, f.fault.Err)
		}
		return false, fmt.Errorf("%w at call %d", ErrInjectedFault, f.calls)
	}
	eos, err := f.inner.Next(ctx, b)
	if err == nil {
		f.rows += int64(b.Len())
	}
	return eos, err
}

func (f *faultSupplier) triggered() bool {
	if f.fault.OnCall > 0 && f.calls >= f.fault.OnCall {
		return true
	}
	return f.fault.AfterRows > 0 && f.rows >= f.fault.AfterRows
}

func (f *faultSupplier) Close() error {
	return f.inner.Close()
}

type rateLimitedSupplier struct {
	inner   Supplier
	limiter *rate.Limiter
}

// WithRateLimit paces calls through limiter. A cancelled context while
// waiting fails the call. When the next token lies past the context
// deadline the call waits for the deadline and fails with the context
// error, so callers see expiry rather than a limiter refusal.
func WithRateLimit(s Supplier, limiter *rate.Limiter) Supplier {
	if limiter == nil {
		return s
	}
	return &rateLimitedSupplier{inner: s, limiter: limiter}
}

func (r *rateLimitedSupplier) Next(ctx context.Context, b *batch.Batch) (bool, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if _, ok := ctx.Deadline(); ok && ctx.Err() == nil {
			<-ctx.Done()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return false, fmt.Errorf("wait for upstream: %w", err)
	}
	return r.inner.Next(ctx, b)
}

func (r *rateLimitedSupplier) Close() error {
	return r.inner.Close()
}

// Observer receives the outcome of every call.
type Observer interface {
	ObserveBatch(latency time.Duration, rows int, eos bool, err error)
}

type observedSupplier struct {
	inner    Supplier
	observer Observer
}

// WithObserver reports per-call latency and row counts to o. Calls that
// fail because ctx is done are abandoned work and are not reported.
func WithObserver(s Supplier, o Observer) Supplier {
	if o == nil {
		return s
	}
	return &observedSupplier{inner: s, observer: o}
}

func (o *observedSupplier) Next(ctx context.Context, b *batch.Batch) (bool, error) {
	start := time.Now()
	eos, err := o.inner.Next(ctx, b)
	if err != nil && ctx.Err() != nil {
		return eos, err
	}
	rows := 0
	if err == nil && b != nil {
		rows = b.Len()
	}
	o.observer.ObserveBatch(time.Since(start), rows, eos, err)
	return eos, err
}

func (o *observedSupplier) Close() error {
	return o.inner.Close()
}

// FailureLogger logs failed calls.
type FailureLogger interface {
	LogFailure(err error)
}

type loggingSupplier struct {
	inner  Supplier
	logger FailureLogger
}

// WithLogging wraps s to log failures. Errors are returned unchanged.
func WithLogging(s Supplier, logger FailureLogger) Supplier {
	if logger == nil {
		return s
	}
	return &loggingSupplier{inner: s, logger: logger}
}

func (l *loggingSupplier) Next(ctx context.Context, b *batch.Batch) (bool, error) {
	eos, err := l.inner.Next(ctx, b)
	if err != nil && ctx.Err() == nil {
		l.logger.LogFailure(err)
	}
	return eos, err
}

func (l *loggingSupplier) Close() error {
	return l.inner.Close()
}
