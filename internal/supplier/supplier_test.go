package supplier_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/torosent/sortbench/internal/batch"
	"github.com/torosent/sortbench/internal/supplier"
)

// fakeSupplier emits total rows of {index} and counts calls.
type fakeSupplier struct {
	total  int64
	next   int64
	calls  int
	closed int
	done   bool
}

func (f *fakeSupplier) Next(_ context.Context, b *batch.Batch) (bool, error) {
	f.calls++
	if f.done {
		return true, supplier.ErrCallAfterEOS
	}
	b.Reset()
	for !b.Full() && f.next < f.total {
		b.Append(batch.Row{f.next})
		f.next++
	}
	f.done = f.next >= f.total
	return f.done, nil
}

func (f *fakeSupplier) Close() error {
	f.closed++
	return nil
}

// failingSupplier fails every call with err.
type failingSupplier struct {
	err   error
	calls int
}

func (f *failingSupplier) Next(context.Context, *batch.Batch) (bool, error) {
	f.calls++
	return false, f.err
}

func (f *failingSupplier) Close() error { return nil }

type call struct {
	rows int
	eos  bool
}

func collectCalls(t *testing.T, s supplier.Supplier, capacity int) []call {
	t.Helper()
	var calls []call
	b := batch.New(capacity)
	for i := 0; i < 100; i++ {
		eos, err := s.Next(context.Background(), b)
		require.NoError(t, err)
		calls = append(calls, call{rows: b.Len(), eos: eos})
		if eos {
			return calls
		}
	}
	t.Fatal("supplier never reported end of stream")
	return nil
}

func TestScenarioTenRowsCapacityFour(t *testing.T) {
	s := supplier.Check(&fakeSupplier{total: 10})

	calls := collectCalls(t, s, 4)

	require.Equal(t, []call{{4, false}, {4, false}, {2, true}}, calls)
	require.Equal(t, supplier.StateDone, s.State())
	require.EqualValues(t, 10, s.Rows())
}

func TestZeroRowStream(t *testing.T) {
	s := supplier.Check(&fakeSupplier{total: 0})

	calls := collectCalls(t, s, 4)

	require.Equal(t, []call{{0, true}}, calls)
}

func TestCheckedRejectsCallAfterEOS(t *testing.T) {
	inner := &fakeSupplier{total: 3}
	s := supplier.Check(inner)
	b := batch.New(8)

	eos, err := s.Next(context.Background(), b)
	require.NoError(t, err)
	require.True(t, eos)

	_, err = s.Next(context.Background(), b)
	require.ErrorIs(t, err, supplier.ErrCallAfterEOS)
	require.Equal(t, 1, inner.calls, "producer must not be invoked after end of stream")
}

func TestCheckedSurfacesFailureVerbatim(t *testing.T) {
	cause := errors.New("disk on fire")
	inner := &failingSupplier{err: cause}
	s := supplier.Check(inner)
	b := batch.New(2)

	_, err := s.Next(context.Background(), b)
	require.Same(t, cause, err)
	require.Equal(t, supplier.StateFailed, s.State())

	_, err = s.Next(context.Background(), b)
	require.ErrorIs(t, err, supplier.ErrCallAfterFailure)
	require.ErrorIs(t, err, cause)
	require.Equal(t, 1, inner.calls)
}

func TestCheckedClearsBatchBeforeCall(t *testing.T) {
	s := supplier.Check(&fakeSupplier{total: 0})
	b := batch.New(2)
	b.Append(batch.Row{"stale"})

	eos, err := s.Next(context.Background(), b)
	require.NoError(t, err)
	require.True(t, eos)
	require.Zero(t, b.Len())
}

func TestCheckedNilBatch(t *testing.T) {
	s := supplier.Check(&fakeSupplier{total: 1})

	_, err := s.Next(context.Background(), nil)
	require.ErrorIs(t, err, supplier.ErrNilBatch)
	require.Equal(t, supplier.StateFailed, s.State())
}

func TestCheckedCloseOnce(t *testing.T) {
	inner := &fakeSupplier{total: 1}
	s := supplier.Check(inner)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.Equal(t, 1, inner.closed)

	_, err := s.Next(context.Background(), batch.New(1))
	require.ErrorIs(t, err, supplier.ErrClosed)
}

func TestCheckIsIdempotent(t *testing.T) {
	c := supplier.Check(&fakeSupplier{})
	require.Same(t, c, supplier.Check(c))
}

func TestDrainRowCountRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		total    int64
		capacity int
		calls    int
	}{
		{0, 4, 1},
		{1, 4, 1},
		{8, 4, 2},
		{10, 4, 3},
		{1000, 7, 143},
	} {
		inner := &fakeSupplier{total: tc.total}
		var seen int64
		sum, err := supplier.Drain(context.Background(), inner, tc.capacity, func(b *batch.Batch) error {
			for _, row := range b.Rows() {
				require.Equal(t, seen, row[0])
				seen++
			}
			return nil
		})
		require.NoError(t, err)
		require.True(t, sum.EOS)
		require.Equal(t, tc.total, sum.Rows)
		require.Equal(t, tc.total, seen)
		require.Equal(t, tc.calls, sum.Calls)
		require.Equal(t, tc.calls, inner.calls, "no calls after end of stream")
	}
}

func TestDrainStopsOnFirstFailure(t *testing.T) {
	inner := &fakeSupplier{total: 100}
	s := supplier.WithFault(inner, supplier.Fault{OnCall: 2})

	var batches int
	sum, err := supplier.Drain(context.Background(), s, 10, func(*batch.Batch) error {
		batches++
		return nil
	})

	require.ErrorIs(t, err, supplier.ErrInjectedFault)
	require.Equal(t, 2, sum.Calls)
	require.Equal(t, 1, batches)
	require.Equal(t, 1, inner.calls, "inner producer is not called on the faulted call")
}

func TestDrainConsumerAbandons(t *testing.T) {
	stop := errors.New("enough")
	inner := &fakeSupplier{total: 100}

	sum, err := supplier.Drain(context.Background(), inner, 10, func(*batch.Batch) error {
		return stop
	})

	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, sum.Calls)
	require.Zero(t, inner.closed, "drain must not close the supplier")
}

func TestDrainRejectsBadCapacity(t *testing.T) {
	_, err := supplier.Drain(context.Background(), &fakeSupplier{}, 0, nil)
	require.Error(t, err)
}

func TestScenarioFailOnSecondCall(t *testing.T) {
	s := supplier.Check(supplier.WithFault(&fakeSupplier{total: 10}, supplier.Fault{OnCall: 2}))
	b := batch.New(4)

	eos, err := s.Next(context.Background(), b)
	require.NoError(t, err)
	require.False(t, eos)
	require.Equal(t, 4, b.Len())

	_, err = s.Next(context.Background(), b)
	require.ErrorIs(t, err, supplier.ErrInjectedFault)
	require.Equal(t, supplier.StateFailed, s.State())
}

func TestFaultAfterRows(t *testing.T) {
	cause := errors.New("upstream reset")
	s := supplier.WithFault(&fakeSupplier{total: 100}, supplier.Fault{AfterRows: 8, Err: cause})
	b := batch.New(4)

	for i := 0; i < 2; i++ {
		_, err := s.Next(context.Background(), b)
		require.NoError(t, err)
	}
	_, err := s.Next(context.Background(), b)
	require.ErrorIs(t, err, supplier.ErrInjectedFault)
	require.ErrorIs(t, err, cause)
}

func TestWithFaultDisabledReturnsInner(t *testing.T) {
	inner := &fakeSupplier{}
	require.Same(t, supplier.Supplier(inner), supplier.WithFault(inner, supplier.Fault{}))
}

func TestRateLimitHonorsCancellation(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	s := supplier.WithRateLimit(&fakeSupplier{total: 100}, limiter)
	b := batch.New(1)

	_, err := s.Next(context.Background(), b)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Next(ctx, b)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRateLimitPastDeadlineFailsWithDeadline(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	s := supplier.WithRateLimit(&fakeSupplier{total: 100}, limiter)
	b := batch.New(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Next(ctx, b)
	require.NoError(t, err)

	_, err = s.Next(ctx, b)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Error(t, ctx.Err())
}

type recordingObserver struct {
	rows []int
	eos  []bool
	errs int
}

func (r *recordingObserver) ObserveBatch(_ time.Duration, rows int, eos bool, err error) {
	r.rows = append(r.rows, rows)
	r.eos = append(r.eos, eos)
	if err != nil {
		r.errs++
	}
}

func TestObserverSeesEveryCall(t *testing.T) {
	obs := &recordingObserver{}
	s := supplier.WithObserver(&fakeSupplier{total: 5}, obs)

	_, err := supplier.Drain(context.Background(), s, 2, nil)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2, 1}, obs.rows)
	require.Equal(t, []bool{false, false, true}, obs.eos)
	require.Zero(t, obs.errs)
}

func TestObserverSkipsAbandonedCalls(t *testing.T) {
	obs := &recordingObserver{}
	s := supplier.WithObserver(&failingSupplier{err: context.Canceled}, obs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Next(ctx, batch.New(1))
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, obs.rows)
	require.Zero(t, obs.errs)
}

type recordingLogger struct {
	errs []error
}

func (r *recordingLogger) LogFailure(err error) {
	r.errs = append(r.errs, err)
}

func TestLoggingPassesErrorThrough(t *testing.T) {
	cause := errors.New("malformed input")
	logger := &recordingLogger{}
	s := supplier.WithLogging(&failingSupplier{err: cause}, logger)

	_, err := s.Next(context.Background(), batch.New(1))
	require.Same(t, cause, err)
	require.Equal(t, []error{cause}, logger.errs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Next(ctx, batch.New(1))
	require.Same(t, cause, err)
	require.Len(t, logger.errs, 1, "failures after cancellation are not logged")
}

func TestStateString(t *testing.T) {
	require.Equal(t, "running", supplier.StateRunning.String())
	require.Equal(t, "done", supplier.StateDone.String())
	require.Equal(t, "failed", supplier.StateFailed.String())
	require.False(t, supplier.StateRunning.Terminal())
	require.True(t, supplier.StateDone.Terminal())
	require.True(t, supplier.StateFailed.Terminal())
}
