package metrics

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/torosent/sortbench/internal/supplier"
)

func TestCollectorObserveBatch(t *testing.T) {
	c := NewCollector()
	c.ObserveBatch(2*time.Millisecond, 4, false, nil)
	c.ObserveBatch(4*time.Millisecond, 4, false, nil)
	c.ObserveBatch(1*time.Millisecond, 2, true, nil)

	stats := c.Stats(time.Second)
	if stats.Calls != 3 {
		t.Errorf("Calls = %d, want 3", stats.Calls)
	}
	if stats.Rows != 10 {
		t.Errorf("Rows = %d, want 10", stats.Rows)
	}
	if stats.Batches != 3 || stats.EmptyBatches != 0 {
		t.Errorf("Batches = %d, EmptyBatches = %d", stats.Batches, stats.EmptyBatches)
	}
	if stats.EndOfStreams != 1 {
		t.Errorf("EndOfStreams = %d, want 1", stats.EndOfStreams)
	}
	if stats.Next.Min != time.Millisecond || stats.Next.Max != 4*time.Millisecond {
		t.Errorf("Next min/max = %v/%v", stats.Next.Min, stats.Next.Max)
	}
	if stats.RowsPerSec != 10 {
		t.Errorf("RowsPerSec = %v, want 10", stats.RowsPerSec)
	}
}

func TestCollectorEmptyEOSBatch(t *testing.T) {
	c := NewCollector()
	c.ObserveBatch(time.Microsecond, 0, true, nil)

	stats := c.Stats(time.Second)
	if stats.EmptyBatches != 1 || stats.Batches != 0 {
		t.Errorf("Batches = %d, EmptyBatches = %d", stats.Batches, stats.EmptyBatches)
	}
	if stats.EndOfStreams != 1 {
		t.Errorf("EndOfStreams = %d, want 1", stats.EndOfStreams)
	}
}

func TestCollectorFailuresGroupedByKind(t *testing.T) {
	c := NewCollector()
	fault := fmt.Errorf("%w at call 2", supplier.ErrInjectedFault)
	c.ObserveBatch(time.Millisecond, 0, false, fault)
	c.ObserveBatch(time.Millisecond, 0, false, fault)
	c.ObserveBatch(time.Millisecond, 0, false, errors.New("disk gone"))

	stats := c.Stats(time.Second)
	if stats.FailedCalls != 3 {
		t.Fatalf("FailedCalls = %d, want 3", stats.FailedCalls)
	}
	if stats.Errors["Injected fault"] != 2 {
		t.Errorf("Errors = %v", stats.Errors)
	}
	if stats.Errors["Error"] != 1 {
		t.Errorf("Errors = %v", stats.Errors)
	}
	if stats.Rows != 0 {
		t.Errorf("failed calls must not count rows, got %d", stats.Rows)
	}
}

func TestCollectorRecordTrial(t *testing.T) {
	c := NewCollector()
	c.RecordTrial(10*time.Millisecond, nil)
	c.RecordTrial(30*time.Millisecond, nil)
	c.RecordTrial(time.Hour, errors.New("boom"))

	stats := c.Stats(2 * time.Second)
	if stats.Trials != 3 || stats.TrialSuccesses != 2 || stats.TrialFailures != 1 {
		t.Fatalf("trials = %d/%d/%d", stats.Trials, stats.TrialSuccesses, stats.TrialFailures)
	}
	if stats.Sort.Max != 30*time.Millisecond {
		t.Errorf("Sort.Max = %v, failed trials must not be recorded", stats.Sort.Max)
	}
	if stats.Sort.Mean != 20*time.Millisecond {
		t.Errorf("Sort.Mean = %v, want 20ms", stats.Sort.Mean)
	}
	if stats.Sort.MaxMs != 30 {
		t.Errorf("Sort.MaxMs = %v, want 30", stats.Sort.MaxMs)
	}
	if stats.TrialsPerSec != 1.5 {
		t.Errorf("TrialsPerSec = %v, want 1.5", stats.TrialsPerSec)
	}
}

func TestCollectorPercentiles(t *testing.T) {
	c := NewCollector()
	for i := 1; i <= 100; i++ {
		c.ObserveBatch(time.Duration(i)*time.Millisecond, 1, false, nil)
	}
	stats := c.Stats(time.Second)

	within := func(name string, got, want time.Duration) {
		t.Helper()
		diff := got - want
		if diff < 0 {
			diff = -diff
		}
		if diff > want/100 {
			t.Errorf("%s = %v, want about %v", name, got, want)
		}
	}
	within("P50", stats.Next.P50, 50*time.Millisecond)
	within("P90", stats.Next.P90, 90*time.Millisecond)
	within("P99", stats.Next.P99, 99*time.Millisecond)
}

func TestCollectorZeroElapsed(t *testing.T) {
	c := NewCollector()
	c.ObserveBatch(time.Millisecond, 5, true, nil)
	stats := c.Stats(0)
	if stats.RowsPerSec != 0 || stats.TrialsPerSec != 0 {
		t.Errorf("rates with zero elapsed = %v/%v", stats.RowsPerSec, stats.TrialsPerSec)
	}
	if stats.Errors != nil {
		t.Errorf("Errors = %v, want nil", stats.Errors)
	}
}

func TestCollectorConcurrentUse(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				c.ObserveBatch(time.Microsecond*time.Duration(i+1), 2, false, nil)
			}
			c.RecordTrial(time.Millisecond, nil)
		}()
	}
	wg.Wait()

	stats := c.Stats(time.Second)
	if stats.Calls != 2000 || stats.Rows != 4000 {
		t.Errorf("Calls = %d, Rows = %d", stats.Calls, stats.Rows)
	}
	if stats.Trials != 8 {
		t.Errorf("Trials = %d, want 8", stats.Trials)
	}
}
