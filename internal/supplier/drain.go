package supplier

import (
	"context"
	"fmt"

	"github.com/torosent/sortbench/internal/batch"
)

// Summary describes one pass of the driving loop.
type Summary struct {
	Calls        int   `json:"calls"`
	Batches      int   `json:"batches"`
	EmptyBatches int   `json:"empty_batches"`
	Rows         int64 `json:"rows"`
	EOS          bool  `json:"eos"`
}

// Drain drives s until it reports end of stream or fails, handing every
// non-empty batch to fn. The batch passed to fn is reused by the next call.
// An error from fn abandons the stream early. Drain does not close s.
func Drain(ctx context.Context, s Supplier, capacity int, fn func(*batch.Batch) error) (Summary, error) {
	var sum Summary
	if s == nil {
		return sum, fmt.Errorf("supplier is nil")
	}
	if capacity < 1 {
		return sum, fmt.Errorf("batch capacity must be >= 1, got %d", capacity)
	}

	b := batch.New(capacity)
	for {
		eos, err := s.Next(ctx, b)
		sum.Calls++
		if err != nil {
			return sum, err
		}

		if n := b.Len(); n > 0 {
			sum.Batches++
			sum.Rows += int64(n)
			if fn != nil {
				if err := fn(b); err != nil {
					return sum, err
				}
			}
		} else {
			sum.EmptyBatches++
		}

		if eos {
			sum.EOS = true
			return sum, nil
		}
	}
}
