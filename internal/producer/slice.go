package producer

import (
	"context"

	"github.com/torosent/sortbench/internal/batch"
	"github.com/torosent/sortbench/internal/supplier"
)

// SliceSupplier replays an in-memory set of rows in order.
type SliceSupplier struct {
	rows  []batch.Row
	index int
	done  bool
}

// NewSlice creates a supplier that replays rows. The rows are not copied.
func NewSlice(rows []batch.Row) *SliceSupplier {
	return &SliceSupplier{rows: rows}
}

// NewEmpty creates a supplier with no rows. Its first call reports eos.
func NewEmpty() *SliceSupplier {
	return NewSlice(nil)
}

func (s *SliceSupplier) Next(_ context.Context, b *batch.Batch) (bool, error) {
	if s.done {
		return true, supplier.ErrCallAfterEOS
	}
	b.Reset()
	for !b.Full() && s.index < len(s.rows) {
		b.Append(s.rows[s.index])
		s.index++
	}
	s.done = s.index >= len(s.rows)
	return s.done, nil
}

func (s *SliceSupplier) Close() error {
	return nil
}

// Len returns the number of rows the supplier replays.
func (s *SliceSupplier) Len() int {
	return len(s.rows)
}
