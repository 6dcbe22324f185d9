// Package batch provides the bounded row container exchanged between a
// supplier and its consumer.
package batch

import "fmt"

// Row is a single row of values. Values are nil, bool, int64, float64 or string.
type Row []any

// Batch is a caller-owned, ordered sequence of rows with a fixed capacity.
// Suppliers fill it during a call; the caller keeps ownership across calls.
type Batch struct {
	rows     []Row
	capacity int
}

// New creates an empty batch that holds at most capacity rows. It panics
// when capacity < 1, as make does for a negative length; callers taking
// capacity from input validate it first (supplier.Drain returns an error).
func New(capacity int) *Batch {
	if capacity < 1 {
		panic(fmt.Sprintf("batch: capacity must be >= 1, got %d", capacity))
	}
	return &Batch{
		rows:     make([]Row, 0, capacity),
		capacity: capacity,
	}
}

// Capacity returns the maximum number of rows the batch holds.
func (b *Batch) Capacity() int {
	return b.capacity
}

// Len returns the number of rows currently in the batch.
func (b *Batch) Len() int {
	return len(b.rows)
}

// Remaining returns how many more rows fit before the batch is full.
func (b *Batch) Remaining() int {
	return b.capacity - len(b.rows)
}

// Full reports whether the batch is at capacity.
func (b *Batch) Full() bool {
	return len(b.rows) >= b.capacity
}

// Append adds a row. It returns false and leaves the batch unchanged when full.
func (b *Batch) Append(row Row) bool {
	if b.Full() {
		return false
	}
	b.rows = append(b.rows, row)
	return true
}

// Rows returns the rows in delivery order. The slice is only valid until
// the next Reset; callers that keep rows must copy the slice.
func (b *Batch) Rows() []Row {
	return b.rows
}

// Row returns the i-th row.
func (b *Batch) Row(i int) Row {
	return b.rows[i]
}

// Reset discards the logical contents while keeping the backing storage.
func (b *Batch) Reset() {
	clear(b.rows)
	b.rows = b.rows[:0]
}
