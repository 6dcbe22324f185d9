package supplier

import (
	"context"
	"fmt"

	"github.com/torosent/sortbench/internal/batch"
)

// Checked enforces the supplier state machine around any producer.
type Checked struct {
	inner  Supplier
	state  State
	err    error
	calls  int
	rows   int64
	closed bool
}

// Check wraps s so that every call follows the contract. A Checked supplier
// is returned unchanged.
func Check(s Supplier) *Checked {
	if c, ok := s.(*Checked); ok {
		return c
	}
	return &Checked{inner: s}
}

// Next resets b, delegates to the wrapped producer and records the resulting
// state transition. Producer errors are returned verbatim.
func (c *Checked) Next(ctx context.Context, b *batch.Batch) (bool, error) {
	switch {
	case c.closed:
		return false, ErrClosed
	case c.state == StateDone:
		return true, ErrCallAfterEOS
	case c.state == StateFailed:
		return false, fmt.Errorf("%w: %w", ErrCallAfterFailure, c.err)
	case b == nil:
		c.fail(ErrNilBatch)
		return false, ErrNilBatch
	}

	b.Reset()
	c.calls++
	eos, err := c.inner.Next(ctx, b)
	if err != nil {
		c.fail(err)
		return false, err
	}
	c.rows += int64(b.Len())
	if eos {
		c.state = StateDone
	}
	return eos, nil
}

func (c *Checked) fail(err error) {
	c.state = StateFailed
	c.err = err
}

// Close closes the wrapped producer once.
func (c *Checked) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.inner.Close()
}

// State returns the current lifecycle state.
func (c *Checked) State() State {
	return c.state
}

// Err returns the failure that moved the supplier to StateFailed, if any.
func (c *Checked) Err() error {
	return c.err
}

// Calls returns how many calls reached the wrapped producer.
func (c *Checked) Calls() int {
	return c.calls
}

// Rows returns the number of rows delivered by successful calls.
func (c *Checked) Rows() int64 {
	return c.rows
}
