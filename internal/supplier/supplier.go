package supplier

import (
	"context"
	"errors"

	"github.com/torosent/sortbench/internal/batch"
)

// Supplier produces rows into caller-owned batches.
type Supplier interface {
	// Next replaces the contents of b with the next rows and reports whether
	// the stream ended with this call. On error, b and eos are unspecified.
	Next(ctx context.Context, b *batch.Batch) (eos bool, err error)

	// Close releases any resources held by the supplier. It is safe to call
	// more than once.
	Close() error
}

var (
	// ErrCallAfterEOS is returned when Next is called after a call reported eos.
	ErrCallAfterEOS = errors.New("supplier: next called after end of stream")

	// ErrCallAfterFailure is returned when Next is called after a failed call.
	ErrCallAfterFailure = errors.New("supplier: next called after failure")

	// ErrNilBatch is returned when Next receives a nil batch.
	ErrNilBatch = errors.New("supplier: nil batch")

	// ErrClosed is returned when Next is called on a closed supplier.
	ErrClosed = errors.New("supplier: closed")

	// ErrInjectedFault marks failures produced by WithFault.
	ErrInjectedFault = errors.New("supplier: injected fault")
)

// State is the position of a supplier instance in its lifecycle.
type State int

const (
	// StateRunning is the initial state: rows may still be produced.
	StateRunning State = iota
	// StateDone is reached on the first successful call reporting eos.
	StateDone
	// StateFailed is reached on the first failed call.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further calls are allowed.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
