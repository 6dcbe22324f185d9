// Package supplier defines the batch supplier contract: a pull-based way for a
// lightweight producer to hand bounded batches of rows to a single consumer.
//
// # Contract
//
// A [Supplier] exposes one operation:
//
//	Next(ctx context.Context, b *batch.Batch) (eos bool, err error)
//
// The caller owns b. Each call replaces the logical contents of b with zero
// or more rows, up to b.Capacity(). A nil error means b and eos are valid.
// A non-nil error means production cannot continue: the caller must stop
// calling and must not use b or eos.
//
// eos is reported eagerly, on the call that delivers the final rows. Ten rows
// read through a batch of capacity four arrive as 4, 4 and 2 rows with eos
// false, false and true. A stream with no rows returns an empty batch and
// eos=true on the first call.
//
// Calling Next again after eos=true is a precondition violation and returns
// [ErrCallAfterEOS]. Calling it after a failure returns [ErrCallAfterFailure].
//
// # Driving loop
//
// [Drain] implements the consumer side: it calls Next until eos or failure
// and never calls past either signal.
//
//	summary, err := supplier.Drain(ctx, s, 1024, func(b *batch.Batch) error {
//		for _, row := range b.Rows() {
//			consume(row)
//		}
//		return nil
//	})
//
// # State machine
//
// [Check] wraps any supplier and enforces the Running -> Done / Failed
// transitions regardless of how carefully the concrete producer tracks them.
//
// # Middleware
//
// Suppliers compose like the runner's trials:
//   - [WithFault]: inject a failure at a known call or row count
//   - [WithRateLimit]: pace calls to simulate a slow upstream source
//   - [WithObserver]: report per-call latency and row counts
//   - [WithLogging]: log failures
//
// A supplier instance is driven by exactly one consumer and is not safe for
// concurrent use. Its owner calls Close once the consumer is done.
package supplier
