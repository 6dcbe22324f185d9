// Package runner provides the trial execution engine for sortbench.
//
// The runner package orchestrates concurrent trial execution with support for:
//   - Configurable concurrency levels
//   - Pacing of trial starts (trials per second)
//   - Duration-based and count-based termination
//   - Uniform and Poisson arrival models
//
// # Basic Usage
//
//	r := runner.New(runner.Options{
//		Concurrency:   4,
//		Trials:        100,
//		Duration:      time.Minute,
//		RatePerSecond: 10,
//		Trial:         myTrial,
//	})
//	result := r.Run(ctx)
//
// # Trial Interface
//
// The [Trial] interface defines what a runner executes:
//
//	type Trial interface {
//		Run(ctx context.Context) error
//	}
//
// A sortbench trial builds a supplier, sorts its rows and verifies the output.
//
// # Arrival Models
//
//   - [ArrivalModelUniform]: trials start at fixed intervals (rate.Limiter)
//   - [ArrivalModelPoisson]: exponential gaps between starts
//
// # Middleware
//
//   - [WithLogging]: log trial failures
package runner
