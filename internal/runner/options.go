package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Trial abstracts executing one benchmark trial.
// Implementations should return an error for failed trials.
type Trial interface {
	Run(ctx context.Context) error
}

// TrialFunc adapts a function to the Trial interface.
type TrialFunc func(ctx context.Context) error

func (f TrialFunc) Run(ctx context.Context) error { return f(ctx) }

// ArrivalModel selects how trial starts are spaced when a rate is set.
type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

// Options configure the Runner.
type Options struct {
	Concurrency    int                         // number of worker goroutines
	Trials         int                         // total trials to execute (0 means unlimited until duration/end)
	Duration       time.Duration               // overall time limit (0 means no duration cap)
	RatePerSecond  int                         // trial starts per second (0 means unlimited)
	ArrivalModel   ArrivalModel                // spacing of trial starts
	RandomSeed     int64                       // seed for the Poisson sampler
	Trial          Trial                       // trial executor (required)
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
	PoissonSampler func() float64              // optional injection for tests
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.Trials < 0 {
		o.Trials = 0
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.ArrivalModel == "" {
		o.ArrivalModel = ArrivalModelUniform
	}
	if o.RandomSeed == 0 {
		o.RandomSeed = time.Now().UnixNano()
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}
