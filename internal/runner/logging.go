package runner

import "context"

// FailureLogger logs failed trials.
type FailureLogger interface {
	LogFailure(err error)
}

// loggingTrial wraps a Trial with failure logging.
type loggingTrial struct {
	inner  Trial
	logger FailureLogger
}

// WithLogging wraps a Trial to log failures.
func WithLogging(trial Trial, logger FailureLogger) Trial {
	if logger == nil {
		return trial
	}
	return &loggingTrial{
		inner:  trial,
		logger: logger,
	}
}

func (l *loggingTrial) Run(ctx context.Context) error {
	err := l.inner.Run(ctx)
	if err != nil && ctx.Err() == nil {
		l.logger.LogFailure(err)
	}
	return err
}
