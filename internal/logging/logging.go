// Package logging builds the zap logger used by the sortbench command.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to w (stderr when nil). verbose
// enables debug output.
func New(w io.Writer, verbose bool) *zap.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)
	return zap.New(core)
}

// FailureLogger logs supplier and trial failures at error level. It
// satisfies both supplier.FailureLogger and runner.FailureLogger.
type FailureLogger struct {
	log *zap.Logger
}

// NewFailureLogger tags every entry with component.
func NewFailureLogger(log *zap.Logger, component string) *FailureLogger {
	if log == nil {
		log = zap.NewNop()
	}
	return &FailureLogger{log: log.With(zap.String("component", component))}
}

func (l *FailureLogger) LogFailure(err error) {
	if err == nil {
		return
	}
	l.log.Error("failure", zap.Error(err))
}
