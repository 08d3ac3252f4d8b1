package btthermo

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger denotes a generic logger interface
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// NewDefaultLogger instantiates a zap based logger writing to stderr
func NewDefaultLogger(debug bool) Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewExample().Sugar()
	}

	return logger.Sugar()
}

// NullLogger discards all log messages
type NullLogger struct{}

// Debugf does nothing
func (l *NullLogger) Debugf(format string, args ...interface{}) {}

// Infof does nothing
func (l *NullLogger) Infof(format string, args ...interface{}) {}

// Warnf does nothing
func (l *NullLogger) Warnf(format string, args ...interface{}) {}

// Errorf does nothing
func (l *NullLogger) Errorf(format string, args ...interface{}) {}

// Fatalf does nothing
func (l *NullLogger) Fatalf(format string, args ...interface{}) {}
