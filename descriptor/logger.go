package descriptor

import "go.uber.org/zap"

var logger = zap.NewNop()

// SetLogger sets the package logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Logger returns the package logger.
func Logger() *zap.Logger {
	return logger
}
