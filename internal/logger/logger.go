package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger *Logger

// Logger wraps zap.SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
}

// Init builds the global logger. Production uses JSON output, everything else
// the colored console encoder.
func Init(level string, env string) error {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	l, err := config.Build(zap.AddStacktrace(zapcore.FatalLevel))
	if err != nil {
		return err
	}
	globalLogger = &Logger{SugaredLogger: l.Sugar()}
	return nil
}

// Get returns the global logger, falling back to a development logger.
func Get() *Logger {
	if globalLogger == nil {
		l, _ := zap.NewDevelopment()
		globalLogger = &Logger{SugaredLogger: l.Sugar()}
	}
	return globalLogger
}

// Nop returns a logger that discards everything. Used by tests and as the
// default for components constructed without a logger.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// With creates a child logger with additional fields.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(args...)}
}

// Sync flushes any buffered log entries.
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}
