package logger

import (
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

var sentryEnabled bool

// Init initializes the global logger
func Init(environment string) error {
	var err error
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	log, err = config.Build()
	if err != nil {
		return err
	}

	return nil
}

// InitSentry enables error capture for background tasks. Safe to skip when
// the DSN is empty.
func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
	if err != nil {
		return err
	}
	sentryEnabled = true
	return nil
}

// Get returns the global logger instance
func Get() *zap.Logger {
	if log == nil {
		// Fallback to a basic logger if Init wasn't called
		log, _ = zap.NewDevelopment()
	}
	return log
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	Get().Info(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	Get().Error(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	Get().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	Get().Warn(msg, fields...)
}

// CaptureError logs an error and forwards it to Sentry when configured.
// Background pollers use this so a failed cycle is visible without ever
// propagating to the caller.
func CaptureError(err error, msg string, fields ...zap.Field) {
	Get().Error(msg, append(fields, zap.Error(err))...)
	if sentryEnabled {
		sentry.CaptureException(err)
	}
}

// Sync flushes any buffered log entries
func Sync() error {
	if sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
	if log != nil {
		return log.Sync()
	}
	return nil
}
