package config

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// SetupLogger initializes the global zap logger
func SetupLogger(envType string) error {
	var cfg zap.Config
	if strings.ToUpper(envType) == "SERVER" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// Logger returns the global logger, falling back to a no-op logger
// when SetupLogger has not run (tests).
func Logger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Info logs an info message with fields
func Info(msg string, fields ...zap.Field) {
	Logger().Info(msg, fields...)
}

// Warning logs a warning message with fields
func Warning(msg string, fields ...zap.Field) {
	Logger().Warn(msg, fields...)
}

// Error logs an error message with fields
func Error(msg string, fields ...zap.Field) {
	Logger().Error(msg, fields...)
}
