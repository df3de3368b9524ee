// Package logging builds the service's zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON production logger for format "json" and a console
// development logger otherwise.
func New(level, format string) (*zap.Logger, error) {
	var zapCfg zap.Config
	if format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// GooseLogger adapts a zap logger to goose's migration logger.
type GooseLogger struct {
	sugar *zap.SugaredLogger
}

// NewGooseLogger wraps logger for goose.SetLogger.
func NewGooseLogger(logger *zap.Logger) *GooseLogger {
	return &GooseLogger{sugar: logger.Named("migrations").Sugar()}
}

func (l *GooseLogger) Printf(format string, v ...any) {
	l.sugar.Infof(format, v...)
}

func (l *GooseLogger) Fatalf(format string, v ...any) {
	l.sugar.Fatalf(format, v...)
}
