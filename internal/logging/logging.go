// Package logging builds the zap loggers used by the service layers.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to stderr at the given level. Format is
// "json" for machine-readable output or "console" (the default).
func New(level, format string) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zap.ParseAtomicLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	enc, err := encoder(format)
	if err != nil {
		return nil, err
	}
	return NewWithCore(zapcore.NewCore(enc, zapcore.Lock(os.Stderr), lvl)), nil
}

// NewWithCore wraps an existing core with the fields every tally logger
// carries.
func NewWithCore(core zapcore.Core) *zap.Logger {
	return zap.New(core, zap.AddCaller()).With(zap.String("app", "tally"))
}

func encoder(format string) (zapcore.Encoder, error) {
	switch strings.ToLower(format) {
	case "json":
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg), nil
	case "", "console":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		return zapcore.NewConsoleEncoder(cfg), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
