// Package logger arma el *zap.Logger de la app a partir de LOG_LEVEL/LOG_FORMAT.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

type Options struct {
	Level  string
	Format string
	App    string
}

// New: json usa el encoder de producción, text el de consola.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	if ParseFormat(opts.Format) == FormatJSON {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.Development = false
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(opts.Level))
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if app := strings.TrimSpace(opts.App); app != "" {
		l = l.With(zap.String("app", app))
	}
	return l, nil
}
