// Package logging provides structured logging for wiredoc runs
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with the fields attached so far
type Logger struct {
	*zap.Logger
	fields map[string]interface{}
}

// Config holds logging configuration
type Config struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"` // "json" or "console"
	OutputPath  string `yaml:"output_path"`
	Development bool   `yaml:"development"`
}

// New creates a logger. Unknown levels fall back to info; output goes to
// stderr unless OutputPath is set.
func New(config Config) (*Logger, error) {
	var zapConfig zap.Config

	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	zapConfig.Level = ParseLevel(config.Level)

	if config.Format == "json" {
		zapConfig.Encoding = "json"
	} else {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zapConfig.DisableStacktrace = !config.Development

	if config.OutputPath != "" {
		zapConfig.OutputPaths = []string{config.OutputPath}
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger: logger,
		fields: map[string]interface{}{},
	}, nil
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop(), fields: map[string]interface{}{}}
}

// ParseLevel parses a level name, falling back to info
func ParseLevel(s string) zap.AtomicLevel {
	level, err := zap.ParseAtomicLevel(s)
	if err != nil {
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return level
}

// Tee returns a logger that also writes JSON entries at level or above to
// path, truncating it first. The returned close func syncs and closes the
// file.
func (l *Logger) Tee(path string, level string) (*Logger, func() error, error) {
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return nil, nil, err
	}
	sink, closeSink, err := zap.Open(path)
	if err != nil {
		return nil, nil, err
	}
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		sink,
		ParseLevel(level),
	)

	tee := l.Logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	}))

	closeFn := func() error {
		err := sink.Sync()
		closeSink()
		return err
	}
	return &Logger{Logger: tee, fields: l.Fields()}, closeFn, nil
}

// Fields returns a copy of the fields attached to l
func (l *Logger) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		out[k] = v
	}
	return out
}

// WithField adds a field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	newFields := l.Fields()
	newFields[key] = value

	return &Logger{
		Logger: l.Logger.With(zap.Any(key, value)),
		fields: newFields,
	}
}

// WithFields adds multiple fields to the logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	newFields := l.Fields()
	for k, v := range fields {
		newFields[k] = v
	}

	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}

	return &Logger{
		Logger: l.Logger.With(zapFields...),
		fields: newFields,
	}
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.Logger.Sync()
}
