// Package zaplog backs the portfolio logging contracts with go.uber.org/zap.
package zaplog

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// Config selects the zap level and encoding ("json" or "console").
type Config struct {
	Level     string
	Format    string
	AddSource bool
}

// Provider hands out named zap loggers.
type Provider struct {
	root *zap.Logger
}

// NewProvider builds a production zap logger from cfg.
func NewProvider(cfg Config) (*Provider, error) {
	zcfg := zap.NewProductionConfig()

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
		zcfg.Encoding = "json"
	case "console", "pretty":
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return nil, fmt.Errorf("logging: unsupported zap format %q", cfg.Format)
	}
	zcfg.DisableCaller = !cfg.AddSource

	root, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build zap logger: %w", err)
	}
	return &Provider{root: root}, nil
}

// NewProviderFromLogger wraps an existing zap logger.
func NewProviderFromLogger(root *zap.Logger) *Provider {
	if root == nil {
		root = zap.NewNop()
	}
	return &Provider{root: root}
}

// GetLogger returns a child named after the module.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	named := p.root
	if name = strings.TrimSpace(name); name != "" {
		named = named.Named(name)
	}
	return &adapter{sugar: named.Sugar()}
}

// Sync flushes buffered entries.
func (p *Provider) Sync() error {
	if p == nil || p.root == nil {
		return nil
	}
	return p.root.Sync()
}

type adapter struct {
	sugar *zap.SugaredLogger
}

var (
	_ interfaces.Logger       = (*adapter)(nil)
	_ interfaces.FieldsLogger = (*adapter)(nil)
)

// zap has no trace level.
func (l *adapter) Trace(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *adapter) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *adapter) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *adapter) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *adapter) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }
func (l *adapter) Fatal(msg string, args ...any) { l.sugar.Fatalw(msg, args...) }

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	args := make([]any, 0, len(fields)*2)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		args = append(args, key, fields[key])
	}
	return &adapter{sugar: l.sugar.With(args...)}
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	return l.WithFields(logging.ContextFields(ctx))
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "trace", "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "fatal":
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("logging: unsupported zap level %q", level)
	}
}
