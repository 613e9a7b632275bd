package logger

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON production logger at the given level and installs it as
// the zap global.
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	zap.ReplaceGlobals(l)
	return l, nil
}

// WithContext decorates l with the trace and span ids found in ctx.
func WithContext(ctx context.Context, l *zap.Logger) *zap.Logger {
	spanContext := trace.SpanContextFromContext(ctx)
	if spanContext.HasTraceID() {
		l = l.With(zap.String("trace_id", spanContext.TraceID().String()))
	}
	if spanContext.HasSpanID() {
		l = l.With(zap.String("span_id", spanContext.SpanID().String()))
	}
	return l
}
