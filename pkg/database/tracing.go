package database

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/adboard/adboard/pkg/database"

type slowQueryLogging struct {
	threshold time.Duration
	logger    *slog.Logger
}

var slowQueryCfg atomic.Pointer[slowQueryLogging]

// SetSlowQueryLogging turns on slow query warnings: any traced query that
// runs longer than threshold is logged with its operation name, statement,
// and duration. A zero threshold disables it.
func SetSlowQueryLogging(threshold time.Duration, logger *slog.Logger) {
	slowQueryCfg.Store(&slowQueryLogging{threshold: threshold, logger: logger})
}

// TraceQuery opens a client span for a database operation and returns the
// completion callback, usually deferred:
//
//	ctx, end := database.TraceQuery(ctx, "GetFavourite", "SELECT ... FROM favourites WHERE id = $1")
//	defer func() { end(err) }()
func TraceQuery(ctx context.Context, operation, statement string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", statement),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		logSlowQuery(ctx, operation, statement, time.Since(start), err)
	}
}

func logSlowQuery(ctx context.Context, operation, statement string, elapsed time.Duration, err error) {
	cfg := slowQueryCfg.Load()
	if cfg == nil || cfg.threshold <= 0 || cfg.logger == nil || elapsed < cfg.threshold {
		return
	}

	attrs := []any{
		slog.String("operation", operation),
		slog.String("statement", statement),
		slog.Duration("duration", elapsed),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	cfg.logger.WarnContext(ctx, "slow query detected", attrs...)
}
