package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// slowQueryThreshold is where a query graduates from span-only visibility to a
// warning log. Partition-pruned ledger scans normally finish well under this.
const slowQueryThreshold = 500 * time.Millisecond

// TracedPool wraps a DatabasePool with per-query OpenTelemetry spans and
// slow-query logging. It implements DatabasePool itself, so it can sit
// transparently between the pgx pool and the repositories.
type TracedPool struct {
	pool   DatabasePool
	tracer trace.Tracer
}

// NewTracedPool wraps pool with query tracing.
func NewTracedPool(pool DatabasePool) *TracedPool {
	return &TracedPool{
		pool:   pool,
		tracer: otel.Tracer("chainstats/database"),
	}
}

func (p *TracedPool) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	ctx, span := p.start(ctx, "db.Query", sql)
	defer span.End()

	began := time.Now()
	rows, err := p.pool.Query(ctx, sql, args...)
	p.finish(span, sql, began, err)
	return rows, err
}

func (p *TracedPool) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	ctx, span := p.start(ctx, "db.QueryRow", sql)
	defer span.End()

	began := time.Now()
	row := p.pool.QueryRow(ctx, sql, args...)
	p.finish(span, sql, began, nil)
	return row
}

func (p *TracedPool) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	ctx, span := p.start(ctx, "db.Exec", sql)
	defer span.End()

	began := time.Now()
	tag, err := p.pool.Exec(ctx, sql, args...)
	if err == nil {
		span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))
	}
	p.finish(span, sql, began, err)
	return tag, err
}

func (p *TracedPool) start(ctx context.Context, op, sql string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.statement", sql),
		),
	)
}

func (p *TracedPool) finish(span trace.Span, sql string, began time.Time, err error) {
	elapsed := time.Since(began)
	span.SetAttributes(attribute.Int64("db.duration_ms", elapsed.Milliseconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	if elapsed > slowQueryThreshold {
		logrus.WithFields(logrus.Fields{
			"duration_ms": elapsed.Milliseconds(),
			"statement":   sql,
		}).Warn("Slow database query")
	}
}
