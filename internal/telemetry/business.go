package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BusinessTracer traces the phases of a dashboard render: loading the
// series, building the table and drawing the chart. Spans go to whichever
// provider is global at the time they start.
type BusinessTracer struct{}

// NewBusinessTracer creates a new instance of BusinessTracer.
func NewBusinessTracer() *BusinessTracer {
	return &BusinessTracer{}
}

func (bt *BusinessTracer) tracer() trace.Tracer {
	return otel.Tracer(ServiceName + "/dashboard")
}

// TraceLoad starts the span covering one read of the prediction file.
func (bt *BusinessTracer) TraceLoad(ctx context.Context, dataPath string) (context.Context, trace.Span) {
	return bt.tracer().Start(ctx, "dashboard.load",
		trace.WithAttributes(attribute.String("dashboard.data_path", dataPath)))
}

// RecordLoadResult sets the record count, or marks the span failed.
func (bt *BusinessTracer) RecordLoadResult(span trace.Span, records int, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return
	}
	span.SetAttributes(attribute.Int("dashboard.records", records))
}

// TraceTable starts the span covering the table widget.
func (bt *BusinessTracer) TraceTable(ctx context.Context) (context.Context, trace.Span) {
	return bt.tracer().Start(ctx, "dashboard.table")
}

// RecordTableRows sets the number of rendered rows.
func (bt *BusinessTracer) RecordTableRows(span trace.Span, rows int) {
	span.SetAttributes(attribute.Int("dashboard.rows", rows))
}

// TraceChart starts the span covering the chart widget.
func (bt *BusinessTracer) TraceChart(ctx context.Context, points int) (context.Context, trace.Span) {
	return bt.tracer().Start(ctx, "dashboard.chart",
		trace.WithAttributes(attribute.Int("dashboard.points", points)))
}

// RecordChartError marks the chart span failed.
func (bt *BusinessTracer) RecordChartError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "chart render failed")
}
