package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func attrs(span sdktrace.ReadOnlySpan) map[string]interface{} {
	out := map[string]interface{}{}
	for _, kv := range span.Attributes() {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func TestBusinessTracer_Render(t *testing.T) {
	recorder := withRecorder(t)
	bt := NewBusinessTracer()

	ctx, load := bt.TraceLoad(context.Background(), "predictions.csv")
	bt.RecordLoadResult(load, 60, nil)
	load.End()

	_, table := bt.TraceTable(ctx)
	bt.RecordTableRows(table, 60)
	table.End()

	_, chart := bt.TraceChart(ctx, 60)
	chart.End()

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	assert.Equal(t, "dashboard.load", spans[0].Name())
	assert.Equal(t, "predictions.csv", attrs(spans[0])["dashboard.data_path"])
	assert.Equal(t, int64(60), attrs(spans[0])["dashboard.records"])

	assert.Equal(t, "dashboard.table", spans[1].Name())
	assert.Equal(t, int64(60), attrs(spans[1])["dashboard.rows"])
	assert.Equal(t, spans[0].SpanContext().TraceID(), spans[1].SpanContext().TraceID())

	assert.Equal(t, "dashboard.chart", spans[2].Name())
	assert.Equal(t, int64(60), attrs(spans[2])["dashboard.points"])
}

func TestBusinessTracer_Errors(t *testing.T) {
	recorder := withRecorder(t)
	bt := NewBusinessTracer()

	_, load := bt.TraceLoad(context.Background(), "missing.csv")
	bt.RecordLoadResult(load, 0, errors.New("no such file"))
	load.End()

	_, chart := bt.TraceChart(context.Background(), 0)
	bt.RecordChartError(chart, errors.New("bad series"))
	chart.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	for _, span := range spans {
		assert.Equal(t, codes.Error, span.Status().Code)
		require.NotEmpty(t, span.Events())
		assert.Equal(t, "exception", span.Events()[0].Name)
	}
	assert.NotContains(t, attrs(spans[0]), "dashboard.records")
}
