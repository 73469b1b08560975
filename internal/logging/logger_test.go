package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		out = append(out, entry)
	}
	return out
}

func TestStandardLogger_ContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStandardLoggerWithWriter(&buf, "debug", "test")

	logger.WithComponent("renderer").Info("component message")
	logger.WithOperation("load").Info("operation message")
	logger.WithRequestID("req-1").Info("request message")
	logger.WithService("dashboard").Info("service message")
	logger.WithError(errors.New("boom")).Error("error message")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 5)
	assert.Equal(t, "renderer", entries[0]["component"])
	assert.Equal(t, "load", entries[1]["operation"])
	assert.Equal(t, "req-1", entries[2]["request_id"])
	assert.Equal(t, "dashboard", entries[3]["service"])
	assert.Equal(t, "boom", entries[4]["error"])
	for _, e := range entries {
		assert.Equal(t, "test", e["environment"])
	}
}

func TestStandardLogger_Events(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStandardLoggerWithWriter(&buf, "debug", "test")

	logger.LogStartup("prediction-dashboard", "1.0.0", 8501)
	logger.LogAPIRequest("GET", "/", 200, 12, "req-2")
	logger.LogRender("predictions.csv", 60, 3)
	logger.LogShutdown("prediction-dashboard", "signal")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 4)
	assert.Equal(t, "startup", entries[0]["event"])
	assert.Equal(t, float64(8501), entries[0]["port"])
	assert.Equal(t, "api", entries[1]["event"])
	assert.Equal(t, float64(200), entries[1]["status"])
	assert.Equal(t, "render", entries[2]["event"])
	assert.Equal(t, float64(60), entries[2]["records"])
	assert.Equal(t, "shutdown", entries[3]["event"])
}

func TestStandardLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStandardLoggerWithWriter(&buf, "warn", "test")

	logger.Logger().Info("hidden")
	logger.LogRender("predictions.csv", 1, 1)
	logger.Logger().Warn("shown")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
}

func TestGetSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, getSlogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, getSlogLevel("warning"))
	assert.Equal(t, slog.LevelError, getSlogLevel("error"))
	assert.Equal(t, slog.LevelInfo, getSlogLevel("anything"))
}

func TestParseLogrusLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogrusLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, ParseLogrusLevel("warn"))
	assert.Equal(t, logrus.ErrorLevel, ParseLogrusLevel("error"))
	assert.Equal(t, logrus.InfoLevel, ParseLogrusLevel(""))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestNewGinWriter(t *testing.T) {
	var out syncBuffer
	w := NewGinWriter(&out, "info", logrus.InfoLevel)

	_, err := w.Write([]byte("[GIN-debug] GET / handler\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"component":"gin"`) &&
			strings.Contains(out.String(), `"level":"info"`) &&
			strings.Contains(out.String(), "[GIN-debug] GET / handler")
	}, time.Second, 10*time.Millisecond)
}

func TestNewGinWriter_ErrorLevel(t *testing.T) {
	var out syncBuffer
	w := NewGinWriter(&out, "error", logrus.ErrorLevel)

	_, err := w.Write([]byte("panic recovered\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"level":"error"`) &&
			strings.Contains(out.String(), "panic recovered")
	}, time.Second, 10*time.Millisecond)
}

// recordingLogger captures emitted OTLP records.
type recordingLogger struct {
	embedded.Logger
	records []otellog.Record
}

func (r *recordingLogger) Emit(ctx context.Context, record otellog.Record) {
	r.records = append(r.records, record)
}

func (r *recordingLogger) Enabled(ctx context.Context, param otellog.EnabledParameters) bool {
	return true
}

func TestOTLPHandler(t *testing.T) {
	rec := &recordingLogger{}
	logger := slog.New(NewOTLPHandler(rec, slog.LevelInfo)).With("component", "renderer")

	logger.Debug("dropped")
	logger.WithGroup("data").Warn("file missing", "path", "predictions.csv")

	require.Len(t, rec.records, 1)
	record := rec.records[0]
	assert.Equal(t, "file missing", record.Body().AsString())
	assert.Equal(t, otellog.SeverityWarn, record.Severity())

	attrs := map[string]string{}
	record.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	assert.Equal(t, "renderer", attrs["component"])
	assert.Equal(t, "predictions.csv", attrs["data.path"])
}

func TestNewOTLPLogger_Disabled(t *testing.T) {
	l, err := NewOTLPLogger(OTLPConfig{Enabled: false, LogLevel: "info"})
	require.NoError(t, err)
	assert.NotNil(t, l.Logger())
	assert.NoError(t, l.Shutdown(context.Background()))
}
