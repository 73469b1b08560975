package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/irfndi/prediction-dashboard/internal/dataset"
	"github.com/irfndi/prediction-dashboard/internal/logging"
	"github.com/irfndi/prediction-dashboard/internal/models"
)

// stubSource returns a fixed series or error and counts loads.
type stubSource struct {
	series *models.PredictionSeries
	err    error
	loads  int
}

func (s *stubSource) Load(ctx context.Context) (*models.PredictionSeries, error) {
	s.loads++
	return s.series, s.err
}

func (s *stubSource) Path() string { return "stub.csv" }

func scenarioSeries() *models.PredictionSeries {
	return &models.PredictionSeries{Records: []models.PredictionRecord{
		{Timestamp: time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC), Prediction: decimal.RequireFromString("150.25")},
		{Timestamp: time.Date(2024, 1, 1, 9, 31, 0, 0, time.UTC), Prediction: decimal.RequireFromString("150.40")},
	}}
}

func newTestRenderer(t *testing.T, source dataset.Source) *Renderer {
	t.Helper()
	localizer, err := NewLocalizer("es")
	require.NoError(t, err)
	return NewRenderer(source, localizer, logging.NewStandardLoggerWithWriter(io.Discard, "debug", "test"))
}

func TestRenderer_Scenario(t *testing.T) {
	r := newTestRenderer(t, &stubSource{series: scenarioSeries()})

	page, err := r.Render(context.Background(), language.Spanish)
	require.NoError(t, err)

	assert.Equal(t, "es", page.Lang)
	assert.Equal(t, "Predicción de Cotización de IBM 📈", page.Header.Title)
	assert.Equal(t, "Visualización de las predicciones para los próximos 60 minutos.", page.Header.Subtitle)
	assert.Equal(t, "Predicciones", page.Subheading)

	assert.Equal(t, "Fecha y Hora", page.Table.IndexLabel)
	assert.Equal(t, []string{"Precio ($)"}, page.Table.Columns)
	require.Len(t, page.Table.Rows, 2)
	assert.Equal(t, "2024-01-01 09:30:00", page.Table.Rows[0].Index)
	assert.Equal(t, []string{"150.25"}, page.Table.Rows[0].Values)
	assert.Equal(t, "2024-01-01 09:31:00", page.Table.Rows[1].Index)
	assert.Equal(t, []string{"150.40"}, page.Table.Rows[1].Values)

	assert.Equal(t, "Predicción de IBM", page.Chart.Title)
	assert.Equal(t, "Fecha y Hora", page.Chart.XAxisTitle)
	assert.Equal(t, "Precio ($)", page.Chart.YAxisTitle)
	require.Len(t, page.Chart.Traces, 1)
	trace := page.Chart.Traces[0]
	assert.Equal(t, "Predicción", trace.Name)
	assert.Equal(t, "lines+markers", trace.Mode)
	assert.Equal(t, scenarioSeries().Timestamps(), trace.X)
	assert.Equal(t, []float64{150.25, 150.4}, trace.Y)

	assert.True(t, strings.HasPrefix(strings.TrimSpace(string(page.ChartSVG)), "<svg"))
}

func TestRenderer_TablePreservesValuesAndOrder(t *testing.T) {
	series := &models.PredictionSeries{}
	base := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	for i := 59; i >= 0; i-- {
		series.Records = append(series.Records, models.PredictionRecord{
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			Prediction: decimal.NewFromFloat(180 + float64(i)/100),
		})
	}
	r := newTestRenderer(t, &stubSource{series: series})

	page, err := r.Render(context.Background(), language.English)
	require.NoError(t, err)

	require.Len(t, page.Table.Rows, len(series.Records))
	for i, rec := range series.Records {
		row := page.Table.Rows[i]
		assert.True(t, rec.Timestamp.Equal(row.Timestamp))
		assert.True(t, rec.Prediction.Equal(row.Prediction))
		assert.Equal(t, models.FormatTimestamp(rec.Timestamp), row.Index)
	}
	assert.Equal(t, series.Timestamps(), page.Chart.Traces[0].X)
	assert.Equal(t, series.Predictions(), page.Chart.Traces[0].Y)
}

func TestRenderer_EmptySeries(t *testing.T) {
	r := newTestRenderer(t, &stubSource{series: &models.PredictionSeries{Records: []models.PredictionRecord{}}})

	page, err := r.Render(context.Background(), language.Spanish)
	require.NoError(t, err)

	assert.Empty(t, page.Table.Rows)
	assert.Equal(t, "Fecha y Hora", page.Table.IndexLabel)
	assert.Equal(t, []string{"Precio ($)"}, page.Table.Columns)
	require.Len(t, page.Chart.Traces, 1)
	assert.Empty(t, page.Chart.Traces[0].X)
	assert.Empty(t, page.Chart.Traces[0].Y)
	assert.Contains(t, string(page.ChartSVG), "<svg")
}

func TestRenderer_LoadFailureDrawsNothing(t *testing.T) {
	source := &stubSource{err: models.NewDataUnavailableErrorf("stub.csv", "missing required column %q", models.ColumnPrediction)}
	r := newTestRenderer(t, source)

	page, err := r.Render(context.Background(), language.Spanish)
	assert.Nil(t, page)

	var dataErr *models.DataUnavailableError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, 1, source.loads)
}

func TestRenderer_MissingPredictionColumnFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.csv")
	require.NoError(t, os.WriteFile(path, []byte("timestamp\n2024-01-01T09:30:00Z\n"), 0o600))
	r := newTestRenderer(t, dataset.NewLoader(path, ""))

	_, err := r.Render(context.Background(), language.Spanish)
	var dataErr *models.DataUnavailableError
	require.True(t, errors.As(err, &dataErr))
	assert.Contains(t, dataErr.Reason, `"prediction"`)
}

func TestRenderer_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.csv")
	require.NoError(t, os.WriteFile(path,
		[]byte("timestamp,prediction\n2024-01-01T09:30:00Z,150.25\n2024-01-01T09:31:00Z,150.40\n2024-01-01T09:32:00Z,150.10\n"), 0o600))
	r := newTestRenderer(t, dataset.NewLoader(path, ""))
	tmpl, err := Templates()
	require.NoError(t, err)

	render := func() []byte {
		page, err := r.Render(context.Background(), language.Spanish)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, tmpl.ExecuteTemplate(&buf, "dashboard.html", page))
		return buf.Bytes()
	}

	first := render()
	second := render()
	assert.Equal(t, first, second)
}

func TestRenderer_LoadsOnEveryRender(t *testing.T) {
	source := &stubSource{series: scenarioSeries()}
	r := newTestRenderer(t, source)

	for i := 0; i < 3; i++ {
		_, err := r.Render(context.Background(), language.Spanish)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, source.loads)
}

func TestTemplates_Dashboard(t *testing.T) {
	r := newTestRenderer(t, &stubSource{series: scenarioSeries()})
	page, err := r.Render(context.Background(), language.Spanish)
	require.NoError(t, err)

	tmpl, err := Templates()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "dashboard.html", page))
	html := buf.String()

	titleAt := strings.Index(html, "<h1>Predicción de Cotización de IBM 📈</h1>")
	subtitleAt := strings.Index(html, "próximos 60 minutos.")
	subheadingAt := strings.Index(html, "<h2>Predicciones</h2>")
	tableAt := strings.Index(html, `<table id="predictions">`)
	chartAt := strings.Index(html, `<figure class="chart-widget"`)
	require.True(t, titleAt >= 0 && subtitleAt >= 0 && subheadingAt >= 0 && tableAt >= 0 && chartAt >= 0)
	assert.True(t, titleAt < subtitleAt && subtitleAt < subheadingAt && subheadingAt < tableAt && tableAt < chartAt)

	assert.Contains(t, html, `<th scope="col">Fecha y Hora</th><th scope="col">Precio ($)</th>`)
	assert.Contains(t, html, `<tr><th scope="row">2024-01-01 09:30:00</th><td>150.25</td></tr>`)
	assert.Contains(t, html, `<tr><th scope="row">2024-01-01 09:31:00</th><td>150.40</td></tr>`)
	assert.Contains(t, html, "<svg")
}

func TestTemplates_Error(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "error.html", ErrorPage{
		Lang:    "en",
		Title:   "Prediction data is not available",
		Message: "missing <file>",
	}))
	assert.Contains(t, buf.String(), `role="alert"`)
	assert.Contains(t, buf.String(), "missing &lt;file&gt;")
	assert.NotContains(t, buf.String(), "<table")
}

func TestTableRow_MarshalJSONKeepsScale(t *testing.T) {
	r := newTestRenderer(t, &stubSource{series: scenarioSeries()})
	series, err := r.Load(context.Background())
	require.NoError(t, err)

	table := r.RenderTable(series, r.Labels(language.Spanish))
	raw, err := json.Marshal(table)
	require.NoError(t, err)

	var decoded struct {
		Rows []struct {
			Index      string   `json:"index"`
			Values     []string `json:"values"`
			Prediction string   `json:"prediction"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Rows, 2)
	for _, row := range decoded.Rows {
		assert.Equal(t, row.Values[0], row.Prediction)
	}
	assert.Equal(t, "150.40", decoded.Rows[1].Prediction)
}
