// Package dashboard turns a prediction series into the dashboard page: a
// header, a table indexed by date/time and a line-and-marker chart.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/irfndi/prediction-dashboard/internal/dataset"
	"github.com/irfndi/prediction-dashboard/internal/logging"
	"github.com/irfndi/prediction-dashboard/internal/models"
	"github.com/irfndi/prediction-dashboard/internal/telemetry"
)

// TraceMode is the plotting mode of the prediction trace.
const TraceMode = "lines+markers"

// Header is the page title block.
type Header struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Table is the relabeled series with the date/time column as its index.
type Table struct {
	IndexLabel string     `json:"index_label"`
	Columns    []string   `json:"columns"`
	Rows       []TableRow `json:"rows"`
}

// TableRow holds the display strings of one record alongside its raw values.
type TableRow struct {
	Index      string          `json:"index"`
	Values     []string        `json:"values"`
	Timestamp  time.Time       `json:"timestamp"`
	Prediction decimal.Decimal `json:"prediction"`
}

// MarshalJSON writes the prediction with the scale shown in Values, which
// decimal's own encoding would drop ("150.40" would become "150.4").
func (r TableRow) MarshalJSON() ([]byte, error) {
	type row TableRow
	return json.Marshal(struct {
		row
		Prediction string `json:"prediction"`
	}{row: row(r), Prediction: models.FormatPrice(r.Prediction)})
}

// Trace is one plotted series.
type Trace struct {
	Name string      `json:"name"`
	Mode string      `json:"mode"`
	X    []time.Time `json:"x"`
	Y    []float64   `json:"y"`
}

// Chart is the figure shown under the table.
type Chart struct {
	Title      string  `json:"title"`
	XAxisTitle string  `json:"xaxis_title"`
	YAxisTitle string  `json:"yaxis_title"`
	Traces     []Trace `json:"traces"`
}

// Page is everything the dashboard template needs.
type Page struct {
	Lang       string
	Header     Header
	Subheading string
	Table      Table
	Chart      Chart
	ChartSVG   template.HTML
}

// Renderer produces dashboard pages. It keeps no state between renders:
// every call loads the series again.
type Renderer struct {
	source    dataset.Source
	localizer *Localizer
	logger    logging.Logger
	tracer    *telemetry.BusinessTracer
}

// NewRenderer creates a Renderer reading from source.
func NewRenderer(source dataset.Source, localizer *Localizer, logger logging.Logger) *Renderer {
	return &Renderer{
		source:    source,
		localizer: localizer,
		logger:    logger,
		tracer:    telemetry.NewBusinessTracer(),
	}
}

// Labels returns the localized strings for tag.
func (r *Renderer) Labels(tag language.Tag) Labels {
	return r.localizer.Labels(tag)
}

// Load reads the series. Failures are *models.DataUnavailableError.
func (r *Renderer) Load(ctx context.Context) (*models.PredictionSeries, error) {
	ctx, span := r.tracer.TraceLoad(ctx, r.source.Path())
	defer span.End()

	series, err := r.source.Load(ctx)
	r.tracer.RecordLoadResult(span, series.Len(), err)
	if err != nil {
		r.logger.WithComponent("dashboard_renderer").WarnContext(ctx, "Prediction data unavailable",
			"data_path", r.source.Path(),
			"error", err.Error(),
		)
		return nil, err
	}
	return series, nil
}

// RenderHeader returns the fixed title and subtitle.
func (r *Renderer) RenderHeader(labels Labels) Header {
	return Header{Title: labels.Title, Subtitle: labels.Subtitle}
}

// RenderTable relabels the columns and indexes the rows by date/time.
// Rows keep the series order and values unchanged.
func (r *Renderer) RenderTable(series *models.PredictionSeries, labels Labels) Table {
	table := Table{
		IndexLabel: labels.DateTime,
		Columns:    []string{labels.Price},
		Rows:       make([]TableRow, 0, series.Len()),
	}
	if series == nil {
		return table
	}
	for _, rec := range series.Records {
		table.Rows = append(table.Rows, TableRow{
			Index:      models.FormatTimestamp(rec.Timestamp),
			Values:     []string{models.FormatPrice(rec.Prediction)},
			Timestamp:  rec.Timestamp,
			Prediction: rec.Prediction,
		})
	}
	return table
}

// RenderChart builds the single prediction trace from the raw columns.
func (r *Renderer) RenderChart(series *models.PredictionSeries, labels Labels) Chart {
	return Chart{
		Title:      labels.ChartTitle,
		XAxisTitle: labels.DateTime,
		YAxisTitle: labels.Price,
		Traces: []Trace{{
			Name: labels.TraceName,
			Mode: TraceMode,
			X:    series.Timestamps(),
			Y:    series.Predictions(),
		}},
	}
}

// Render performs one full pass: load, header, table, chart. Nothing is
// built when the load fails.
func (r *Renderer) Render(ctx context.Context, tag language.Tag) (*Page, error) {
	start := time.Now()

	series, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	labels := r.localizer.Labels(tag)
	page := &Page{
		Lang:       labels.Lang,
		Header:     r.RenderHeader(labels),
		Subheading: labels.Subheading,
	}

	_, tableSpan := r.tracer.TraceTable(ctx)
	page.Table = r.RenderTable(series, labels)
	r.tracer.RecordTableRows(tableSpan, len(page.Table.Rows))
	tableSpan.End()

	_, chartSpan := r.tracer.TraceChart(ctx, series.Len())
	defer chartSpan.End()
	page.Chart = r.RenderChart(series, labels)

	var svg bytes.Buffer
	if err := RenderChartSVG(&svg, page.Chart); err != nil {
		r.tracer.RecordChartError(chartSpan, err)
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	// RenderChartSVG escapes every label it passes to go-chart.
	page.ChartSVG = template.HTML(svg.String())

	r.logger.LogRender(r.source.Path(), series.Len(), time.Since(start).Milliseconds())
	return page, nil
}
