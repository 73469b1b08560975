package dashboard

import (
	"fmt"
	"html"
	"io"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth      = 960
	chartHeight     = 420
	chartTimeFormat = "01-02 15:04"
)

var traceColor = drawing.ColorFromHex("1f77b4")

// traceStyle draws both the connecting line and a marker per point.
func traceStyle() chart.Style {
	return chart.Style{
		StrokeColor: traceColor,
		StrokeWidth: 2,
		DotColor:    traceColor,
		DotWidth:    3.5,
	}
}

// RenderChartSVG writes c as an SVG document. go-chart writes text nodes
// verbatim, so every label is escaped here. Series with fewer than two
// distinct points get explicit axis ranges, since go-chart cannot derive a
// range from a single value.
func RenderChartSVG(w io.Writer, c Chart) error {
	graph := chart.Chart{
		Title:  html.EscapeString(c.Title),
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 48, Left: 16, Right: 24, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:           html.EscapeString(c.XAxisTitle),
			ValueFormatter: chart.TimeValueFormatterWithFormat(chartTimeFormat),
		},
		YAxis: chart.YAxis{
			Name: html.EscapeString(c.YAxisTitle),
		},
	}

	for _, t := range c.Traces {
		if len(t.X) != len(t.Y) {
			return fmt.Errorf("trace %q has %d x values and %d y values", t.Name, len(t.X), len(t.Y))
		}
		if len(t.X) == 0 {
			graph.Series = append(graph.Series, emptySeries{name: html.EscapeString(t.Name), style: traceStyle()})
			continue
		}
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name:    html.EscapeString(t.Name),
			XValues: t.X,
			YValues: t.Y,
			Style:   traceStyle(),
		})
	}

	applyRanges(&graph, c.Traces)
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	return nil
}

// applyRanges pins the axes when the data cannot define them: no points at
// all, a single timestamp, or a flat price line.
func applyRanges(graph *chart.Chart, traces []Trace) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, t := range traces {
		for i := range t.X {
			x := chart.TimeToFloat64(t.X[i])
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, t.Y[i]), math.Max(maxY, t.Y[i])
		}
	}

	if math.IsInf(minX, 1) {
		blank := []chart.Tick{{Value: 0, Label: ""}, {Value: 1, Label: ""}}
		graph.XAxis.Ticks = blank
		graph.YAxis.Ticks = blank
		return
	}

	if minX == maxX {
		pad := float64(time.Minute)
		graph.XAxis.Range = &chart.ContinuousRange{Min: minX - pad, Max: maxX + pad}
	}
	if minY == maxY {
		pad := math.Max(math.Abs(minY)*0.01, 1)
		graph.YAxis.Range = &chart.ContinuousRange{Min: minY - pad, Max: maxY + pad}
	}
}

// emptySeries stands in for a trace with no points so the figure still
// renders its frame, axis titles and legend entry.
type emptySeries struct {
	name  string
	style chart.Style
}

func (e emptySeries) GetName() string { return e.name }

func (e emptySeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (e emptySeries) GetStyle() chart.Style { return e.style }

func (e emptySeries) Validate() error { return nil }

func (e emptySeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
}
