package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Column names a prediction file must provide.
const (
	ColumnTimestamp  = "timestamp"
	ColumnPrediction = "prediction"
)

// TimestampLayout is how timestamps are shown on the dashboard.
const TimestampLayout = "2006-01-02 15:04:05"

// PredictionRecord is one forecast point: when, and the predicted price.
type PredictionRecord struct {
	Timestamp  time.Time       `json:"timestamp" yaml:"timestamp"`
	Prediction decimal.Decimal `json:"prediction" yaml:"prediction"`
}

// PredictionSeries is the ordered set of records read from one data file.
// Order is the file's order; nothing re-sorts it.
type PredictionSeries struct {
	Source  string             `json:"source"`
	Records []PredictionRecord `json:"records"`
}

// Len returns the number of records.
func (s *PredictionSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Timestamps returns the timestamp column in series order.
func (s *PredictionSeries) Timestamps() []time.Time {
	out := make([]time.Time, 0, s.Len())
	if s == nil {
		return out
	}
	for _, r := range s.Records {
		out = append(out, r.Timestamp)
	}
	return out
}

// Predictions returns the prediction column in series order as float64,
// the representation chart libraries plot.
func (s *PredictionSeries) Predictions() []float64 {
	out := make([]float64, 0, s.Len())
	if s == nil {
		return out
	}
	for _, r := range s.Records {
		out = append(out, r.Prediction.InexactFloat64())
	}
	return out
}

// FormatPrice renders a price with the scale it was written with, so
// "150.40" stays "150.40" and "150.4" stays "150.4".
func FormatPrice(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// FormatTimestamp renders a timestamp for display.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
