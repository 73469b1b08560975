// Package dataset reads prediction files into a models.PredictionSeries.
//
// The file format is chosen by extension. Every failure, whatever its
// cause, is reported as *models.DataUnavailableError.
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/irfndi/prediction-dashboard/internal/models"
)

// Source loads a prediction series. The dashboard depends on this rather
// than on *Loader so tests can supply series directly.
type Source interface {
	Load(ctx context.Context) (*models.PredictionSeries, error)
	Path() string
}

// Loader reads a prediction file from disk on every call to Load.
type Loader struct {
	path        string
	sqliteTable string
}

// NewLoader creates a Loader for path. sqliteTable names the table read
// when path is a SQLite database; it defaults to "predictions".
func NewLoader(path string, sqliteTable string) *Loader {
	if sqliteTable == "" {
		sqliteTable = "predictions"
	}
	return &Loader{path: path, sqliteTable: sqliteTable}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string {
	return l.path
}

// Load reads and decodes the file. Nothing is retained between calls.
func (l *Loader) Load(ctx context.Context) (*models.PredictionSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(l.path)
	if err != nil {
		return nil, models.NewDataUnavailableError(l.path, "cannot access file", err)
	}
	if info.IsDir() {
		return nil, models.NewDataUnavailableErrorf(l.path, "path is a directory")
	}

	var records []models.PredictionRecord
	switch ext := strings.ToLower(filepath.Ext(l.path)); ext {
	case ".csv":
		records, err = l.loadCSV()
	case ".json":
		records, err = l.loadJSON()
	case ".yaml", ".yml":
		records, err = l.loadYAML()
	case ".db", ".sqlite", ".sqlite3":
		records, err = l.loadSQLite(ctx)
	default:
		return nil, models.NewDataUnavailableErrorf(l.path, "unsupported file format %q", ext)
	}
	if err != nil {
		var dataErr *models.DataUnavailableError
		if errors.As(err, &dataErr) {
			return nil, err
		}
		return nil, models.NewDataUnavailableError(l.path, "cannot decode file", err)
	}

	if records == nil {
		records = []models.PredictionRecord{}
	}

	return &models.PredictionSeries{Source: l.path, Records: records}, nil
}

func (l *Loader) missingColumn(name string) error {
	return models.NewDataUnavailableErrorf(l.path, "missing required column %q", name)
}

func (l *Loader) badCell(row int, column string, err error) error {
	return models.NewDataUnavailableError(l.path, fmt.Sprintf("row %d: invalid %s value", row, column), err)
}

// record builds one PredictionRecord from raw cell values.
func (l *Loader) record(row int, rawTimestamp, rawPrediction interface{}) (models.PredictionRecord, error) {
	ts, err := parseTimestamp(rawTimestamp)
	if err != nil {
		return models.PredictionRecord{}, l.badCell(row, models.ColumnTimestamp, err)
	}
	price, err := parsePrediction(rawPrediction)
	if err != nil {
		return models.PredictionRecord{}, l.badCell(row, models.ColumnPrediction, err)
	}
	return models.PredictionRecord{Timestamp: ts, Prediction: price}, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTimestamp accepts strings in the layouts above, epoch milliseconds
// (pandas' default JSON encoding) and already-typed times.
func parseTimestamp(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, errors.New("empty timestamp")
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, nil
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	case []byte:
		return parseTimestamp(string(t))
	case json.Number:
		ms, err := t.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("epoch milliseconds must be an integer: %w", err)
		}
		return time.UnixMilli(ms).UTC(), nil
	case int64:
		return time.UnixMilli(t).UTC(), nil
	case int:
		return time.UnixMilli(int64(t)).UTC(), nil
	case float64:
		return time.UnixMilli(int64(t)).UTC(), nil
	case nil:
		return time.Time{}, errors.New("missing timestamp")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

// parsePrediction keeps the textual scale of the value when the source
// provides text, so "150.40" is not reduced to 150.4.
func parsePrediction(v interface{}) (decimal.Decimal, error) {
	switch p := v.(type) {
	case decimal.Decimal:
		return p, nil
	case string:
		s := strings.TrimSpace(p)
		if s == "" {
			return decimal.Decimal{}, errors.New("empty prediction")
		}
		return decimal.NewFromString(s)
	case []byte:
		return parsePrediction(string(p))
	case json.Number:
		return decimal.NewFromString(p.String())
	case float64:
		return decimal.NewFromFloat(p), nil
	case float32:
		return decimal.NewFromFloat32(p), nil
	case int64:
		return decimal.NewFromInt(p), nil
	case int:
		return decimal.NewFromInt(int64(p)), nil
	case nil:
		return decimal.Decimal{}, errors.New("missing prediction")
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported prediction type %T", v)
	}
}
