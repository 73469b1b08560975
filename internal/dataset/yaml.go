package dataset

import (
	"bytes"
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/irfndi/prediction-dashboard/internal/models"
)

// loadYAML reads a list of row mappings. Cells are decoded as nodes so the
// scalar text reaches the parsers untouched.
func (l *Loader) loadYAML() ([]models.PredictionRecord, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, models.NewDataUnavailableError(l.path, "cannot read file", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, models.NewDataUnavailableErrorf(l.path, "file is empty")
	}

	var rows []map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}

	records := make([]models.PredictionRecord, 0, len(rows))
	for i, row := range rows {
		ts, ok := row[models.ColumnTimestamp]
		if !ok {
			return nil, l.missingColumn(models.ColumnTimestamp)
		}
		pred, ok := row[models.ColumnPrediction]
		if !ok {
			return nil, l.missingColumn(models.ColumnPrediction)
		}
		tsValue, err := scalar(ts)
		if err != nil {
			return nil, l.badCell(i+1, models.ColumnTimestamp, err)
		}
		predValue, err := scalar(pred)
		if err != nil {
			return nil, l.badCell(i+1, models.ColumnPrediction, err)
		}
		rec, err := l.record(i+1, tsValue, predValue)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func scalar(n yaml.Node) (interface{}, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, errors.New("expected a scalar value")
	}
	if n.Tag == "!!null" {
		return nil, nil
	}
	return n.Value, nil
}
