package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/irfndi/prediction-dashboard/internal/models"
)

// loadJSON understands the layouts pandas' DataFrame.to_json produces:
// records ([{...}, ...]), list ({"col": [...]}), columns
// ({"col": {"idx": v}}) and split ({"columns", "index", "data"}).
func (l *Loader) loadJSON() ([]models.PredictionRecord, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, models.NewDataUnavailableError(l.path, "cannot read file", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, models.NewDataUnavailableErrorf(l.path, "file is empty")
	}

	switch trimmed[0] {
	case '[':
		return l.jsonRecords(trimmed)
	case '{':
		return l.jsonObject(trimmed)
	default:
		return nil, errors.New("expected a JSON array or object")
	}
}

func newNumberDecoder(data []byte) *json.Decoder {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec
}

func (l *Loader) jsonRecords(data []byte) ([]models.PredictionRecord, error) {
	var rows []map[string]interface{}
	if err := newNumberDecoder(data).Decode(&rows); err != nil {
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
		rec, err := l.record(i+1, ts, pred)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (l *Loader) jsonObject(data []byte) ([]models.PredictionRecord, error) {
	var top map[string]json.RawMessage
	if err := newNumberDecoder(data).Decode(&top); err != nil {
		return nil, err
	}

	if cols, ok := top["columns"]; ok {
		if rows, ok := top["data"]; ok {
			return l.jsonSplit(cols, rows)
		}
	}

	tsRaw, ok := top[models.ColumnTimestamp]
	if !ok {
		return nil, l.missingColumn(models.ColumnTimestamp)
	}
	predRaw, ok := top[models.ColumnPrediction]
	if !ok {
		return nil, l.missingColumn(models.ColumnPrediction)
	}

	timestamps, err := columnValues(tsRaw)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", models.ColumnTimestamp, err)
	}
	predictions, err := columnValues(predRaw)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", models.ColumnPrediction, err)
	}
	if len(timestamps) != len(predictions) {
		return nil, models.NewDataUnavailableErrorf(l.path, "column lengths differ: %d timestamps, %d predictions",
			len(timestamps), len(predictions))
	}

	records := make([]models.PredictionRecord, 0, len(timestamps))
	for i := range timestamps {
		rec, err := l.record(i+1, timestamps[i], predictions[i])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (l *Loader) jsonSplit(colsRaw, rowsRaw json.RawMessage) ([]models.PredictionRecord, error) {
	var cols []string
	if err := json.Unmarshal(colsRaw, &cols); err != nil {
		return nil, fmt.Errorf("split columns: %w", err)
	}
	var rows [][]interface{}
	if err := newNumberDecoder(rowsRaw).Decode(&rows); err != nil {
		return nil, fmt.Errorf("split data: %w", err)
	}

	tsIdx, predIdx := -1, -1
	for i, c := range cols {
		switch c {
		case models.ColumnTimestamp:
			tsIdx = i
		case models.ColumnPrediction:
			predIdx = i
		}
	}
	if tsIdx < 0 {
		return nil, l.missingColumn(models.ColumnTimestamp)
	}
	if predIdx < 0 {
		return nil, l.missingColumn(models.ColumnPrediction)
	}

	records := make([]models.PredictionRecord, 0, len(rows))
	for i, row := range rows {
		if len(row) != len(cols) {
			return nil, models.NewDataUnavailableErrorf(l.path, "row %d has %d values, expected %d", i+1, len(row), len(cols))
		}
		rec, err := l.record(i+1, row[tsIdx], row[predIdx])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// columnValues decodes either a JSON array or an index-keyed object. Object
// values are returned in the order their keys appear in the file.
func columnValues(raw json.RawMessage) ([]interface{}, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var values []interface{}
		if err := newNumberDecoder(trimmed).Decode(&values); err != nil {
			return nil, err
		}
		return values, nil
	}

	dec := newNumberDecoder(trimmed)
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected an array or an index-keyed object")
	}

	var values []interface{}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
