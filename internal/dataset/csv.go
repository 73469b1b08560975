package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/irfndi/prediction-dashboard/internal/models"
)

func (l *Loader) loadCSV() ([]models.PredictionRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, models.NewDataUnavailableError(l.path, "cannot open file", err)
	}
	defer func() {
		_ = f.Close()
	}()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, models.NewDataUnavailableErrorf(l.path, "file has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	tsIdx, predIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
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

	var records []models.PredictionRecord
	for row := 1; ; row++ {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		rec, err := l.record(row, fields[tsIdx], fields[predIdx])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}
