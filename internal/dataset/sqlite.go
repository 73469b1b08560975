package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"

	_ "modernc.org/sqlite"

	"github.com/irfndi/prediction-dashboard/internal/models"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// loadSQLite reads the configured table in rowid order. The database is
// opened read-only so a wrong path never creates an empty file.
func (l *Loader) loadSQLite(ctx context.Context) ([]models.PredictionRecord, error) {
	if !tableNamePattern.MatchString(l.sqliteTable) {
		return nil, models.NewDataUnavailableErrorf(l.path, "invalid table name %q", l.sqliteTable)
	}

	dsn := "file:" + (&url.URL{Path: l.path}).EscapedPath() + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	query := fmt.Sprintf(`SELECT * FROM "%s" ORDER BY rowid`, l.sqliteTable)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", l.sqliteTable, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
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

	var records []models.PredictionRecord
	values := make([]interface{}, len(cols))
	dest := make([]interface{}, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}

	for row := 1; rows.Next(); row++ {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", row, err)
		}
		rec, err := l.record(row, values[tsIdx], values[predIdx])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return records, nil
}
