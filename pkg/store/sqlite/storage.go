package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const AnalysisTableSchema = `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT NOT NULL PRIMARY KEY,
		file_name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		total_debit REAL NOT NULL,
		total_credit REAL NOT NULL,
		balanced INTEGER NOT NULL,
		anomaly_count INTEGER NOT NULL,
		risk_score INTEGER NOT NULL,
		variance_pct REAL NOT NULL,
		result BLOB NOT NULL,
		archive_key TEXT NOT NULL DEFAULT ''
	);
`

const AnalysisIndexSchema = `
	CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at DESC);
`

var bootQueries = []string{
	AnalysisTableSchema,
	AnalysisIndexSchema,
}

type Settings struct {
	DbPath string
}

// NewDB opens the database at the configured path and applies the boot
// schema. ":memory:" works for tests.
func NewDB(settings Settings) (*sql.DB, error) {
	db, err := sql.Open("sqlite", settings.DbPath)
	if err != nil {
		return nil, err
	}

	// A single pooled connection keeps ":memory:" databases coherent and
	// serializes writes, which sqlite wants anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, query := range bootQueries {
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return db, nil
}
