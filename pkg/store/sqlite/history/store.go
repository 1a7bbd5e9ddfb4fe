package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/de-tools/ledger-atlas/pkg/models/store"
	"github.com/de-tools/ledger-atlas/pkg/store/sqlite"
)

// ErrNotFound is returned when no analysis exists under the requested id.
var ErrNotFound = errors.New("analysis not found")

const defaultListLimit = 50

// Store persists completed analyses and serves the history views.
type Store interface {
	Add(ctx context.Context, record store.AnalysisRecord) error
	Get(ctx context.Context, id string) (*store.AnalysisRecord, error)
	List(ctx context.Context, limit int) ([]store.AnalysisRecord, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

type historyStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &historyStore{db: db}, nil
}

func (h *historyStore) Add(ctx context.Context, record store.AnalysisRecord) error {
	query := `
		INSERT INTO analyses (
			id, file_name, created_at, total_debit, total_credit,
			balanced, anomaly_count, risk_score, variance_pct, result, archive_key
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	args := []any{
		record.Id,
		record.FileName,
		record.CreatedAt,
		record.TotalDebit,
		record.TotalCredit,
		record.Balanced,
		record.AnomalyCount,
		record.RiskScore,
		record.VariancePct,
		record.Result,
		record.ArchiveKey,
	}

	var err error
	if tx := sqlite.GetTransaction(ctx); tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = h.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (h *historyStore) Get(ctx context.Context, id string) (*store.AnalysisRecord, error) {
	query := `
		SELECT id, file_name, created_at, total_debit, total_credit,
			balanced, anomaly_count, risk_score, variance_pct, result, archive_key
		FROM analyses
		WHERE id = ?`

	record, err := scanAnalysis(h.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return record, nil
}

func (h *historyStore) List(ctx context.Context, limit int) ([]store.AnalysisRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := `
		SELECT id, file_name, created_at, total_debit, total_credit,
			balanced, anomaly_count, risk_score, variance_pct, result, archive_key
		FROM analyses
		ORDER BY created_at DESC, id
		LIMIT ?`

	rows, err := h.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	records := make([]store.AnalysisRecord, 0)
	for rows.Next() {
		record, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func (h *historyStore) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	query := `
		DELETE FROM analyses
		WHERE id NOT IN (
			SELECT id FROM analyses ORDER BY created_at DESC, id LIMIT ?
		)`

	var res sql.Result
	var err error
	if tx := sqlite.GetTransaction(ctx); tx != nil {
		res, err = tx.ExecContext(ctx, query, keep)
	} else {
		res, err = h.db.ExecContext(ctx, query, keep)
	}
	if err != nil {
		return 0, fmt.Errorf("prune analyses: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scanner) (*store.AnalysisRecord, error) {
	var record store.AnalysisRecord
	err := row.Scan(
		&record.Id,
		&record.FileName,
		&record.CreatedAt,
		&record.TotalDebit,
		&record.TotalCredit,
		&record.Balanced,
		&record.AnomalyCount,
		&record.RiskScore,
		&record.VariancePct,
		&record.Result,
		&record.ArchiveKey,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
