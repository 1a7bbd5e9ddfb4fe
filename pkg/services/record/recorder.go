package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/ledger-atlas/pkg/adapters"
	"github.com/de-tools/ledger-atlas/pkg/models/domain"
	"github.com/de-tools/ledger-atlas/pkg/models/store"
	"github.com/de-tools/ledger-atlas/pkg/services/session"
	"github.com/de-tools/ledger-atlas/pkg/store/archive"
	"github.com/de-tools/ledger-atlas/pkg/store/sqlite"
	"github.com/de-tools/ledger-atlas/pkg/store/sqlite/history"
)

// Recorder persists completed analyses to the history store and, when an
// archive is configured, mirrors the uploaded CSV there. Archive failures are
// logged and skipped; the history row is the source of truth.
type Recorder struct {
	db        *sql.DB
	history   history.Store
	archive   archive.Archive
	retention int
	now       func() time.Time
	newId     func() string
}

type Options struct {
	DB      *sql.DB
	History history.Store
	// Archive is optional; nil disables CSV mirroring.
	Archive archive.Archive
	// Retention caps how many analyses the history keeps. Zero keeps all.
	Retention int
}

func NewRecorder(opts Options) (*Recorder, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if opts.History == nil {
		return nil, fmt.Errorf("history store is nil")
	}
	return &Recorder{
		db:        opts.DB,
		history:   opts.History,
		archive:   opts.Archive,
		retention: opts.Retention,
		now:       time.Now,
		newId:     uuid.NewString,
	}, nil
}

// Record stores one analysis and returns the persisted row. csv holds the
// uploaded file as received; it only feeds the archive mirror.
func (r *Recorder) Record(ctx context.Context, fileName string, csv []byte, result *domain.Analysis) (*store.AnalysisRecord, error) {
	payload := adapters.MapAnalysisDomainToApi(result)
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode analysis payload: %w", err)
	}

	metrics := session.DeriveMetrics(&payload)
	rec := store.AnalysisRecord{
		Id:           r.newId(),
		FileName:     fileName,
		CreatedAt:    r.now().UTC(),
		TotalDebit:   result.Balance.TotalDebit,
		TotalCredit:  result.Balance.TotalCredit,
		Balanced:     result.Balance.Balanced,
		AnomalyCount: len(result.Anomalies),
		RiskScore:    metrics.RiskScore,
		VariancePct:  metrics.VariancePct,
		Result:       raw,
	}

	if r.archive != nil {
		key := archive.Key(rec.Id)
		if err := r.archive.Put(ctx, key, csv); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("archive put failed")
		} else {
			rec.ArchiveKey = key
		}
	}

	err = sqlite.RunInTransaction(ctx, r.db, func(ctx context.Context) error {
		if err := r.history.Add(ctx, rec); err != nil {
			return err
		}
		if r.retention > 0 {
			if _, err := r.history.Prune(ctx, r.retention); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("persist analysis: %w", err)
	}
	return &rec, nil
}
