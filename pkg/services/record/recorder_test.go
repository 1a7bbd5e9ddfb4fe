package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/ledger-atlas/pkg/adapters"
	"github.com/de-tools/ledger-atlas/pkg/models/domain"
	"github.com/de-tools/ledger-atlas/pkg/store/sqlite"
	"github.com/de-tools/ledger-atlas/pkg/store/sqlite/history"
)

type archiveMock struct {
	mock.Mock
}

func (m *archiveMock) Put(ctx context.Context, key string, payload []byte) error {
	args := m.Called(ctx, key, payload)
	return args.Error(0)
}

func setupRecorder(t *testing.T, opts Options) (*Recorder, *sql.DB, history.Store) {
	db, err := sqlite.NewDB(sqlite.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	historyStore, err := history.NewStore(db)
	require.NoError(t, err)

	opts.DB = db
	opts.History = historyStore
	recorder, err := NewRecorder(opts)
	require.NoError(t, err)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var calls int
	recorder.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	var ids int
	recorder.newId = func() string {
		ids++
		return fmt.Sprintf("rec-%d", ids)
	}
	return recorder, db, historyStore
}

func sampleAnalysis() *domain.Analysis {
	return &domain.Analysis{
		Balance: domain.Balance{TotalDebit: 1000, TotalCredit: 900},
		Anomalies: []domain.Anomaly{
			{Entry: domain.Entry{Item: "Cash", Debit: 1000}, Score: 0.8, Reasons: []string{"debit with no offsetting credit"}},
		},
		AnomalySummary:  "1 significant anomalies detected",
		Recommendations: "- Review cash controls",
	}
}

var sampleCSV = []byte("items,debit,credit\nCash,1000,\n")

func TestRecordPersistsAnalysis(t *testing.T) {
	recorder, _, historyStore := setupRecorder(t, Options{})
	ctx := context.Background()

	rec, err := recorder.Record(ctx, "ledger.csv", sampleCSV, sampleAnalysis())
	require.NoError(t, err)
	assert.Equal(t, "rec-1", rec.Id)

	stored, err := historyStore.Get(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "ledger.csv", stored.FileName)
	assert.Equal(t, 1000.0, stored.TotalDebit)
	assert.Equal(t, 900.0, stored.TotalCredit)
	assert.False(t, stored.Balanced)
	assert.Equal(t, 1, stored.AnomalyCount)
	assert.Equal(t, 12, stored.RiskScore)
	assert.Equal(t, 10.0, stored.VariancePct)
	assert.Empty(t, stored.ArchiveKey)

	apiRec, err := adapters.MapAnalysisRecordStoreToApi(*stored)
	require.NoError(t, err)
	assert.Equal(t, "Unbalanced: Total Debit = 1000.00, Total Credit = 900.00", apiRec.Result.BalanceStatus)
	assert.Equal(t, "- Review cash controls", apiRec.Result.Recommendations)
	require.Len(t, apiRec.Result.Anomalies, 1)
	assert.Equal(t, "Cash", apiRec.Result.Anomalies[0].Item)
}

func TestRecordAppliesRetention(t *testing.T) {
	recorder, _, historyStore := setupRecorder(t, Options{Retention: 2})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := recorder.Record(ctx, "ledger.csv", sampleCSV, sampleAnalysis())
		require.NoError(t, err)
	}

	records, err := historyStore.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "rec-3", records[0].Id)
	assert.Equal(t, "rec-2", records[1].Id)
}

func TestRecordMirrorsToArchive(t *testing.T) {
	arch := &archiveMock{}
	arch.On("Put", mock.Anything, "ledgers/rec-1.csv", sampleCSV).Return(nil).Once()

	recorder, _, historyStore := setupRecorder(t, Options{Archive: arch})
	rec, err := recorder.Record(context.Background(), "ledger.csv", sampleCSV, sampleAnalysis())
	require.NoError(t, err)
	assert.Equal(t, "ledgers/rec-1.csv", rec.ArchiveKey)

	stored, err := historyStore.Get(context.Background(), rec.Id)
	require.NoError(t, err)
	assert.Equal(t, rec.ArchiveKey, stored.ArchiveKey)
	arch.AssertExpectations(t)
}

func TestRecordToleratesArchiveFailure(t *testing.T) {
	arch := &archiveMock{}
	arch.On("Put", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("bucket unavailable")).Once()

	recorder, _, historyStore := setupRecorder(t, Options{Archive: arch})
	rec, err := recorder.Record(context.Background(), "ledger.csv", sampleCSV, sampleAnalysis())
	require.NoError(t, err)
	assert.Empty(t, rec.ArchiveKey)

	_, err = historyStore.Get(context.Background(), rec.Id)
	assert.NoError(t, err)
}
