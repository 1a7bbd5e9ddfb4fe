package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/upload-csv", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "ledger.csv", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"balance_status": "Balanced: Total Debit = 100.00, Total Credit = 100.00",
			"total_debit": 100,
			"total_credit": 100,
			"anomalies": [{"items": "Cash", "debit": 100, "credit": 0}],
			"anomaly_summary": "1 significant anomalies detected",
			"recommendations": "- Review cash postings"
		}`))
	}))
	defer server.Close()

	c := New(server.URL)
	result, err := c.Upload(context.Background(), "ledger.csv", strings.NewReader("items,debit,credit\nCash,100,100\n"))
	require.NoError(t, err)

	assert.Equal(t, "Balanced: Total Debit = 100.00, Total Credit = 100.00", result.BalanceStatus)
	require.NotNil(t, result.TotalDebit)
	assert.Equal(t, 100.0, *result.TotalDebit)
	require.Len(t, result.Anomalies, 1)
	assert.Equal(t, "Cash", result.Anomalies[0].Item)
	assert.Equal(t, "- Review cash postings", result.Recommendations)
}

func TestUploadSurfacesServerDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "Only CSV files are allowed"}`))
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Upload(context.Background(), "ledger.csv", strings.NewReader("items,debit,credit\n"))
	require.Error(t, err)
	assert.Equal(t, "Only CSV files are allowed", err.Error())
}

func TestUploadFallsBackToGenericFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Upload(context.Background(), "ledger.csv", strings.NewReader("items,debit,credit\n"))
	require.Error(t, err)
	assert.Equal(t, GenericFailure, err.Error())
}

func TestUploadAcceptsLegacyPayloadKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"balanceStatus": "Unbalanced: Total Debit = 500.00, Total Credit = 400.00",
			"totalDebit": 500,
			"totalCredit": 400,
			"anomalies": [{"label": "Old payload", "debit": 500, "credit": 0}],
			"anomalySummary": "1 significant anomalies detected",
			"recommendations": "- Check this"
		}`))
	}))
	defer server.Close()

	c := New(server.URL)
	result, err := c.Upload(context.Background(), "ledger.csv", strings.NewReader("items,debit,credit\n"))
	require.NoError(t, err)

	assert.Equal(t, "Unbalanced: Total Debit = 500.00, Total Credit = 400.00", result.BalanceStatus)
	require.NotNil(t, result.TotalDebit)
	assert.Equal(t, 500.0, *result.TotalDebit)
	require.Len(t, result.Anomalies, 1)
	assert.Equal(t, "Old payload", result.Anomalies[0].Item)
}

func TestHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/analyses", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "a2", "file_name": "feb.csv", "risk_score": 24},
			{"id": "a1", "file_name": "jan.csv", "risk_score": 0}
		]`))
	}))
	defer server.Close()

	c := New(server.URL)
	records, err := c.History(context.Background(), 5)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "a2", records[0].Id)
	assert.Equal(t, "feb.csv", records[0].FileName)
	assert.Equal(t, 24, records[0].RiskScore)
}

func TestHistoryServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.History(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
