package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/ledger-atlas/pkg/models/api"
)

func fptr(v float64) *float64 { return &v }

func sampleResult() *api.AnalysisResult {
	return &api.AnalysisResult{
		BalanceStatus: "Unbalanced: Total Debit = 1200.00, Total Credit = 1100.00",
		TotalDebit:    fptr(1200),
		TotalCredit:   fptr(1100),
		Anomalies: []api.Anomaly{
			{Item: "Wire transfer", Debit: 500000, Credit: 0, Reasons: []string{"debit above amount threshold", "debit with no offsetting credit"}},
			{Item: "Consulting", Debit: 0, Credit: 90000, Reasons: []string{"credit above amount threshold"}},
		},
		AnomalySummary:  "2 significant anomalies detected",
		Recommendations: "- Reconcile the wire transfer\n- Trace the consulting credit",
	}
}

func TestBuildReportBalanceSection(t *testing.T) {
	report := buildReport("ledger.csv", sampleResult())

	assert.Equal(t, "ledger.csv", report.Title)
	require.Len(t, report.Sections, 3)

	balance := report.Sections[0]
	assert.Equal(t, "Balance", balance.Title)
	assert.Equal(t, "Unbalanced: Total Debit = 1200.00, Total Credit = 1100.00", balance.Summary["Status"])
	assert.Equal(t, "1200.00", balance.Summary["Total Debit"])
	assert.Equal(t, "1100.00", balance.Summary["Total Credit"])
	assert.Equal(t, "8.3%", balance.Summary["Variance"])
	assert.Equal(t, "24/100", balance.Summary["Risk Score"])
}

func TestBuildReportAnomalyDetails(t *testing.T) {
	report := buildReport("ledger.csv", sampleResult())

	anomalies := report.Sections[1]
	assert.Equal(t, "2 significant anomalies detected", anomalies.Summary["Summary"])
	require.Len(t, anomalies.Details, 2)
	assert.Equal(t, "Wire transfer", anomalies.Details[0].Name)
	assert.Equal(t, "500000.00 / 0.00", anomalies.Details[0].Value)
	assert.Equal(t, "dr/cr", anomalies.Details[0].Unit)
	assert.Equal(t, "debit above amount threshold; debit with no offsetting credit", anomalies.Details[0].Description)
}

func TestBuildReportRecommendationItems(t *testing.T) {
	report := buildReport("ledger.csv", sampleResult())

	recs := report.Sections[2]
	require.Len(t, recs.Details, 2)
	assert.Equal(t, "1", recs.Details[0].Name)
	assert.Equal(t, "Reconcile the wire transfer", recs.Details[0].Value)
	assert.Equal(t, "2", recs.Details[1].Name)
	assert.Equal(t, "Trace the consulting credit", recs.Details[1].Value)
}

func TestBuildReportAdvisorError(t *testing.T) {
	result := sampleResult()
	result.Recommendations = "AI error: model unavailable"

	recs := buildReport("ledger.csv", result).Sections[2]
	assert.Empty(t, recs.Details)
	assert.Equal(t, "AI error: model unavailable", recs.Summary["Advisor"])
}

func TestBuildReportNonBulletText(t *testing.T) {
	result := sampleResult()
	result.Recommendations = "Error: GEMINI_API_KEY not set"

	recs := buildReport("ledger.csv", result).Sections[2]
	assert.Empty(t, recs.Details)
	assert.Equal(t, "Error: GEMINI_API_KEY not set", recs.Summary["Advisor"])
}

func TestRenderResultJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderResult(&out, FormatJSON, "ledger.csv", sampleResult()))

	var decoded api.AnalysisResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "Unbalanced: Total Debit = 1200.00, Total Credit = 1100.00", decoded.BalanceStatus)
	require.Len(t, decoded.Anomalies, 2)
	assert.Equal(t, "Wire transfer", decoded.Anomalies[0].Item)
}

func TestRenderResultUnsupportedFormat(t *testing.T) {
	var out bytes.Buffer
	err := renderResult(&out, "csv", "ledger.csv", sampleResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
