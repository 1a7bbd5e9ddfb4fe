package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/de-tools/ledger-atlas/pkg/models/api"
	"github.com/de-tools/ledger-atlas/pkg/models/domain"
	"github.com/de-tools/ledger-atlas/pkg/models/store"
)

func MapAnomalyDomainToApi(a domain.Anomaly) api.Anomaly {
	return api.Anomaly{
		Item:    a.Item,
		Debit:   a.Debit,
		Credit:  a.Credit,
		Score:   a.Score,
		Reasons: a.Reasons,
	}
}

// MapAnalysisDomainToApi converts a completed analysis to the wire payload
// served by the upload endpoint. Totals are always emitted so clients never
// have to fall back to parsing the balance status text.
func MapAnalysisDomainToApi(a *domain.Analysis) api.AnalysisResult {
	anomalies := make([]api.Anomaly, 0, len(a.Anomalies))
	for _, an := range a.Anomalies {
		anomalies = append(anomalies, MapAnomalyDomainToApi(an))
	}
	totalDebit := a.Balance.TotalDebit
	totalCredit := a.Balance.TotalCredit
	return api.AnalysisResult{
		BalanceStatus:   a.Balance.StatusLine(),
		TotalDebit:      &totalDebit,
		TotalCredit:     &totalCredit,
		Anomalies:       anomalies,
		AnomalySummary:  a.AnomalySummary,
		Recommendations: a.Recommendations,
	}
}

// MapAnalysisRecordStoreToApi decodes a stored analysis row back into its
// wire form.
func MapAnalysisRecordStoreToApi(rec store.AnalysisRecord) (api.AnalysisRecord, error) {
	var result api.AnalysisResult
	if err := json.Unmarshal(rec.Result, &result); err != nil {
		return api.AnalysisRecord{}, fmt.Errorf("decode stored analysis %s: %w", rec.Id, err)
	}
	return api.AnalysisRecord{
		Id:          rec.Id,
		FileName:    rec.FileName,
		CreatedAt:   rec.CreatedAt,
		RiskScore:   rec.RiskScore,
		VariancePct: rec.VariancePct,
		Result:      result,
	}, nil
}
