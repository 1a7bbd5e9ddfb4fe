package api

import (
	"encoding/json"
	"time"
)

// Error is the body returned with every non-2xx response.
type Error struct {
	Detail string `json:"detail"`
}

// Anomaly is one flagged ledger row as it appears on the wire.
type Anomaly struct {
	Item    string   `json:"items"`
	Debit   float64  `json:"debit"`
	Credit  float64  `json:"credit"`
	Score   float64  `json:"score,omitempty"`
	Reasons []string `json:"reasons,omitempty"`
}

// UnmarshalJSON accepts both the canonical "items" key and the "label"
// alias emitted by older result payloads.
func (a *Anomaly) UnmarshalJSON(data []byte) error {
	var raw struct {
		Items   *string  `json:"items"`
		Label   *string  `json:"label"`
		Debit   float64  `json:"debit"`
		Credit  float64  `json:"credit"`
		Score   float64  `json:"score"`
		Reasons []string `json:"reasons"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Item = firstString(raw.Items, raw.Label)
	a.Debit = raw.Debit
	a.Credit = raw.Credit
	a.Score = raw.Score
	a.Reasons = raw.Reasons
	return nil
}

// AnalysisResult is the payload returned by the upload endpoint. Encoding
// always uses snake_case keys; decoding also tolerates the camelCase
// variants produced by earlier builds of the service.
type AnalysisResult struct {
	BalanceStatus   string    `json:"balance_status"`
	TotalDebit      *float64  `json:"total_debit,omitempty"`
	TotalCredit     *float64  `json:"total_credit,omitempty"`
	Anomalies       []Anomaly `json:"anomalies"`
	AnomalySummary  string    `json:"anomaly_summary"`
	Recommendations string    `json:"recommendations"`
}

func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		BalanceStatus   *string   `json:"balance_status"`
		BalanceStatusCC *string   `json:"balanceStatus"`
		TotalDebit      *float64  `json:"total_debit"`
		TotalDebitCC    *float64  `json:"totalDebit"`
		TotalCredit     *float64  `json:"total_credit"`
		TotalCreditCC   *float64  `json:"totalCredit"`
		Anomalies       []Anomaly `json:"anomalies"`
		Summary         *string   `json:"anomaly_summary"`
		SummaryCC       *string   `json:"anomalySummary"`
		Recommendations string    `json:"recommendations"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.BalanceStatus = firstString(raw.BalanceStatus, raw.BalanceStatusCC)
	r.TotalDebit = firstFloat(raw.TotalDebit, raw.TotalDebitCC)
	r.TotalCredit = firstFloat(raw.TotalCredit, raw.TotalCreditCC)
	r.Anomalies = raw.Anomalies
	r.AnomalySummary = firstString(raw.Summary, raw.SummaryCC)
	r.Recommendations = raw.Recommendations
	return nil
}

// AnalysisRecord is one stored analysis as returned by the history endpoints.
type AnalysisRecord struct {
	Id          string         `json:"id"`
	FileName    string         `json:"file_name"`
	CreatedAt   time.Time      `json:"created_at"`
	RiskScore   int            `json:"risk_score"`
	VariancePct float64        `json:"variance_pct"`
	Result      AnalysisResult `json:"result"`
}

func firstString(vals ...*string) string {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return ""
}

func firstFloat(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
