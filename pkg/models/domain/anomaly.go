package domain

// Anomaly is a ledger entry flagged by the detection pipeline. Score is the
// isolation-forest anomaly score in [0, 1]; Reasons lists the rule-gate
// conditions the entry satisfied.
type Anomaly struct {
	Entry
	Score   float64
	Reasons []string
}

// Analysis is the full outcome of analyzing one ledger: balance totals, the
// flagged anomalies with their summary sentence, and the advisor's raw
// recommendation text. Recommendations stays in its newline-delimited bullet
// form; consumers split it with session.ParseRecommendations.
type Analysis struct {
	Balance         Balance
	Entries         []Entry
	Anomalies       []Anomaly
	AnomalySummary  string
	Recommendations string
}
