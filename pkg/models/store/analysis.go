package store

import "time"

// AnalysisRecord is the persisted form of one completed analysis. Result
// holds the canonical JSON encoding of the wire payload so history reads
// can return exactly what the upload response contained.
type AnalysisRecord struct {
	Id           string
	FileName     string
	CreatedAt    time.Time
	TotalDebit   float64
	TotalCredit  float64
	Balanced     bool
	AnomalyCount int
	RiskScore    int
	VariancePct  float64
	Result       []byte
	ArchiveKey   string
}
