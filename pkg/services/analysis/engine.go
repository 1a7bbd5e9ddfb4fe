package analysis

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/de-tools/ledger-atlas/pkg/models/domain"
	"github.com/de-tools/ledger-atlas/pkg/services/advisor"
	"github.com/de-tools/ledger-atlas/pkg/services/ledger"
)

// MissingAdvisorText stands in for recommendations when no advisor is
// configured. Kept verbatim for clients that match on the historical
// message.
const MissingAdvisorText = "Error: GEMINI_API_KEY not set"

// Engine runs the full pipeline for one uploaded ledger: parse, balance,
// anomaly detection, advisor recommendations.
type Engine struct {
	detector *Detector
	advisor  advisor.Advisor
}

func NewEngine(detector *Detector, adv advisor.Advisor) *Engine {
	return &Engine{detector: detector, advisor: adv}
}

// Analyze consumes one CSV ledger. Parse and validation failures return a
// *ledger.ValidationError; advisor failures never fail the analysis, they
// surface through the recommendation text instead.
func (e *Engine) Analyze(ctx context.Context, r io.Reader) (*domain.Analysis, error) {
	entries, err := ledger.Read(r)
	if err != nil {
		return nil, err
	}

	balance := ledger.Balance(entries)
	anomalies := e.detector.Detect(entries)
	zerolog.Ctx(ctx).Info().
		Int("entries", len(entries)).
		Int("anomalies", len(anomalies)).
		Bool("balanced", balance.Balanced).
		Msg("ledger analyzed")

	return &domain.Analysis{
		Balance:         balance,
		Entries:         entries,
		Anomalies:       anomalies,
		AnomalySummary:  Summary(anomalies),
		Recommendations: e.recommend(ctx, anomalies),
	}, nil
}

func (e *Engine) recommend(ctx context.Context, anomalies []domain.Anomaly) string {
	if e.advisor == nil {
		return MissingAdvisorText
	}
	text, err := e.advisor.Advise(ctx, anomalies)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("advisor", e.advisor.Name()).Msg("advisor failed")
		return "AI error: " + err.Error()
	}
	return text
}
