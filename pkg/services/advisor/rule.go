package advisor

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/de-tools/ledger-atlas/pkg/models/domain"
)

// RuleSettings contains configurable thresholds for the deterministic advisor
type RuleSettings struct {
	// LargeAmount is the posting size above which a secondary sign-off is recommended (default: 10000)
	LargeAmount float64
	// MaxBullets caps the number of recommendations returned (default: 8)
	MaxBullets int
}

// DefaultRuleSettings returns the default configuration for rule-based recommendations
func DefaultRuleSettings() RuleSettings {
	return RuleSettings{
		LargeAmount: 10000,
		MaxBullets:  8,
	}
}

// Rules derives recommendations from the shape of the flagged entries alone.
// It stands in for the Gemini advisor when no API key is configured and keeps
// CLI one-shot analysis fully offline.
type Rules struct {
	settings RuleSettings
}

func NewRules(settings RuleSettings) *Rules {
	return &Rules{settings: settings}
}

func (r *Rules) Name() string { return "rules" }

func (r *Rules) Advise(_ context.Context, anomalies []domain.Anomaly) (string, error) {
	if len(anomalies) == 0 {
		return "- No significant anomalies detected. Maintain periodic sampling of high-value postings.", nil
	}

	var bullets []string

	var flaggedDebit, flaggedCredit float64
	for _, a := range anomalies {
		flaggedDebit += a.Debit
		flaggedCredit += a.Credit
	}
	if diff := math.Abs(flaggedDebit - flaggedCredit); diff > 0 {
		bullets = append(bullets, fmt.Sprintf(
			"Reconcile flagged entries before closing: their debits and credits differ by %.2f.", diff))
	}

	for _, a := range anomalies {
		switch {
		case a.Debit > 0 && a.Credit == 0:
			bullets = append(bullets, fmt.Sprintf(
				"Verify supporting documentation for %q: a %.2f debit has no offsetting credit.", a.Item, a.Debit))
		case a.Credit > 0 && a.Debit == 0:
			bullets = append(bullets, fmt.Sprintf(
				"Trace the %.2f credit on %q to its originating account and confirm authorization.", a.Credit, a.Item))
		}
		if a.Debit >= r.settings.LargeAmount || a.Credit >= r.settings.LargeAmount {
			bullets = append(bullets, fmt.Sprintf(
				"Review approval records for %q; amounts of this size warrant secondary sign-off.", a.Item))
		}
	}

	if len(bullets) == 0 {
		bullets = append(bullets,
			"Review flagged entries against source journals and confirm postings match period-end statements.")
	}
	if r.settings.MaxBullets > 0 && len(bullets) > r.settings.MaxBullets {
		bullets = bullets[:r.settings.MaxBullets]
	}
	return "- " + strings.Join(bullets, "\n- "), nil
}
