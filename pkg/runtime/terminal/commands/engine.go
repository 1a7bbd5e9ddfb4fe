package commands

import (
	"context"
	"fmt"

	"github.com/de-tools/ledger-atlas/pkg/services/advisor"
	"github.com/de-tools/ledger-atlas/pkg/services/analysis"
	"github.com/de-tools/ledger-atlas/pkg/services/config"
)

// newEngine builds the in-process analysis engine. The Gemini advisor is
// used when the settings resolve to an API key, the deterministic rule
// advisor otherwise, so local analysis works fully offline.
func newEngine(ctx context.Context, settings *config.Settings) (*analysis.Engine, error) {
	adv, err := newAdvisor(ctx, settings)
	if err != nil {
		return nil, err
	}
	return analysis.NewEngine(analysis.NewDetector(analysis.DefaultDetectorSettings()), adv), nil
}

func newAdvisor(ctx context.Context, settings *config.Settings) (advisor.Advisor, error) {
	creds, err := settings.AdvisorCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve advisor credentials: %w", err)
	}
	if creds.APIKey == "" {
		return advisor.NewRules(advisor.DefaultRuleSettings()), nil
	}
	return advisor.NewGemini(ctx, advisor.GeminiSettings{APIKey: creds.APIKey, Model: creds.Model})
}
