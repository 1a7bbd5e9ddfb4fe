package advisor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/ledger-atlas/pkg/models/domain"
)

func TestRulesAdviseEmptyLedger(t *testing.T) {
	r := NewRules(DefaultRuleSettings())

	text, err := r.Advise(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "- "))
	assert.Contains(t, text, "No significant anomalies detected")
}

func TestRulesAdviseOneSidedEntries(t *testing.T) {
	r := NewRules(DefaultRuleSettings())

	text, err := r.Advise(context.Background(), []domain.Anomaly{
		{Entry: domain.Entry{Item: "Wire transfer", Debit: 50000, Credit: 0}},
		{Entry: domain.Entry{Item: "Refund batch", Debit: 0, Credit: 7200}},
	})
	require.NoError(t, err)

	assert.Contains(t, text, `Verify supporting documentation for "Wire transfer"`)
	assert.Contains(t, text, "no offsetting credit")
	assert.Contains(t, text, `Trace the 7200.00 credit on "Refund batch"`)
	assert.Contains(t, text, `Review approval records for "Wire transfer"`)
	assert.Contains(t, text, "Reconcile flagged entries before closing")

	for _, line := range strings.Split(text, "\n") {
		assert.True(t, strings.HasPrefix(line, "- "), line)
	}
}

func TestRulesAdviseFallbackBullet(t *testing.T) {
	r := NewRules(DefaultRuleSettings())

	// Offsetting amounts below every threshold match no rule.
	text, err := r.Advise(context.Background(), []domain.Anomaly{
		{Entry: domain.Entry{Item: "Supplies", Debit: 800, Credit: 800}},
	})
	require.NoError(t, err)
	assert.Equal(t, "- Review flagged entries against source journals and confirm postings match period-end statements.", text)
}

func TestRulesAdviseCapsBullets(t *testing.T) {
	r := NewRules(RuleSettings{LargeAmount: 10000, MaxBullets: 3})

	anomalies := make([]domain.Anomaly, 10)
	for i := range anomalies {
		anomalies[i] = domain.Anomaly{Entry: domain.Entry{Item: "Cash advance", Debit: 6000, Credit: 0}}
	}

	text, err := r.Advise(context.Background(), anomalies)
	require.NoError(t, err)
	assert.Len(t, strings.Split(text, "\n"), 3)
}

func TestRulesAdviseIsDeterministic(t *testing.T) {
	r := NewRules(DefaultRuleSettings())
	anomalies := []domain.Anomaly{
		{Entry: domain.Entry{Item: "Equipment", Debit: 25000, Credit: 0}},
		{Entry: domain.Entry{Item: "Loan proceeds", Debit: 0, Credit: 18000}},
	}

	first, err := r.Advise(context.Background(), anomalies)
	require.NoError(t, err)
	second, err := r.Advise(context.Background(), anomalies)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
