package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/ledger-atlas/pkg/models/domain"
)

// Advisor produces narrative audit recommendations for flagged anomalies.
// Implementations return the recommendation text in newline-delimited
// Markdown bullet form.
type Advisor interface {
	Name() string
	Advise(ctx context.Context, anomalies []domain.Anomaly) (string, error)
}

// NormalizeBullets rewrites model output so every line carries the "- "
// marker clients split on. Text already starting with a bullet is returned
// unchanged.
func NormalizeBullets(text string) string {
	if strings.HasPrefix(text, "- ") {
		return text
	}
	return "- " + strings.Join(strings.Split(text, "\n"), "\n- ")
}

// Prompt renders the instruction sent to the model for a set of anomalies.
func Prompt(anomalies []domain.Anomaly) string {
	var rows strings.Builder
	for _, a := range anomalies {
		fmt.Fprintf(&rows, "{items: %q, debit: %.2f, credit: %.2f}\n", a.Item, a.Debit, a.Credit)
	}
	return fmt.Sprintf(`Analyze these significant financial anomalies from a CSV (items, debit, credit):
%s
Provide 5-8 concise audit recommendations (each 100-150 characters) in Markdown bullet points, focusing on high-value transactions or imbalances. Ensure clear, actionable steps.
Example:
- Verify land transaction documentation for compliance and authorization.
- Check foreign currency account for accurate exchange rate application.`, rows.String())
}
