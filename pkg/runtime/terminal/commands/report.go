package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/de-tools/ledger-atlas/pkg/models/api"
	"github.com/de-tools/ledger-atlas/pkg/models/domain"
	"github.com/de-tools/ledger-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/ledger-atlas/pkg/services/session"
)

const (
	FormatTable = "table"
	FormatText  = "text"
	FormatJSON  = "json"
)

type reportHandler interface {
	Handle(report *domain.Report) error
}

func newReporter(format string, out io.Writer) (reportHandler, error) {
	switch format {
	case FormatTable:
		return export.NewReporter(out), nil
	case FormatText:
		return export.NewTextReporter(out), nil
	default:
		return nil, fmt.Errorf("unsupported format %q (want %s, %s, or %s)",
			format, FormatTable, FormatText, FormatJSON)
	}
}

// renderResult writes one analysis payload in the requested format. JSON
// dumps the wire payload as-is; table and text go through the report
// builder and a reporter.
func renderResult(out io.Writer, format, title string, result *api.AnalysisResult) error {
	if format == FormatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	reporter, err := newReporter(format, out)
	if err != nil {
		return err
	}
	return reporter.Handle(buildReport(title, result))
}

// buildReport shapes one analysis payload for the terminal reporters:
// balance summary, anomaly rows, recommendation items. Advisor failure text
// is surfaced as-is and never fed through the bullet parser.
func buildReport(title string, result *api.AnalysisResult) *domain.Report {
	metrics := session.DeriveMetrics(result)

	balance := domain.ReportSection{
		Title: "Balance",
		Summary: map[string]interface{}{
			"Status":       result.BalanceStatus,
			"Total Debit":  fmt.Sprintf("%.2f", metrics.TotalDebit),
			"Total Credit": fmt.Sprintf("%.2f", metrics.TotalCredit),
			"Variance":     fmt.Sprintf("%.1f%%", metrics.VariancePct),
			"Risk Score":   fmt.Sprintf("%d/100", metrics.RiskScore),
		},
	}

	anomalies := domain.ReportSection{
		Title:   "Anomalies",
		Summary: map[string]interface{}{"Summary": result.AnomalySummary},
	}
	for _, a := range result.Anomalies {
		anomalies.Details = append(anomalies.Details, domain.ReportDetail{
			Name:        a.Item,
			Value:       fmt.Sprintf("%.2f / %.2f", a.Debit, a.Credit),
			Unit:        "dr/cr",
			Description: strings.Join(a.Reasons, "; "),
		})
	}

	recommendations := domain.ReportSection{Title: "Recommendations"}
	if session.IsAdvisorError(result.Recommendations) {
		recommendations.Summary = map[string]interface{}{"Advisor": result.Recommendations}
	} else {
		items := session.ParseRecommendations(result.Recommendations)
		if len(items) == 0 && result.Recommendations != "" {
			// Non-bullet text, e.g. the missing-key message. Show it rather
			// than drop it.
			recommendations.Summary = map[string]interface{}{"Advisor": result.Recommendations}
		}
		for i, item := range items {
			recommendations.Details = append(recommendations.Details, domain.ReportDetail{
				Name:  strconv.Itoa(i + 1),
				Value: item,
			})
		}
	}

	return &domain.Report{
		Title:    title,
		Sections: []domain.ReportSection{balance, anomalies, recommendations},
	}
}
