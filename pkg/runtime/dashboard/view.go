package dashboard

import (
	"fmt"
	"strings"

	"github.com/de-tools/ledger-atlas/pkg/services/session"
)

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	s := m.styles
	var b strings.Builder
	b.WriteString(s.Title.Render("Ledger Atlas") + "\n\n")
	b.WriteString(m.input.View() + "\n\n")

	switch {
	case m.submitting:
		b.WriteString(m.spin.View() + " Analyzing " + m.session.SelectedFile + "...\n")
	case m.session.Status == session.StatusFailed:
		b.WriteString(s.Error.Render(m.session.Error) + "\n")
	case m.session.Status == session.StatusSucceeded && m.session.Result != nil:
		if m.session.Notice != "" {
			b.WriteString(s.Success.Render(m.session.Notice) + "\n\n")
		}
		b.WriteString(m.renderTabs() + "\n\n")
		if m.session.ActiveView == session.ViewRecommendations {
			b.WriteString(m.renderRecommendations())
		} else {
			b.WriteString(m.renderOverview())
		}
	default:
		b.WriteString(s.Muted.Render("Select a CSV trial balance and press enter.") + "\n")
	}

	b.WriteString("\n" + s.Help.Render("enter analyze • tab switch view • ctrl+r reset • esc quit") + "\n")
	return b.String()
}

func (m *Model) renderTabs() string {
	overview, recommendations := m.styles.Tab, m.styles.Tab
	if m.session.ActiveView == session.ViewRecommendations {
		recommendations = m.styles.TabActive
	} else {
		overview = m.styles.TabActive
	}
	return overview.Render("Overview") + recommendations.Render("Recommendations")
}

func (m *Model) renderOverview() string {
	s := m.styles
	result := m.session.Result
	metrics := session.DeriveMetrics(result)

	var b strings.Builder
	b.WriteString(s.Value.Render(result.BalanceStatus) + "\n\n")
	b.WriteString(fmt.Sprintf("%s %s    %s %s\n",
		s.Label.Render("Total Debit:"), s.Value.Render(formatAmount(metrics.TotalDebit)),
		s.Label.Render("Total Credit:"), s.Value.Render(formatAmount(metrics.TotalCredit))))
	b.WriteString(fmt.Sprintf("%s %s    %s %s\n",
		s.Label.Render("Variance:"), s.Value.Render(fmt.Sprintf("%.1f%%", metrics.VariancePct)),
		s.Label.Render("Risk Score:"), s.Value.Render(fmt.Sprintf("%d/100", metrics.RiskScore))))
	b.WriteString("\n" + s.Muted.Render(result.AnomalySummary) + "\n")

	if len(result.Anomalies) > 0 {
		b.WriteString("\n")
		for _, anomaly := range result.Anomalies {
			b.WriteString(fmt.Sprintf("  %-28s %14s %14s\n",
				truncate(anomaly.Item, 28), formatAmount(anomaly.Debit), formatAmount(anomaly.Credit)))
		}
	}
	return b.String()
}

func (m *Model) renderRecommendations() string {
	s := m.styles
	text := m.session.Result.Recommendations
	if session.IsAdvisorError(text) {
		return s.Error.Render(text) + "\n"
	}
	items := session.ParseRecommendations(text)
	if len(items) == 0 {
		return s.Muted.Render("No recommendations available.") + "\n"
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("  • " + item + "\n")
	}
	return b.String()
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
