package session

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/de-tools/ledger-atlas/pkg/models/api"
)

// AdvisorErrorPrefix marks recommendation text that is an upstream failure
// message rather than content. Renderers show such text as an error and must
// not feed it through ParseRecommendations.
const AdvisorErrorPrefix = "AI error"

// Metrics are the display figures derived from one analysis result.
type Metrics struct {
	TotalDebit  float64
	TotalCredit float64
	VariancePct float64
	RiskScore   int
}

var (
	debitPattern  = regexp.MustCompile(`(?i)total\s+debit\s*=\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	creditPattern = regexp.MustCompile(`(?i)total\s+credit\s*=\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
)

// DeriveMetrics computes display totals, variance, and risk score from a
// result. Structured totals win when both are present and nonzero; otherwise
// the totals are pulled out of the balance status text, and failing that,
// summed over the anomaly list. Pure function: equal inputs give equal
// metrics.
func DeriveMetrics(result *api.AnalysisResult) Metrics {
	var m Metrics
	if result == nil {
		return m
	}

	switch {
	case result.TotalDebit != nil && result.TotalCredit != nil &&
		*result.TotalDebit != 0 && *result.TotalCredit != 0:
		m.TotalDebit = *result.TotalDebit
		m.TotalCredit = *result.TotalCredit
	default:
		debit, debitOK := extractAmount(debitPattern, result.BalanceStatus)
		credit, creditOK := extractAmount(creditPattern, result.BalanceStatus)
		if debitOK || creditOK {
			m.TotalDebit = debit
			m.TotalCredit = credit
		} else {
			for _, a := range result.Anomalies {
				m.TotalDebit += a.Debit
				m.TotalCredit += a.Credit
			}
		}
	}

	if m.TotalDebit > 0 {
		m.VariancePct = round1((m.TotalDebit - m.TotalCredit) / m.TotalDebit * 100)
	}

	m.RiskScore = len(result.Anomalies) * 12
	if m.RiskScore > 100 {
		m.RiskScore = 100
	}
	return m
}

// ParseRecommendations splits recommendation text into its bullet items:
// lines are trimmed, only those starting with "- " and longer than two
// characters survive, and the marker is stripped.
func ParseRecommendations(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 2 && strings.HasPrefix(line, "- ") {
			items = append(items, line[2:])
		}
	}
	return items
}

// IsAdvisorError reports whether recommendation text is an upstream failure
// message instead of bullet content.
func IsAdvisorError(text string) bool {
	return strings.HasPrefix(text, AdvisorErrorPrefix)
}

func extractAmount(pattern *regexp.Regexp, text string) (float64, bool) {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
