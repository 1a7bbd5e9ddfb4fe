package analysis

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/de-tools/ledger-atlas/pkg/models/domain"
)

// DetectorSettings tunes the anomaly pipeline: forest shape and seed,
// the contamination cap, and the rule-gate thresholds applied to forest
// candidates.
type DetectorSettings struct {
	// Trees and SampleSize control the isolation forest build.
	Trees      int
	SampleSize int
	// Seed makes repeated runs over the same ledger reproducible.
	Seed uint64
	// MaxContamination caps the share of rows treated as forest candidates;
	// AnomalyBudget caps their absolute number on large ledgers.
	MaxContamination float64
	AnomalyBudget    float64
	// AmountFloor is the minimum high-amount threshold; the effective
	// threshold rises to the Quantile of either column when that is higher.
	AmountFloor float64
	Quantile    float64
	// ImbalanceFloor flags one-sided entries above this amount.
	ImbalanceFloor float64
}

func DefaultDetectorSettings() DetectorSettings {
	return DetectorSettings{
		Trees:            100,
		SampleSize:       256,
		Seed:             42,
		MaxContamination: 0.05,
		AnomalyBudget:    10,
		AmountFloor:      10000,
		Quantile:         0.95,
		ImbalanceFloor:   5000,
	}
}

type Detector struct {
	settings DetectorSettings
}

func NewDetector(settings DetectorSettings) *Detector {
	return &Detector{settings: settings}
}

// Detect scores entry amounts with the isolation forest, keeps the
// contamination share with the highest scores, and passes those candidates
// through the significance rules. Returned anomalies preserve ledger order.
func (d *Detector) Detect(entries []domain.Entry) []domain.Anomaly {
	n := len(entries)
	if n == 0 {
		return nil
	}

	contamination := d.settings.MaxContamination
	if budget := d.settings.AnomalyBudget / float64(n); budget < contamination {
		contamination = budget
	}

	data := make([][]float64, n)
	for i, e := range entries {
		data[i] = []float64{e.Debit, e.Credit}
	}
	rng := rand.New(rand.NewPCG(d.settings.Seed, d.settings.Seed))
	forest := newIsolationForest(rng, data, d.settings.Trees, d.settings.SampleSize)

	scores := make([]float64, n)
	for i := range data {
		scores[i] = forest.score(data[i])
	}

	threshold := d.amountThreshold(entries)
	anomalies := make([]domain.Anomaly, 0, 4)
	for _, i := range topScoring(scores, int(math.Round(contamination*float64(n)))) {
		reasons := d.significanceReasons(entries[i], threshold)
		if len(reasons) == 0 {
			continue
		}
		anomalies = append(anomalies, domain.Anomaly{
			Entry:   entries[i],
			Score:   scores[i],
			Reasons: reasons,
		})
	}
	return anomalies
}

// Summary renders the anomaly count sentence shown to uploaders.
func Summary(anomalies []domain.Anomaly) string {
	if len(anomalies) == 0 {
		return "No significant anomalies detected"
	}
	return fmt.Sprintf("%d significant anomalies detected", len(anomalies))
}

// amountThreshold is the larger of the amount floor and the configured
// quantile of either amount column.
func (d *Detector) amountThreshold(entries []domain.Entry) float64 {
	debits := make([]float64, len(entries))
	credits := make([]float64, len(entries))
	for i, e := range entries {
		debits[i] = e.Debit
		credits[i] = e.Credit
	}
	threshold := d.settings.AmountFloor
	if q := quantile(debits, d.settings.Quantile); q > threshold {
		threshold = q
	}
	if q := quantile(credits, d.settings.Quantile); q > threshold {
		threshold = q
	}
	return threshold
}

func (d *Detector) significanceReasons(e domain.Entry, threshold float64) []string {
	var reasons []string
	if e.Debit > threshold {
		reasons = append(reasons, "debit above amount threshold")
	}
	if e.Credit > threshold {
		reasons = append(reasons, "credit above amount threshold")
	}
	if e.Debit > d.settings.ImbalanceFloor && e.Credit == 0 {
		reasons = append(reasons, "debit with no offsetting credit")
	}
	if e.Credit > d.settings.ImbalanceFloor && e.Debit == 0 {
		reasons = append(reasons, "credit with no offsetting debit")
	}
	return reasons
}

// topScoring returns the indexes of the k highest scores in ledger order.
// Ties fall to the earlier row.
func topScoring(scores []float64, k int) []int {
	if k <= 0 {
		return nil
	}
	if k > len(scores) {
		k = len(scores)
	}
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	top := append([]int(nil), idx[:k]...)
	sort.Ints(top)
	return top
}

// quantile computes the q-quantile with linear interpolation between the two
// closest ranks.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
