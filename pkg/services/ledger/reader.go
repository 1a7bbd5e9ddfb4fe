package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/de-tools/ledger-atlas/pkg/models/domain"
)

// BalanceTolerance is the maximum absolute debit/credit difference still
// considered balanced.
const BalanceTolerance = 0.01

// footerPattern matches report footer rows exported by accounting tools,
// e.g. "Total" and "Accrual Basis" lines. Matching rows never reach the
// analysis pipeline.
var footerPattern = regexp.MustCompile(`(?i)accrual basis|total`)

var requiredColumns = []string{"items", "debit", "credit"}

// ValidationError marks ledger input rejected before analysis. Detail is
// safe to show the uploader verbatim.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

func validationErr(format string, args ...any) *ValidationError {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

type rawRow struct {
	item   string
	debit  string
	credit string
}

// Read parses trial-balance entries from CSV input. Header names are matched
// lowercased with surrounding whitespace stripped; rows with an empty item
// cell or a footer label are dropped. Debit and credit cells lose their comma
// grouping, and blank or NaN cells count as zero. Rows shorter than the
// header are padded with empty cells the way spreadsheet exports leave them.
func Read(r io.Reader) ([]domain.Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil || len(records) == 0 {
		return nil, validationErr("Invalid CSV format")
	}

	header := records[0]
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := cols[name]; !ok {
			cols[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, validationErr("CSV must have columns: %s", strings.Join(requiredColumns, ", "))
		}
	}

	rows := make([]rawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) > len(header) {
			return nil, validationErr("Invalid CSV format")
		}
		item := cell(rec, cols["items"])
		if item == "" || footerPattern.MatchString(item) {
			continue
		}
		rows = append(rows, rawRow{
			item:   item,
			debit:  cell(rec, cols["debit"]),
			credit: cell(rec, cols["credit"]),
		})
	}

	entries := make([]domain.Entry, len(rows))
	for i, row := range rows {
		entries[i].Item = row.item
	}
	// Amounts are validated column by column so the error always names the
	// first column holding a bad value.
	for i, row := range rows {
		v, err := parseAmount(row.debit)
		if err != nil {
			return nil, validationErr("Invalid numeric values in debit")
		}
		entries[i].Debit = v
	}
	for i, row := range rows {
		v, err := parseAmount(row.credit)
		if err != nil {
			return nil, validationErr("Invalid numeric values in credit")
		}
		entries[i].Credit = v
	}
	return entries, nil
}

// Balance sums debits and credits across entries and applies the balance
// tolerance.
func Balance(entries []domain.Entry) domain.Balance {
	var b domain.Balance
	for _, e := range entries {
		b.TotalDebit += e.Debit
		b.TotalCredit += e.Credit
	}
	b.Balanced = math.Abs(b.TotalDebit-b.TotalCredit) < BalanceTolerance
	return b
}

func cell(rec []string, idx int) string {
	if idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func parseAmount(raw string) (float64, error) {
	v := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if v == "" || strings.EqualFold(v, "nan") {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}
