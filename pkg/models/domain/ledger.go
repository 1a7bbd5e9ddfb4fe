package domain

import "fmt"

// Entry is a single cleaned trial-balance line: the account or item label
// and its debit/credit amounts. Amounts are already normalized (grouping
// separators stripped, blanks coerced to zero).
type Entry struct {
	Item   string
	Debit  float64
	Credit float64
}

// Balance holds the ledger-wide debit/credit totals. The ledger counts as
// balanced when the totals differ by less than one cent.
type Balance struct {
	TotalDebit  float64
	TotalCredit float64
	Balanced    bool
}

// StatusLine renders the balance in the wire format consumed by clients,
// e.g. "Balanced: Total Debit = 1234.50, Total Credit = 1234.50".
func (b Balance) StatusLine() string {
	state := "Unbalanced"
	if b.Balanced {
		state = "Balanced"
	}
	return fmt.Sprintf("%s: Total Debit = %.2f, Total Credit = %.2f", state, b.TotalDebit, b.TotalCredit)
}
