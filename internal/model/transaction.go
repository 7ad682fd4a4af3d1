package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the canonical calendar date layout for transactions.
const DateFormat = "2006-01-02"

// Kind classifies a transaction by the sign of its amount.
type Kind string

const (
	KindOutflow Kind = "Outflow"
	KindInflow  Kind = "Inflow"
)

// Placeholders used when a bank export leaves a field blank.
const (
	UnknownBank   = "Unknown"
	Uncategorized = "Uncategorized"
	NoDescription = "No description"
)

// Transaction is a bank-agnostic transaction normalized from one export row.
type Transaction struct {
	ID           string          // ledger ID, assigned on persistence
	Date         time.Time       // calendar date at midnight UTC
	Description  string
	Amount       decimal.Decimal // negative = outflow, positive = inflow
	SourceBank   string
	BankCategory string // label from the export, never rewritten after extraction
	CategoryID   string // empty until resolved
	CategoryName string
	Reference    string
}

// Kind derives the direction of the transaction from its amount.
func (t Transaction) Kind() Kind {
	return KindOf(t.Amount)
}

// KindOf returns KindOutflow for negative amounts and KindInflow otherwise.
func KindOf(amount decimal.Decimal) Kind {
	if amount.IsNegative() {
		return KindOutflow
	}
	return KindInflow
}

// DateString returns the date as YYYY-MM-DD.
func (t Transaction) DateString() string {
	return t.Date.Format(DateFormat)
}

// IsCategorized reports whether a category ID has been assigned.
func (t Transaction) IsCategorized() bool {
	return t.CategoryID != ""
}

// DedupKey identifies a persisted transaction. occurrence is the number of
// earlier transactions in the same batch with the same reference and amount.
func DedupKey(reference string, amount decimal.Decimal, occurrence int) string {
	return reference + "|" + amount.StringFixed(2) + "|" + strconv.Itoa(occurrence)
}

// Occurrences returns the occurrence index of each transaction, see DedupKey.
func Occurrences(txns []Transaction) []int {
	seen := make(map[string]int, len(txns))
	out := make([]int, len(txns))
	for i, t := range txns {
		k := t.Reference + "|" + t.Amount.StringFixed(2)
		out[i] = seen[k]
		seen[k]++
	}
	return out
}
