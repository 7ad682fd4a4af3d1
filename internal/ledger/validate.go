package ledger

import (
	"fmt"

	"github.com/cleared-dev/bankfeed/internal/id"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	TxnID       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.TxnID, e.Description)
}

// ValidateEntries enforces the ledger invariants on one month partition.
func ValidateEntries(entries []Entry, year, month int) []ValidationError {
	var errs []ValidationError

	keys := make(map[string]string, len(entries))
	seqs := make(map[int]string, len(entries))

	for _, e := range entries {
		// Invariant 1: zero-amount rows are not transactions.
		if e.Amount.IsZero() {
			errs = append(errs, ValidationError{1, e.ID, "amount is zero"})
		}

		// Invariant 2: date within month.
		if e.Date.Year() != year || int(e.Date.Month()) != month {
			errs = append(errs, ValidationError{2, e.ID, fmt.Sprintf("date %s not in %04d-%02d", e.DateString(), year, month)})
		}

		// Invariant 3: required text fields.
		if e.Description == "" {
			errs = append(errs, ValidationError{3, e.ID, "empty description"})
		}
		if e.BankCategory == "" {
			errs = append(errs, ValidationError{3, e.ID, "empty bank category"})
		}

		// Invariant 4: a category name is only present with a category ID.
		if e.CategoryName != "" && e.CategoryID == "" {
			errs = append(errs, ValidationError{4, e.ID, fmt.Sprintf("category name %q without category ID", e.CategoryName)})
		}

		// Invariant 5: no duplicate dedup keys.
		if prev, dup := keys[e.Key()]; dup {
			errs = append(errs, ValidationError{5, e.ID, "duplicate of " + prev})
		} else {
			keys[e.Key()] = e.ID
		}

		// Invariant 6: well-formed, unique IDs in this partition.
		y, m, seq, err := id.ParseTxnID(e.ID)
		if err != nil {
			errs = append(errs, ValidationError{6, e.ID, err.Error()})
			continue
		}
		if y != year || m != month {
			errs = append(errs, ValidationError{6, e.ID, fmt.Sprintf("ID not in %04d-%02d", year, month)})
		}
		if prev, dup := seqs[seq]; dup {
			errs = append(errs, ValidationError{6, e.ID, "duplicate ID " + prev})
		}
		seqs[seq] = e.ID
	}

	// Invariant 6: sequences contiguous 1..N.
	for i := 1; i <= len(seqs); i++ {
		if _, ok := seqs[i]; !ok {
			errs = append(errs, ValidationError{6, fmt.Sprintf("seq %d", i), fmt.Sprintf("missing sequence %d in 1..%d", i, len(seqs))})
		}
	}

	return errs
}
