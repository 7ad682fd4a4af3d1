package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func entry(seq int, desc, amount string) Entry {
	e := Entry{Transaction: txn(date(2025, 1, 15), desc, amount)}
	e.ID = "2025-01-" + []string{"000", "001", "002", "003", "004"}[seq]
	return e
}

func invariants(errs []ValidationError) []int {
	var out []int
	for _, e := range errs {
		out = append(out, e.Invariant)
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	errs := ValidateEntries([]Entry{entry(1, "a", "-1"), entry(2, "b", "2")}, 2025, 1)
	assert.Empty(t, errs)
}

func TestValidate_ZeroAmount(t *testing.T) {
	errs := ValidateEntries([]Entry{entry(1, "a", "0")}, 2025, 1)
	assert.Equal(t, []int{1}, invariants(errs))
}

func TestValidate_WrongMonth(t *testing.T) {
	e := entry(1, "a", "-1")
	e.Date = date(2025, 2, 1)
	errs := ValidateEntries([]Entry{e}, 2025, 1)
	assert.Equal(t, []int{2}, invariants(errs))
}

func TestValidate_EmptyFields(t *testing.T) {
	e := entry(1, "", "-1")
	e.BankCategory = ""
	errs := ValidateEntries([]Entry{e}, 2025, 1)
	assert.Equal(t, []int{3, 3}, invariants(errs))
}

func TestValidate_NameWithoutID(t *testing.T) {
	e := entry(1, "a", "-1")
	e.CategoryName = "Groceries"
	errs := ValidateEntries([]Entry{e}, 2025, 1)
	assert.Equal(t, []int{4}, invariants(errs))
}

func TestValidate_DuplicateKey(t *testing.T) {
	errs := ValidateEntries([]Entry{entry(1, "a", "-1"), entry(2, "a", "-1")}, 2025, 1)
	assert.Equal(t, []int{5}, invariants(errs))
}

func TestValidate_Sequence(t *testing.T) {
	errs := ValidateEntries([]Entry{entry(1, "a", "-1"), entry(3, "b", "-1")}, 2025, 1)
	assert.Equal(t, []int{6}, invariants(errs))

	errs = ValidateEntries([]Entry{entry(1, "a", "-1"), entry(1, "b", "-1")}, 2025, 1)
	assert.Contains(t, invariants(errs), 6)

	bad := entry(1, "a", "-1")
	bad.ID = "garbage"
	errs = ValidateEntries([]Entry{bad}, 2025, 1)
	assert.Equal(t, []int{6}, invariants(errs))
}
