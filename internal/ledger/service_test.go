package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankfeed/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func txn(d time.Time, desc, amount string) model.Transaction {
	return model.Transaction{
		Date:         d,
		Description:  desc,
		Amount:       dec(amount),
		SourceBank:   "Revolut",
		BankCategory: "Pagamento",
		Reference:    "revolut_" + d.Format("20060102") + "_" + desc,
	}
}

func TestAppend_NewMonth(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir)

	coffee := txn(date(2024, 12, 20), "Coffee", "-3.50")
	coffee.CategoryID = "restaurants"
	coffee.CategoryName = "Restaurants & Coffee"

	res, err := svc.Append([]model.Transaction{coffee, txn(date(2024, 12, 21), "Salary", "1500")}, "imp-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-12-001", "2024-12-002"}, res.Added)
	assert.Equal(t, 0, res.Duplicates)

	_, err = os.Stat(filepath.Join(dir, "ledger", "2024", "12", "transactions.csv"))
	require.NoError(t, err)

	entries, err := svc.ReadMonth(2024, 12)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2024-12-001", entries[0].ID)
	assert.True(t, entries[0].Amount.Equal(dec("-3.5")))
	assert.Equal(t, "restaurants", entries[0].CategoryID)
	assert.Equal(t, "Restaurants & Coffee", entries[0].CategoryName)
	assert.Equal(t, "Pagamento", entries[0].BankCategory)
	assert.Equal(t, "imp-1", entries[1].ImportID)
	assert.Equal(t, model.KindInflow, entries[1].Kind())
}

func TestAppend_ReimportAddsNothing(t *testing.T) {
	svc := NewService(t.TempDir())
	batch := []model.Transaction{
		txn(date(2025, 1, 2), "Coop", "-10"),
		txn(date(2025, 1, 2), "Coop", "-10"),
		txn(date(2025, 1, 3), "Enel", "-80.10"),
	}

	first, err := svc.Append(batch, "a")
	require.NoError(t, err)
	assert.Len(t, first.Added, 3)

	second, err := svc.Append(batch, "b")
	require.NoError(t, err)
	assert.Empty(t, second.Added)
	assert.Equal(t, 3, second.Duplicates)

	entries, err := svc.ReadMonth(2025, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestAppend_OverlappingExport(t *testing.T) {
	svc := NewService(t.TempDir())
	_, err := svc.Append([]model.Transaction{txn(date(2025, 1, 2), "Coop", "-10")}, "a")
	require.NoError(t, err)

	res, err := svc.Append([]model.Transaction{
		txn(date(2025, 1, 2), "Coop", "-10"),
		txn(date(2025, 1, 2), "Coop", "-10"),
	}, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-002"}, res.Added)
	assert.Equal(t, 1, res.Duplicates)
}

func TestAppend_SplitsByMonth(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir)

	res, err := svc.Append([]model.Transaction{
		txn(date(2024, 12, 31), "Dec", "-1"),
		txn(date(2025, 1, 1), "Jan", "-2"),
		txn(date(2024, 12, 30), "Dec2", "-3"),
	}, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-12-001", "2024-12-002", "2025-01-001"}, res.Added)

	jan, err := svc.ReadMonth(2025, 1)
	require.NoError(t, err)
	require.Len(t, jan, 1)
	assert.Equal(t, "Jan", jan[0].Description)
}

func TestAppend_RejectsInvalid(t *testing.T) {
	svc := NewService(t.TempDir())
	_, err := svc.Append([]model.Transaction{txn(date(2025, 1, 2), "Zero", "0")}, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount is zero")

	entries, err := svc.ReadMonth(2025, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReadMonth_Missing(t *testing.T) {
	entries, err := NewService(t.TempDir()).ReadMonth(2020, 1)
	require.NoError(t, err)
	assert.Nil(t, entries)
}
