package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/bankfeed/internal/model"
	"github.com/cleared-dev/bankfeed/internal/normalize"
)

// Row is one record from a tabular source. Cells are strings, or native
// float64 / time.Time values when the source knows the cell type.
type Row []any

// Summary counts what happened to the data rows of one file.
type Summary struct {
	RowsSeen          int
	Accepted          int
	SkippedNoDate     int
	SkippedStatus     int
	SkippedBadDate    int
	SkippedZeroAmount int
}

// Skipped returns the number of rows that produced no transaction.
func (s Summary) Skipped() int {
	return s.RowsSeen - s.Accepted
}

// Result is the outcome of parsing one bank file.
type Result struct {
	Bank         string
	Layout       Layout
	Transactions []model.Transaction
	Summary      Summary
}

// Extract walks the data rows of a detected layout and emits transactions.
// Rows without a usable date, with a non-completed status or with a zero or
// unparseable amount are skipped and counted in the summary.
func Extract(rows []Row, layout Layout, log zerolog.Logger) *Result {
	res := &Result{Bank: layout.Bank, Layout: layout}
	cols := layout.Columns

	for i := layout.DataStart; i < len(rows); i++ {
		r := rows[i]
		res.Summary.RowsSeen++

		rawDate := cell(r, cols.Date)
		if isBlank(rawDate) {
			res.Summary.SkippedNoDate++
			log.Debug().Int("row", i+1).Msg("skipping row: no date")
			continue
		}

		if cols.Status >= 0 {
			status := strings.ToUpper(strings.TrimSpace(normalize.CellText(cell(r, cols.Status))))
			if status != "" && !isCompleted(status) {
				res.Summary.SkippedStatus++
				log.Debug().Int("row", i+1).Str("status", status).Msg("skipping row: not completed")
				continue
			}
		}

		date, ok := normalize.ParseDate(rawDate)
		if !ok {
			res.Summary.SkippedBadDate++
			log.Debug().Int("row", i+1).Str("date", normalize.CellText(rawDate)).Msg("skipping row: bad date")
			continue
		}

		amount := normalize.ParseMoney(cell(r, cols.Amount))
		if amount.IsZero() {
			res.Summary.SkippedZeroAmount++
			log.Debug().Int("row", i+1).Msg("skipping row: zero or unparseable amount")
			continue
		}

		desc := model.NoDescription
		if raw := cell(r, cols.Description); !isBlank(raw) {
			desc = normalize.CellText(raw)
		}
		desc = normalize.CleanText(desc)

		bankCat := model.Uncategorized
		if raw := cell(r, cols.Category); !isBlank(raw) {
			bankCat = normalize.TitleCase(normalize.CellText(raw))
		}

		res.Transactions = append(res.Transactions, model.Transaction{
			Date:         date,
			Description:  desc,
			Amount:       amount,
			SourceBank:   layout.Bank,
			BankCategory: bankCat,
			Reference:    makeRef(layout.Bank, date, desc),
		})
		res.Summary.Accepted++
	}
	return res
}

// completedStatuses are the status values of settled transactions.
var completedStatuses = map[string]bool{
	"COMPLETATO": true,
	"COMPLETED":  true,
}

func isCompleted(status string) bool {
	return completedStatuses[status]
}

func cell(r Row, idx int) any {
	if idx < 0 || idx >= len(r) {
		return nil
	}
	return r[idx]
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// makeRef creates a reference like revolut_20241220_Coffeeshop.
func makeRef(bank string, date time.Time, desc string) string {
	return fmt.Sprintf("%s_%s_%s", alnum(strings.ToLower(bank), 0), date.Format("20060102"), alnum(desc, 10))
}

// alnum keeps ASCII letters and digits, truncated to limit when limit > 0.
func alnum(s string, limit int) string {
	out := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
