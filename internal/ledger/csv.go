package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankfeed/internal/model"
)

// Header is the CSV header for transactions.csv.
const Header = "txn_id,date,description,amount,kind,source_bank,bank_category,category_id,category_name,reference,occurrence,import_id"

const (
	numFields     = 12
	colTxnID      = 0
	colDate       = 1
	colDesc       = 2
	colAmount     = 3
	colKind       = 4
	colBank       = 5
	colBankCat    = 6
	colCatID      = 7
	colCatName    = 8
	colRef        = 9
	colOccurrence = 10
	colImportID   = 11
)

// Entry is one persisted transaction.
type Entry struct {
	model.Transaction
	Occurrence int
	ImportID   string
}

// Key returns the dedup key of the entry.
func (e Entry) Key() string {
	return model.DedupKey(e.Reference, e.Amount, e.Occurrence)
}

// ReadEntries reads all entries from a transactions.csv reader.
func ReadEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteEntries writes entries to a transactions.csv writer (including header).
func WriteEntries(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendEntries appends entries to an existing transactions.csv writer (no header).
func AppendEntries(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTxnID] = e.ID
	row[colDate] = e.DateString()
	row[colDesc] = e.Description
	row[colAmount] = e.Amount.StringFixed(2)
	row[colKind] = string(e.Kind())
	row[colBank] = e.SourceBank
	row[colBankCat] = e.BankCategory
	row[colCatID] = e.CategoryID
	row[colCatName] = e.CategoryName
	row[colRef] = e.Reference
	row[colOccurrence] = strconv.Itoa(e.Occurrence)
	row[colImportID] = e.ImportID
	return row
}

// UnmarshalEntry converts a CSV row to an Entry. The kind column must agree
// with the sign of the amount.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(model.DateFormat, record[colDate])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	if kind := model.KindOf(amount); record[colKind] != string(kind) {
		return Entry{}, fmt.Errorf("kind %q does not match amount %s", record[colKind], record[colAmount])
	}

	occurrence, err := strconv.Atoi(record[colOccurrence])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing occurrence %q: %w", record[colOccurrence], err)
	}

	return Entry{
		Transaction: model.Transaction{
			ID:           record[colTxnID],
			Date:         date,
			Description:  record[colDesc],
			Amount:       amount,
			SourceBank:   record[colBank],
			BankCategory: record[colBankCat],
			CategoryID:   record[colCatID],
			CategoryName: record[colCatName],
			Reference:    record[colRef],
		},
		Occurrence: occurrence,
		ImportID:   record[colImportID],
	}, nil
}
