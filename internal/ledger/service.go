// Package ledger persists categorized transactions as month-partitioned CSV
// files. The ledger is append-only.
package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/bankfeed/internal/id"
	"github.com/cleared-dev/bankfeed/internal/model"
)

// Dir is the ledger directory inside a workspace.
const Dir = "ledger"

// Service appends transactions to <root>/ledger/YYYY/MM/transactions.csv.
type Service struct {
	root string
}

// NewService creates a ledger Service rooted at a workspace.
func NewService(root string) *Service {
	return &Service{root: root}
}

// AppendResult reports what Append wrote.
type AppendResult struct {
	Added      []string // IDs of new entries, in input order
	Duplicates int      // transactions already present in the ledger
}

type monthKey struct{ year, month int }

// Append assigns IDs to txns and appends those not already in the ledger.
// A transaction is already present when an entry with the same reference,
// amount and occurrence exists; occurrences are counted within txns, so a
// file imported twice adds nothing the second time.
func (s *Service) Append(txns []model.Transaction, importID string) (AppendResult, error) {
	var res AppendResult
	occ := model.Occurrences(txns)

	var order []monthKey
	byMonth := make(map[monthKey][]Entry)
	for i, t := range txns {
		k := monthKey{t.Date.Year(), int(t.Date.Month())}
		if _, ok := byMonth[k]; !ok {
			order = append(order, k)
		}
		byMonth[k] = append(byMonth[k], Entry{Transaction: t, Occurrence: occ[i], ImportID: importID})
	}

	for _, k := range order {
		added, dups, err := s.appendMonth(k.year, k.month, byMonth[k])
		if err != nil {
			return res, err
		}
		res.Added = append(res.Added, added...)
		res.Duplicates += dups
	}
	return res, nil
}

func (s *Service) appendMonth(year, month int, candidates []Entry) ([]string, int, error) {
	existing, err := s.ReadMonth(year, month)
	if err != nil {
		return nil, 0, err
	}

	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[e.Key()] = true
	}

	seq := len(existing)
	var newEntries []Entry
	var ids []string
	dups := 0
	for _, e := range candidates {
		if seen[e.Key()] {
			dups++
			continue
		}
		seq++
		e.ID = id.FormatTxnID(year, month, seq)
		seen[e.Key()] = true
		newEntries = append(newEntries, e)
		ids = append(ids, e.ID)
	}
	if len(newEntries) == 0 {
		return nil, dups, nil
	}

	// Validate ALL entries of the month together.
	all := append(existing, newEntries...)
	if verrs := ValidateEntries(all, year, month); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return nil, 0, fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}

	path := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, 0, fmt.Errorf("creating ledger dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, 0, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return nil, 0, fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendEntries(f, newEntries); err != nil {
		return nil, 0, fmt.Errorf("appending entries: %w", err)
	}
	return ids, dups, nil
}

// ReadMonth reads all entries for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]Entry, error) {
	path := s.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return entries, nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.root, Dir, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "transactions.csv")
}
