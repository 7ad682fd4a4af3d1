package importer

import (
	"strings"

	"github.com/cleared-dev/bankfeed/internal/model"
	"github.com/cleared-dev/bankfeed/internal/normalize"
)

// maxHeaderScan is how many leading rows are searched for a header.
const maxHeaderScan = 20

// Signature describes one recognized bank export layout: the header tokens
// that identify it and the header spellings of each field. Header matching
// is done on lowercased, trimmed cells. For each field the first listed
// spelling present in the header wins.
type Signature struct {
	Bank        string   `yaml:"bank"`
	Required    []string `yaml:"required"`
	AnyOf       []string `yaml:"any_of,omitempty"`
	Forbidden   []string `yaml:"forbidden,omitempty"`
	Date        []string `yaml:"date"`
	Description []string `yaml:"description"`
	Amount      []string `yaml:"amount"`
	Category    []string `yaml:"category,omitempty"`
	Status      []string `yaml:"status,omitempty"`
}

// Columns maps fields to column indices; -1 means absent.
type Columns struct {
	Date        int
	Description int
	Amount      int
	Category    int
	Status      int
}

// Layout is the result of header detection for one file.
type Layout struct {
	Bank      string
	Columns   Columns
	HeaderRow int // -1 when the positional fallback is used
	DataStart int
}

// IsFallback reports whether no signature matched.
func (l Layout) IsFallback() bool {
	return l.HeaderRow < 0
}

// FallbackLayout is used when no header matches: date, description and
// amount in the first three columns, data from the first row.
var FallbackLayout = Layout{
	Bank:      model.UnknownBank,
	Columns:   Columns{Date: 0, Description: 1, Amount: 2, Category: -1, Status: -1},
	HeaderRow: -1,
	DataStart: 0,
}

// DefaultSignatures returns the built-in layouts in priority order.
func DefaultSignatures() []Signature {
	return []Signature{
		{
			// Transaction log with start and completion dates.
			Bank:        "Revolut",
			Required:    []string{"tipo", "data di inizio", "importo", "descrizione"},
			Date:        []string{"data di inizio"},
			Description: []string{"descrizione"},
			Amount:      []string{"importo"},
			Category:    []string{"categoria", "tipo"},
			Status:      []string{"state", "stato"},
		},
		{
			Bank:        "Revolut",
			Required:    []string{"type", "started date", "amount", "description"},
			Date:        []string{"started date"},
			Description: []string{"description"},
			Amount:      []string{"amount"},
			Category:    []string{"category", "type"},
			Status:      []string{"state"},
		},
		{
			// Simple ledger export.
			Bank:        "Intesa Sanpaolo",
			Required:    []string{"data", "importo"},
			AnyOf:       []string{"dettagli", "descrizione"},
			Forbidden:   []string{"data di inizio"},
			Date:        []string{"data"},
			Description: []string{"dettagli", "descrizione"},
			Amount:      []string{"importo"},
			Category:    []string{"categoria", "voce di spesa"},
		},
	}
}

// Normalized returns a copy of s with every token lowercased and trimmed,
// the form header cells are compared in.
func (s Signature) Normalized() Signature {
	s.Required = lowerAll(s.Required)
	s.AnyOf = lowerAll(s.AnyOf)
	s.Forbidden = lowerAll(s.Forbidden)
	s.Date = lowerAll(s.Date)
	s.Description = lowerAll(s.Description)
	s.Amount = lowerAll(s.Amount)
	s.Category = lowerAll(s.Category)
	s.Status = lowerAll(s.Status)
	return s
}

func lowerAll(tokens []string) []string {
	if tokens == nil {
		return nil
	}
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return out
}

// header is a lowercased view of one candidate header row.
type header struct {
	cells []string
	set   map[string]bool
}

func newHeader(row Row) header {
	h := header{cells: make([]string, len(row)), set: make(map[string]bool, len(row))}
	for i, c := range row {
		tok := strings.ToLower(strings.TrimSpace(normalize.CellText(c)))
		h.cells[i] = tok
		h.set[tok] = true
	}
	return h
}

// index returns the column of the first spelling present, or -1.
func (h header) index(spellings []string) int {
	for _, s := range spellings {
		if !h.set[s] {
			continue
		}
		for i, c := range h.cells {
			if c == s {
				return i
			}
		}
	}
	return -1
}

func (h header) hasAll(tokens []string) bool {
	for _, t := range tokens {
		if !h.set[t] {
			return false
		}
	}
	return true
}

func (h header) hasAny(tokens []string) bool {
	for _, t := range tokens {
		if h.set[t] {
			return true
		}
	}
	return false
}

// match tests the signature against a header row and resolves its columns.
func (s Signature) match(h header) (Columns, bool) {
	if len(s.Required) == 0 || !h.hasAll(s.Required) {
		return Columns{}, false
	}
	if len(s.AnyOf) > 0 && !h.hasAny(s.AnyOf) {
		return Columns{}, false
	}
	if h.hasAny(s.Forbidden) {
		return Columns{}, false
	}
	cols := Columns{
		Date:        h.index(s.Date),
		Description: h.index(s.Description),
		Amount:      h.index(s.Amount),
		Category:    h.index(s.Category),
		Status:      h.index(s.Status),
	}
	if cols.Date < 0 || cols.Amount < 0 {
		return Columns{}, false
	}
	return cols, true
}

// Detect searches the first rows for a header matching one of sigs, tried in
// order. The first matching row fixes the layout for the whole file; data
// starts on the row after it. Without a match the positional fallback is used.
func Detect(rows []Row, sigs []Signature) Layout {
	n := min(len(rows), maxHeaderScan)
	for i := 0; i < n; i++ {
		h := newHeader(rows[i])
		for _, sig := range sigs {
			if cols, ok := sig.match(h); ok {
				return Layout{Bank: sig.Bank, Columns: cols, HeaderRow: i, DataStart: i + 1}
			}
		}
	}
	return FallbackLayout
}
