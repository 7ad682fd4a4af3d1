// Package rules assigns user categories to transactions by keyword matching.
package rules

import (
	"strings"

	"github.com/cleared-dev/bankfeed/internal/model"
)

// Index builds the id -> name lookup used by Categorize.
func Index(categories []model.Category) map[string]string {
	byID := make(map[string]string, len(categories))
	for _, c := range categories {
		byID[c.ID] = c.Name
	}
	return byID
}

// Categorize returns a copy of txns with category fields resolved.
//
// A transaction that already has a category ID keeps it and only has its
// name refreshed from namesByID. Otherwise the first rule, in the order
// given, whose keyword occurs in "description bank-category" (case
// insensitive) assigns its category. Unmatched transactions keep an empty
// ID and their existing name. BankCategory is never modified.
func Categorize(txns []model.Transaction, rules []model.Rule, namesByID map[string]string) []model.Transaction {
	keywords := compile(rules)

	out := make([]model.Transaction, len(txns))
	for i, txn := range txns {
		if txn.CategoryID != "" {
			if name, ok := namesByID[txn.CategoryID]; ok {
				txn.CategoryName = name
			}
			out[i] = txn
			continue
		}

		if r, ok := match(keywords, txn); ok && r.CategoryID != "" {
			txn.CategoryID = r.CategoryID
			if name, ok := namesByID[r.CategoryID]; ok {
				txn.CategoryName = name
			}
		}
		out[i] = txn
	}
	return out
}

type keyword struct {
	text string
	rule model.Rule
}

// compile normalizes keywords and drops blank ones, keeping rule order.
func compile(rules []model.Rule) []keyword {
	kws := make([]keyword, 0, len(rules))
	for _, r := range rules {
		k := strings.ToLower(strings.TrimSpace(r.Keyword))
		if k == "" {
			continue
		}
		kws = append(kws, keyword{text: k, rule: r})
	}
	return kws
}

// match returns the first rule whose keyword occurs in the transaction.
func match(keywords []keyword, txn model.Transaction) (model.Rule, bool) {
	target := strings.TrimSpace(strings.ToLower(txn.Description + " " + txn.BankCategory))
	for _, k := range keywords {
		if strings.Contains(target, k.text) {
			return k.rule, true
		}
	}
	return model.Rule{}, false
}
