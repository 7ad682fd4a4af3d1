package store

import (
	"context"
	"path/filepath"

	"github.com/cleared-dev/bankfeed/internal/categories"
	"github.com/cleared-dev/bankfeed/internal/ledger"
	"github.com/cleared-dev/bankfeed/internal/model"
	"github.com/cleared-dev/bankfeed/internal/rules"
)

// RulesFile is the rules file path inside a workspace.
var RulesFile = filepath.Join("rules", "categorization-rules.yaml")

// Files reads rules and categories from the workspace and appends to the CSV ledger.
type Files struct {
	root   string
	ledger *ledger.Service
}

// NewFiles creates a Files store rooted at a workspace.
func NewFiles(root string) *Files {
	return &Files{root: root, ledger: ledger.NewService(root)}
}

func (f *Files) Rules(_ context.Context) ([]model.Rule, error) {
	return rules.Load(filepath.Join(f.root, RulesFile))
}

func (f *Files) Categories(_ context.Context) ([]model.Category, error) {
	svc, err := categories.Load(f.root)
	if err != nil {
		return nil, err
	}
	return svc.All(), nil
}

func (f *Files) Save(_ context.Context, txns []model.Transaction, importID string) (SaveResult, error) {
	res, err := f.ledger.Append(txns, importID)
	if err != nil {
		return SaveResult{}, err
	}
	return SaveResult{Added: res.Added, Duplicates: res.Duplicates}, nil
}

func (f *Files) Close() {}
