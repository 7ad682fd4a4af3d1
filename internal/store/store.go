// Package store defines where rules and categories come from and where
// categorized transactions go, with file and Postgres backends.
package store

import (
	"context"
	"fmt"

	"github.com/cleared-dev/bankfeed/internal/model"
)

// Backend names accepted in bankfeed.yaml.
const (
	BackendFiles    = "files"
	BackendPostgres = "postgres"
)

// RuleSource supplies the ordered rule set and the category dictionary.
type RuleSource interface {
	Rules(ctx context.Context) ([]model.Rule, error)
	Categories(ctx context.Context) ([]model.Category, error)
}

// SaveResult reports what a Sink persisted.
type SaveResult struct {
	Added      []string // IDs of new rows, in input order
	Duplicates int      // transactions already persisted
}

// Sink persists categorized transactions. Saving the same batch twice adds
// nothing the second time.
type Sink interface {
	Save(ctx context.Context, txns []model.Transaction, importID string) (SaveResult, error)
}

// Store is a RuleSource and Sink sharing one backend.
type Store interface {
	RuleSource
	Sink
	Close()
}

// Open returns the Store for backend. root is the workspace directory, used
// by the files backend; dsn is used by the postgres backend.
func Open(ctx context.Context, backend, root, dsn string) (Store, error) {
	switch backend {
	case "", BackendFiles:
		return NewFiles(root), nil
	case BackendPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres backend requires store.database_url")
		}
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
