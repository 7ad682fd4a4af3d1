package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cleared-dev/bankfeed/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	category_id TEXT PRIMARY KEY,
	name        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categorization_rules (
	id          BIGSERIAL PRIMARY KEY,
	keyword     TEXT NOT NULL,
	category_id TEXT REFERENCES categories (category_id)
);

CREATE TABLE IF NOT EXISTS transactions (
	txn_id        TEXT PRIMARY KEY,
	date          DATE NOT NULL,
	description   TEXT NOT NULL,
	amount        NUMERIC(14, 2) NOT NULL,
	kind          TEXT NOT NULL,
	source_bank   TEXT NOT NULL,
	bank_category TEXT NOT NULL,
	category_id   TEXT,
	reference     TEXT NOT NULL,
	occurrence    INT NOT NULL,
	import_id     TEXT NOT NULL,
	imported_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (reference, amount, occurrence)
);
`

const insertTransaction = `
INSERT INTO transactions (
	txn_id, date, description, amount, kind, source_bank, bank_category,
	category_id, reference, occurrence, import_id
) VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (reference, amount, occurrence) DO NOTHING
RETURNING txn_id`

// Postgres keeps rules, categories and transactions in a Postgres database.
// Rule precedence is insertion order (the rules id column).
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and creates the schema if missing.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Migrate creates the tables if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

func (p *Postgres) Rules(ctx context.Context) ([]model.Rule, error) {
	rows, err := p.pool.Query(ctx, `SELECT keyword, COALESCE(category_id, '') FROM categorization_rules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer rows.Close()

	var out []model.Rule
	for rows.Next() {
		var r model.Rule
		if err := rows.Scan(&r.Keyword, &r.CategoryID); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	return out, nil
}

func (p *Postgres) Categories(ctx context.Context) ([]model.Category, error) {
	rows, err := p.pool.Query(ctx, `SELECT category_id, name FROM categories ORDER BY category_id`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	return out, nil
}

// Save inserts txns in one transaction. Rows whose (reference, amount,
// occurrence) already exist are counted as duplicates.
func (p *Postgres) Save(ctx context.Context, txns []model.Transaction, importID string) (SaveResult, error) {
	var res SaveResult
	if len(txns) == 0 {
		return res, nil
	}

	occ := model.Occurrences(txns)
	batch := &pgx.Batch{}
	for i, t := range txns {
		var categoryID *string
		if t.CategoryID != "" {
			id := t.CategoryID
			categoryID = &id
		}
		batch.Queue(insertTransaction,
			uuid.NewString(), t.Date, t.Description, t.Amount.StringFixed(2), string(t.Kind()),
			t.SourceBank, t.BankCategory, categoryID, t.Reference, occ[i], importID)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	br := tx.SendBatch(ctx, batch)
	for range txns {
		var id string
		err := br.QueryRow().Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			res.Duplicates++
			continue
		}
		if err != nil {
			_ = br.Close()
			return SaveResult{}, fmt.Errorf("inserting transaction: %w", err)
		}
		res.Added = append(res.Added, id)
	}
	if err := br.Close(); err != nil {
		return SaveResult{}, fmt.Errorf("closing batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return SaveResult{}, fmt.Errorf("committing transaction: %w", err)
	}
	return res, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}
