package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankfeed/internal/config"
	"github.com/cleared-dev/bankfeed/internal/importer"
	"github.com/cleared-dev/bankfeed/internal/logger"
	"github.com/cleared-dev/bankfeed/internal/model"
	"github.com/cleared-dev/bankfeed/internal/rules"
	"github.com/cleared-dev/bankfeed/internal/store"
)

// workspace is an opened bankfeed workspace: its root, config and logger.
type workspace struct {
	root string
	cfg  *config.Config
	log  zerolog.Logger
}

func openWorkspace(cmd *cobra.Command, opts *rootOptions) (*workspace, error) {
	root, err := filepath.Abs(opts.workspace)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.LoadWorkspace(root)
	if err != nil {
		return nil, fmt.Errorf("not a bankfeed workspace (run bankfeed init): %w", err)
	}

	level := cfg.Log.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	log, err := logger.New(cmd.ErrOrStderr(), level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	return &workspace{root: root, cfg: cfg, log: log}, nil
}

// path resolves a config path against the workspace root.
func (w *workspace) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(w.root, p)
}

func (w *workspace) importer() *importer.Importer {
	return importer.New(importer.DefaultRegistry(), w.cfg.Signatures(), w.log)
}

func (w *workspace) openStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, w.cfg.Store.Backend, w.root, w.cfg.Store.DatabaseURL)
}

// ruleSet is what the rule engine needs for one run.
type ruleSet struct {
	rules []model.Rule
	names map[string]string
}

func (rs ruleSet) categorize(txns []model.Transaction) []model.Transaction {
	return rules.Categorize(txns, rs.rules, rs.names)
}

// loadRuleSet fetches rules and categories from src. When allowMissing is
// set, a fetch failure is logged and an empty rule set is returned.
func loadRuleSet(ctx context.Context, src store.RuleSource, allowMissing bool) (ruleSet, error) {
	log := logger.FromContext(ctx)

	rs, err := src.Rules(ctx)
	if err == nil {
		var cats []model.Category
		cats, err = src.Categories(ctx)
		if err == nil {
			return ruleSet{rules: rs, names: rules.Index(cats)}, nil
		}
	}

	if !allowMissing {
		return ruleSet{}, fmt.Errorf("loading rules: %w", err)
	}
	log.Warn().Err(err).Msg("rules unavailable, continuing uncategorized")
	return ruleSet{names: map[string]string{}}, nil
}
