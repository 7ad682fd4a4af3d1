package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/bankfeed/internal/gitops"
	"github.com/cleared-dev/bankfeed/internal/importer"
	"github.com/cleared-dev/bankfeed/internal/importlog"
	"github.com/cleared-dev/bankfeed/internal/ledger"
	"github.com/cleared-dev/bankfeed/internal/logger"
	"github.com/cleared-dev/bankfeed/internal/model"
	"github.com/cleared-dev/bankfeed/internal/store"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	var allowMissingRules bool

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Parse, categorize and save bank files",
		Long: "Parse, categorize and save bank files. With no arguments every supported\n" +
			"file in the import directory is imported and then moved to the processed directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, opts)
			if err != nil {
				return err
			}
			ctx := logger.WithContext(cmd.Context(), ws.log)
			return runImport(ctx, cmd, ws, args, allowMissingRules)
		},
	}

	cmd.Flags().BoolVar(&allowMissingRules, "allow-missing-rules", false, "continue uncategorized when rules cannot be loaded")

	return cmd
}

// parsedFile is one input after parsing and categorization.
type parsedFile struct {
	path   string
	result *importer.Result
	txns   []model.Transaction
}

func runImport(ctx context.Context, cmd *cobra.Command, ws *workspace, args []string, allowMissingRules bool) error {
	out := cmd.OutOrStdout()
	im := ws.importer()
	importDir := ws.path(ws.cfg.Import.Dir)

	paths, err := importPaths(im, importDir, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintf(out, "No files to import in %s\n", importDir)
		return nil
	}

	st, err := ws.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	rs, err := loadRuleSet(ctx, st, allowMissingRules)
	if err != nil {
		return err
	}

	parsed, err := parseAll(ctx, im, rs, paths)
	if err != nil {
		return err
	}

	// Persist in input order so ledger IDs are stable across runs.
	for _, pf := range parsed {
		if err := saveFile(ctx, ws, st, importDir, pf, out); err != nil {
			return err
		}
	}
	return nil
}

// importPaths returns args as absolute paths, or every supported file in
// importDir when args is empty.
func importPaths(im *importer.Importer, importDir string, args []string) ([]string, error) {
	if len(args) == 0 {
		files, err := im.Scan(importDir)
		if err != nil {
			return nil, err
		}
		paths := make([]string, len(files))
		for i, f := range files {
			paths[i] = f.Path
		}
		return paths, nil
	}

	paths := make([]string, len(args))
	for i, a := range args {
		p, err := filepath.Abs(a)
		if err != nil {
			return nil, fmt.Errorf("resolving path: %w", err)
		}
		paths[i] = p
	}
	return paths, nil
}

// parseAll parses and categorizes files concurrently. Any failure aborts the
// run before anything is saved.
func parseAll(ctx context.Context, im *importer.Importer, rs ruleSet, paths []string) ([]parsedFile, error) {
	parsed := make([]parsedFile, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := im.ParsePath(p)
			if err != nil {
				return err
			}
			parsed[i] = parsedFile{path: p, result: res, txns: rs.categorize(res.Transactions)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parsed, nil
}

func saveFile(ctx context.Context, ws *workspace, sink store.Sink, importDir string, pf parsedFile, out io.Writer) error {
	log := logger.FromContext(ctx)
	name := filepath.Base(pf.path)
	importID := uuid.NewString()

	saved, err := sink.Save(ctx, pf.txns, importID)
	if err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}

	s := pf.result.Summary
	entry := importlog.Entry{
		Timestamp:  time.Now().UTC().Truncate(time.Second),
		ImportID:   importID,
		File:       name,
		Bank:       pf.result.Bank,
		RowsSeen:   s.RowsSeen,
		Accepted:   s.Accepted,
		Skipped:    s.Skipped(),
		Added:      len(saved.Added),
		Duplicates: saved.Duplicates,
	}
	if err := importlog.Append(ws.root, []importlog.Entry{entry}); err != nil {
		log.Warn().Err(err).Str("file", name).Msg("failed to write import log")
	}

	if filepath.Dir(pf.path) == importDir {
		if err := importer.MarkProcessed(pf.path, ws.path(ws.cfg.Import.ProcessedDir)); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "%s: %s, %d accepted, %d skipped, %d added, %d duplicates\n",
		name, entry.Bank, entry.Accepted, entry.Skipped, entry.Added, entry.Duplicates)

	if ws.cfg.Git.AutoCommit && gitops.IsRepo(ws.root) {
		commitImport(ctx, ws, name, entry)
	}
	return nil
}

// commitImport records the ledger and log changes of one import. Failures
// are logged; the data is already saved.
func commitImport(ctx context.Context, ws *workspace, name string, e importlog.Entry) {
	log := logger.FromContext(ctx)

	var paths []string
	for _, p := range []string{ledger.Dir, "logs"} {
		if _, err := os.Stat(filepath.Join(ws.root, p)); err == nil {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return
	}

	msg := fmt.Sprintf("import: %s (%d added, %d duplicates)", name, e.Added, e.Duplicates)
	author := gitops.Author{Name: ws.cfg.Git.AuthorName, Email: ws.cfg.Git.AuthorEmail}
	hash, err := gitops.Commit(ctx, ws.root, msg, author, paths...)
	if err != nil {
		log.Warn().Err(err).Str("file", name).Msg("git commit failed")
		return
	}
	if hash != "" {
		log.Info().Str("file", name).Str("commit", hash).Msg("committed import")
	}
}
