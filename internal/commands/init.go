package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankfeed/internal/categories"
	"github.com/cleared-dev/bankfeed/internal/config"
	"github.com/cleared-dev/bankfeed/internal/gitops"
	"github.com/cleared-dev/bankfeed/internal/ledger"
	"github.com/cleared-dev/bankfeed/internal/rules"
	"github.com/cleared-dev/bankfeed/internal/store"
)

func newInitCommand() *cobra.Command {
	var useGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new bankfeed workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(cmd.Context(), absDir, useGit); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized bankfeed workspace at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useGit, "git", false, "initialize a git repository and commit after each import")

	return cmd
}

func runInit(ctx context.Context, dir string, useGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default()
	cfg.Git.AutoCommit = useGit

	// Create directory structure.
	dirs := []string{
		categories.Dir,
		filepath.Dir(store.RulesFile),
		cfg.Import.Dir,
		cfg.Import.ProcessedDir,
		ledger.Dir,
		"logs",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := categories.NewService(categories.Default()).Save(dir); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}

	// Empty rule set; rules are added by hand.
	if err := rules.Save(filepath.Join(dir, store.RulesFile), nil); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}

	// Bank files contain personal data and are not tracked.
	gitignore := ".env\nimport/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if !useGit {
		return nil
	}

	if err := gitops.Init(ctx, dir); err != nil {
		return err
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	if _, err := gitops.Commit(ctx, dir, "init: bankfeed workspace", author); err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}
	return nil
}
