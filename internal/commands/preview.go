package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankfeed/internal/importer"
	"github.com/cleared-dev/bankfeed/internal/logger"
	"github.com/cleared-dev/bankfeed/internal/model"
)

func newPreviewCommand(opts *rootOptions) *cobra.Command {
	var allowMissingRules bool

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Parse and categorize a bank file without saving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, opts)
			if err != nil {
				return err
			}
			ctx := logger.WithContext(cmd.Context(), ws.log)

			res, err := ws.importer().ParsePath(args[0])
			if err != nil {
				return err
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

			txns := rs.categorize(res.Transactions)
			out := cmd.OutOrStdout()
			if err := printTransactions(out, txns); err != nil {
				return err
			}
			printSummary(out, res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&allowMissingRules, "allow-missing-rules", false, "continue uncategorized when rules cannot be loaded")

	return cmd
}

func printTransactions(w io.Writer, txns []model.Transaction) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tAMOUNT\tDESCRIPTION\tBANK CATEGORY\tCATEGORY")
	for _, t := range txns {
		category := "-"
		if t.IsCategorized() {
			category = t.CategoryName
			if category == "" {
				category = t.CategoryID
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			t.DateString(), t.Amount.StringFixed(2), t.Description, t.BankCategory, category)
	}
	return tw.Flush()
}

func printSummary(w io.Writer, res *importer.Result) {
	s := res.Summary
	fmt.Fprintf(w, "\n%s: %d rows, %d accepted, %d skipped", res.Bank, s.RowsSeen, s.Accepted, s.Skipped())
	if s.Skipped() > 0 {
		fmt.Fprintf(w, " (no date %d, status %d, bad date %d, zero amount %d)",
			s.SkippedNoDate, s.SkippedStatus, s.SkippedBadDate, s.SkippedZeroAmount)
	}
	fmt.Fprintln(w)
}
