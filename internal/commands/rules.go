package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankfeed/internal/logger"
)

func newRulesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List categorization rules in precedence order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := openWorkspace(cmd, opts)
			if err != nil {
				return err
			}
			ctx := logger.WithContext(cmd.Context(), ws.log)

			st, err := ws.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			rs, err := loadRuleSet(ctx, st, false)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(rs.rules) == 0 {
				fmt.Fprintln(out, "No rules defined.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tKEYWORD\tCATEGORY")
			for i, r := range rs.rules {
				category := "(none)"
				if r.CategoryID != "" {
					category = r.CategoryID
					if name, ok := rs.names[r.CategoryID]; ok {
						category = fmt.Sprintf("%s (%s)", r.CategoryID, name)
					} else {
						category += " (unknown category)"
					}
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, r.Keyword, category)
			}
			return tw.Flush()
		},
	}
}
