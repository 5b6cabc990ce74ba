package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/rcscout/internal/store"
)

var evalsCmd = &cobra.Command{
	Use:   "evals",
	Short: "List recorded classifier evaluations",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		limit, _ := cmd.Flags().GetInt("limit")
		source, _ := cmd.Flags().GetString("source")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.EventRepo().RecentEvaluations(cmd.Context(), store.QueryOpts{Limit: limit, Source: source})
		if err != nil {
			return fmt.Errorf("query evaluations: %w", err)
		}
		if len(runs) == 0 {
			fmt.Fprintln(out, "No evaluations recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-19s  %-8s  %-6s  %6s  %6s  %7s  %7s  %7s  %7s\n",
			"ID", "Timestamp", "Source", "Model", "Train", "Eval", "P", "R", "F1", "Acc")
		fmt.Fprintln(out, strings.Repeat("─", 92))
		for _, r := range runs {
			m := r.Metrics
			fmt.Fprintf(out, "%-5d  %-19s  %-8s  %-6s  %6d  %6d  %7.3f  %7.3f  %7.3f  %7.3f\n",
				r.ID,
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				r.Source,
				truncate(r.Classifier, 6),
				r.TrainSize,
				r.EvalSize,
				m.Precision, m.Recall, m.F1, m.Accuracy,
			)
		}
		return nil
	},
}

func init() {
	evalsCmd.Flags().IntP("limit", "n", 20, "Number of evaluations to show")
	evalsCmd.Flags().String("source", "", "Filter by source (holdout or live)")
}
