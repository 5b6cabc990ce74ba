package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/rcscout/internal/itemstore"
	"github.com/abhisek/rcscout/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show label counts and session outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		session, _ := cmd.Flags().GetString("session")

		items, err := itemstore.Load(cfg.ItemsPath)
		if err != nil {
			return err
		}
		s := items.Stats()

		fmt.Fprintf(out, "Items (%s)\n", cfg.ItemsPath)
		fmt.Fprintln(out, strings.Repeat("─", 40))
		fmt.Fprintf(out, "%-24s  %8d\n", "Records", s.Records)
		fmt.Fprintf(out, "%-24s  %8d\n", "Good answers", s.ValidAnswers)
		fmt.Fprintf(out, "%-24s  %8d\n", "Root cause", s.RootCauses)
		fmt.Fprintf(out, "%-24s  %8d\n", "Not root cause", s.NotRootCauses)
		fmt.Fprintf(out, "%-24s  %8d\n", "Root cause not judged", s.UnsetRootCause)

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		counts, err := st.EventRepo().AnnotationCounts(cmd.Context(), session)
		if err != nil {
			return fmt.Errorf("query annotation counts: %w", err)
		}
		if len(counts) == 0 {
			fmt.Fprintln(out, "\nNo annotation sessions recorded yet.")
			return nil
		}

		fmt.Fprintln(out)
		if session != "" {
			fmt.Fprintf(out, "Candidate outcomes (session %s)\n", session)
		} else {
			fmt.Fprintln(out, "Candidate outcomes (all sessions)")
		}
		fmt.Fprintln(out, strings.Repeat("─", 40))
		for _, outcome := range []string{
			store.OutcomeSkipped, store.OutcomeRejected, store.OutcomeAccepted,
			store.OutcomeAnnotated, store.OutcomeDropped,
		} {
			fmt.Fprintf(out, "%-24s  %8d\n", outcome, counts[outcome])
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringP("session", "s", "", "Only count outcomes of this session ID")
}
