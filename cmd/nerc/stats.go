package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cognicore/nerc/pkg/nerc/corpus"
	"github.com/cognicore/nerc/pkg/nerc/store/sqlite"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats corpus...",
		Short: "Summarize annotated corpora",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := a.components()
			if err != nil {
				return err
			}
			paths, err := corpora(args, "")
			if err != nil {
				return err
			}

			var all []corpus.Sample
			for _, path := range paths {
				samples, err := readCorpus(path, comp.ReaderOptions())
				if err != nil {
					return err
				}
				all = append(all, samples...)
			}

			sum := corpus.Summarize(all)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "sentences\t%d\n", sum.Sentences)
			fmt.Fprintf(w, "tokens\t%d\n", sum.Tokens)
			fmt.Fprintf(w, "entities\t%d\n", sum.Entities)
			for _, tc := range sum.Types() {
				fmt.Fprintf(w, "  %s\t%d\n", tc.Type, tc.Count)
			}
			fmt.Fprintf(w, "reset adaptive\t%t\n", comp.ResetAdaptiveState())
			return w.Flush()
		},
	}
}

func newRunsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List extraction runs, or the outcome counts of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := a.path("db")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := sqlite.Open(ctx, dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if len(args) == 1 {
				counts, err := st.OutcomeCounts(ctx, args[0])
				if err != nil {
					return err
				}
				for _, c := range counts {
					fmt.Fprintf(w, "%s\t%d\n", c.Outcome, c.Count)
				}
				return w.Flush()
			}

			runs, err := st.Runs(ctx)
			if err != nil {
				return err
			}
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%t\n",
					r.ID, r.Language, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Samples, r.Events, r.Finished)
			}
			return w.Flush()
		},
	}
}
