package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/nerc/pkg/nerc"
	"github.com/cognicore/nerc/pkg/nerc/corpus"
	"github.com/cognicore/nerc/pkg/nerc/store/sqlite"
)

func newEventsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "events [corpus...]",
		Short: "Extract training events into the event store",
		Long: `Reads each corpus with the configured feature generator and stores one
event per token. Without arguments the train_set of the parameters file
is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := a.logger(cmd)
			if err != nil {
				return err
			}
			comp, err := a.components()
			if err != nil {
				return err
			}
			paths, err := corpora(args, comp.Params.TrainSet)
			if err != nil {
				return err
			}
			dbPath, err := a.path("db")
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := sqlite.Open(ctx, dbPath)
			if err != nil {
				return err
			}
			n, err := nerc.New(nerc.Options{Store: st, Components: comp, Logger: logger})
			if err != nil {
				st.Close()
				return err
			}
			defer n.Close()

			for _, path := range paths {
				src, err := corpus.OpenFile(path)
				if err != nil {
					return err
				}
				run, err := n.Extract(ctx, src)
				src.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d samples\t%d events\n", run.ID, path, run.Samples, run.Events)
			}
			return nil
		},
	}
}
