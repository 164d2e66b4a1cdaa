package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSpansCmd(a *app) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "spans corpus...",
		Short: "Print the entity spans of annotated corpora",
		Long: `Decodes the BIO tags of every sentence and prints one line per entity:
sentence, start, end (exclusive), type and text.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := a.components()
			if err != nil {
				return err
			}
			paths, err := corpora(args, "")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, path := range paths {
				samples, err := readCorpus(path, comp.ReaderOptions())
				if err != nil {
					return err
				}
				for i, s := range samples {
					for _, sp := range s.Spans {
						if typ != "" && !strings.EqualFold(sp.Type, typ) {
							continue
						}
						fmt.Fprintf(out, "%d\t%d\t%d\t%s\t%s\n",
							i, sp.Start, sp.End, sp.Type, strings.Join(s.Tokens[sp.Start:sp.End], " "))
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "", "only print entities of this type")
	return cmd
}
