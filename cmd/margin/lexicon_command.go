package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/japaniel/margin/pkg/vocab"
)

func newLexiconCommand(cctx *commandContext) *cobra.Command {
	var (
		bandFlag  string
		limitFlag int
	)

	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Show the ranked vocabulary of the corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			crp, stats, analysis, err := cctx.loadEngine()
			if err != nil {
				return err
			}
			if len(crp) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "The corpus is empty. Import a document first.")
				return nil
			}

			banded := vocab.ClassifyBands(analysis.Lexicon(stats))

			band := vocab.Band(bandFlag)
			switch band {
			case vocab.BandAll, vocab.BandCore, vocab.BandEssential, vocab.BandNiche:
			default:
				return fmt.Errorf("unknown band %q", bandFlag)
			}

			rows := make([]table.Row, 0, len(banded))
			for _, item := range banded {
				if band != vocab.BandAll && item.Band != band {
					continue
				}
				rows = append(rows, table.Row{
					item.Rank + 1,
					item.Lemma,
					item.Count,
					string(item.Band),
					item.Familiarity.String(),
					fmt.Sprintf("%.2f", item.MasteryScore),
					item.ReviewCount,
				})
				if limitFlag > 0 && len(rows) >= limitFlag {
					break
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				table.Row{"Rank", "Lemma", "Count", "Band", "Familiarity", "Mastery", "Reviews"},
				rows, 1, 3, 6, 7))
			fmt.Fprintf(cmd.OutOrStdout(), "%d distinct lemmas, %d tokens\n", len(banded), analysis.TotalTokens)
			return nil
		},
	}

	cmd.Flags().StringVarP(&bandFlag, "band", "b", "all", "Frequency band filter (core, essential, niche, all)")
	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 25, "Maximum rows to print, 0 for all")

	return cmd
}
