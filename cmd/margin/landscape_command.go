package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/japaniel/margin/pkg/landscape"
)

func newLandscapeCommand(cctx *commandContext) *cobra.Command {
	var (
		viewFlag     string
		progressFlag float64
	)

	cmd := &cobra.Command{
		Use:   "landscape",
		Short: "Summarize the vocabulary landscape projection",
		Long: "Project the lexicon into landscape space and summarize it per terrain\n" +
			"zone. --progress simulates a reading cursor: words first seen before that\n" +
			"fraction of the corpus count as discovered.",
		RunE: func(cmd *cobra.Command, args []string) error {
			view := landscape.View(viewFlag)
			switch view {
			case landscape.ViewContent, landscape.ViewMemory, landscape.ViewReality:
			default:
				return fmt.Errorf("unknown view %q", viewFlag)
			}
			if progressFlag < 0 || progressFlag > 1 {
				return fmt.Errorf("--progress must be between 0 and 1")
			}

			crp, stats, analysis, err := cctx.loadEngine()
			if err != nil {
				return err
			}
			if len(crp) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "The corpus is empty. Import a document first.")
				return nil
			}

			lexicon := analysis.Lexicon(stats)
			model := landscape.Project(lexicon, view, progressFlag)

			mastery := make(map[string]float64, len(lexicon))
			for _, item := range lexicon {
				mastery[item.Lemma] = item.MasteryScore
			}

			rows := make([]table.Row, 0, 3)
			for _, zone := range []landscape.Zone{landscape.ZoneCore, landscape.ZoneSlopes, landscape.ZoneCanyons} {
				particles := model.Zones[zone]
				discovered, mastered := 0, 0
				var masterySum float64
				for _, p := range particles {
					if p.Discovered {
						discovered++
					}
					if p.Class == landscape.ClassMastered {
						mastered++
					}
					masterySum += mastery[p.Lemma]
				}
				avg := 0.0
				if len(particles) > 0 {
					avg = masterySum / float64(len(particles))
				}
				rows = append(rows, table.Row{
					string(zone),
					len(particles),
					discovered,
					mastered,
					fmt.Sprintf("%.2f", avg),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				table.Row{"Zone", "Words", "Discovered", "Mastered", "Avg Mastery"},
				rows, 2, 3, 4, 5))
			fmt.Fprintf(out, "View %s at progress %.0f%%: %d of %d words discovered\n",
				model.View, progressFlag*100, model.Discovered, len(model.Particles))
			if view == landscape.ViewContent && len(model.Curve) > 0 {
				last := model.Curve[len(model.Curve)-1]
				fmt.Fprintf(out, "Discovery curve: the final new word appears at %.0f%% of the text\n", last.X*100)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&viewFlag, "view", "v", "reality", "Projection view (content, memory, reality)")
	cmd.Flags().Float64VarP(&progressFlag, "progress", "p", 1.0, "Simulated reading progress between 0 and 1")

	return cmd
}
