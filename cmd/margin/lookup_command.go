package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaniel/margin/pkg/corpus"
	"github.com/japaniel/margin/pkg/definition"
	"github.com/japaniel/margin/pkg/store"
	"github.com/japaniel/margin/pkg/vocab"
)

// A lookup is mild evidence the word was not known.
const lookupWeight = -0.1

func newLookupCommand(cctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <word>",
		Short: "Look up a word's definition and record the lookup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lemma := corpus.NormalizeLemma(args[0])
			if lemma == "" {
				return fmt.Errorf("%q normalizes to nothing", args[0])
			}
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			_, stats, analysis, err := cctx.loadEngine()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			recorder := vocab.NewRecorder(analysis, stats)
			stat := recorder.Record(lemma, vocab.Explicit, lookupWeight, "lookup")

			if stat.Definition == "" && cfg.LLM.APIKey != "" {
				provider, err := definition.NewOpenAIProvider(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
				if err != nil {
					return err
				}
				fetchCtx, cancel := context.WithTimeout(cmd.Context(), cfg.StudyFetchTimeout())
				defer cancel()
				def, err := provider.Fetch(fetchCtx, lemma, cfg.Language)
				if err != nil {
					fmt.Fprintf(out, "definition fetch failed: %v\n", err)
				} else {
					stat = recorder.SetDefinition(lemma, def)
				}
			}

			db, err := cctx.openDB()
			if err != nil {
				return err
			}
			if err := store.SaveStats(db, recorder.Stats()); err != nil {
				return fmt.Errorf("save stats: %w", err)
			}

			fmt.Fprintf(out, "%s  (seen %d times, mastery %.2f)\n", stat.Lemma, stat.TotalOccurrences, stat.MasteryScore)
			if stat.Definition != "" {
				fmt.Fprintf(out, "  %s\n", stat.Definition)
			} else {
				fmt.Fprintln(out, "  no definition available")
			}
			return nil
		},
	}

	return cmd
}
