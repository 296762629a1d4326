package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/japaniel/margin/pkg/definition"
	"github.com/japaniel/margin/pkg/store"
	"github.com/japaniel/margin/pkg/study"
	"github.com/japaniel/margin/pkg/vocab"
)

func newStudyCommand(cctx *commandContext) *cobra.Command {
	var (
		bandFlag   string
		statusFlag string
	)

	cmd := &cobra.Command{
		Use:   "study",
		Short: "Review flashcards drawn from the corpus",
		Long: "Run an interactive flashcard session. Each card shows a lemma with an\n" +
			"example sentence; reveal the definition, then rate yourself. Ratings feed\n" +
			"both the mastery score and the familiarity ladder.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			crp, stats, analysis, err := cctx.loadEngine()
			if err != nil {
				return err
			}
			if len(crp) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "The corpus is empty. Import a document first.")
				return nil
			}

			filter := study.Filter{Band: vocab.Band(bandFlag), Status: study.Status(statusFlag)}
			switch filter.Band {
			case vocab.BandAll, vocab.BandCore, vocab.BandEssential, vocab.BandNiche:
			default:
				return fmt.Errorf("unknown band %q", bandFlag)
			}
			switch filter.Status {
			case study.StatusAll, study.StatusNew, study.StatusReview, study.StatusMastered:
			default:
				return fmt.Errorf("unknown status %q", statusFlag)
			}

			var provider study.DefinitionProvider
			if cfg.LLM.APIKey != "" {
				p, err := definition.NewOpenAIProvider(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
				if err != nil {
					return err
				}
				provider = p
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No API key configured; definitions will be unavailable.")
			}

			recorder := vocab.NewRecorder(analysis, stats)
			session := study.NewSession(recorder, provider, study.Config{
				QueueCap:     cfg.Study.QueueSize,
				FetchTimeout: cfg.StudyFetchTimeout(),
				Language:     cfg.Language,
			})

			queued := session.Start(vocab.ClassifyBands(analysis.Lexicon(stats)), filter)
			if queued == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cards match that filter.")
				return nil
			}

			if err := runStudyLoop(cmd, session); err != nil {
				return err
			}

			db, err := cctx.openDB()
			if err != nil {
				return err
			}
			if err := store.SaveStats(db, recorder.Stats()); err != nil {
				return fmt.Errorf("save stats: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session saved.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&bandFlag, "band", "b", "all", "Frequency band filter (core, essential, niche, all)")
	cmd.Flags().StringVarP(&statusFlag, "status", "s", "all", "Status filter (new, review, mastered, all)")

	return cmd
}

// runStudyLoop drives the card prompt until the queue drains, the user
// quits, or the context is canceled.
func runStudyLoop(cmd *cobra.Command, session *study.Session) error {
	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())

	for {
		card, ok := session.Current()
		if !ok {
			fmt.Fprintln(out, "Queue complete.")
			return nil
		}
		pos, total := session.Progress()
		fmt.Fprintf(out, "\n[%d/%d] %s  (seen %d times, band %s)\n", pos, total, card.Lemma, card.Count, card.Band)
		if len(card.Occurrences) > 0 {
			fmt.Fprintf(out, "  %q\n", card.Occurrences[0].Sentence)
		}
		fmt.Fprint(out, "Press enter to reveal, q to quit: ")
		if !in.Scan() {
			session.Exit()
			return in.Err()
		}
		if strings.EqualFold(strings.TrimSpace(in.Text()), "q") {
			session.Exit()
			return nil
		}

		select {
		case def := <-session.Reveal(cmd.Context()):
			fmt.Fprintf(out, "  %s\n", def)
		case <-cmd.Context().Done():
			session.Exit()
			return cmd.Context().Err()
		}

		fmt.Fprint(out, "Did you know it? [y/n/q]: ")
		if !in.Scan() {
			session.Exit()
			return in.Err()
		}
		answer := strings.ToLower(strings.TrimSpace(in.Text()))
		if answer == "q" {
			session.Exit()
			return nil
		}
		stat, _ := session.Rate(answer == "y" || answer == "yes")
		fmt.Fprintf(out, "  %s: mastery %.2f, %s\n", stat.Lemma, stat.MasteryScore, stat.Familiarity)
	}
}
