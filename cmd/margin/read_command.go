package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/japaniel/margin/pkg/corpus"
	"github.com/japaniel/margin/pkg/store"
	"github.com/japaniel/margin/pkg/vocab"
)

// Passive reinforcement applied to every word of a read sentence. Small
// on purpose: mastery from reading alone saturates slowly.
const readingWeight = 0.05

func newReadCommand(cctx *commandContext) *cobra.Command {
	var plainFlag bool

	cmd := &cobra.Command{
		Use:   "read [document-id]",
		Short: "Read a document, recording passive exposure",
		Long: "Print a document for reading. Words you have mastered are dimmed so the\n" +
			"eye lands on what is still unfamiliar. Every printed word is recorded as\n" +
			"an implicit encounter. Without an argument, lists the corpus documents.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := cctx.openDB()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return listDocuments(cmd, cctx)
			}

			crp, stats, analysis, err := cctx.loadEngine()
			if err != nil {
				return err
			}
			var doc *corpus.Document
			for i := range crp {
				if crp[i].ID == args[0] {
					doc = &crp[i]
					break
				}
			}
			if doc == nil {
				return fmt.Errorf("no document with id %s", args[0])
			}

			recorder := vocab.NewRecorder(analysis, stats)
			printDocument(cmd, *doc, recorder, plainFlag)

			if err := store.SaveStats(db, recorder.Stats()); err != nil {
				return fmt.Errorf("save stats: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&plainFlag, "plain", false, "Disable mastery-based dimming")

	return cmd
}

func listDocuments(cmd *cobra.Command, cctx *commandContext) error {
	db, err := cctx.openDB()
	if err != nil {
		return err
	}
	docs, err := store.ListDocuments(db)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "The corpus is empty. Import a document first.")
		return nil
	}
	rows := make([]table.Row, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, table.Row{d.ID, d.Title, d.Author, d.AddedAt.Format("2006-01-02")})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(table.Row{"ID", "Title", "Author", "Added"}, rows))
	return nil
}

// printDocument renders the document paragraph by paragraph, dimming
// words whose mastery is already high, and logs one implicit interaction
// per word occurrence.
func printDocument(cmd *cobra.Command, doc corpus.Document, recorder *vocab.Recorder, plain bool) {
	out := cmd.OutOrStdout()
	dim := text.Colors{text.Faint}

	if doc.Title != "" {
		fmt.Fprintf(out, "%s\n\n", doc.Title)
	}
	for _, p := range doc.Paragraphs {
		var b strings.Builder
		for _, s := range p.Sentences {
			for _, tok := range s.Tokens {
				word := tok.Text
				if tok.Lemma != "" {
					stat := recorder.Record(tok.Lemma, vocab.Implicit, readingWeight, tok.ID)
					if !plain && stat.MasteryScore > 0.7 {
						word = dim.Sprint(word)
					}
				}
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(word)
			}
		}
		fmt.Fprintf(out, "%s\n\n", b.String())
	}
}
