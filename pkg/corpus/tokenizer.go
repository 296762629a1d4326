package corpus

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	blankLine    = regexp.MustCompile(`\n\s*\n`)
	sentenceSpan = regexp.MustCompile(`[^.!?]+[.!?]*`)
	lemmaStrip   = strings.NewReplacer(
		".", "", ",", "", "!", "", "?", "", ";", "", ":", "",
		"«", "", "»", "", `"`, "", "(", "", ")", "",
	)
)

// NormalizeLemma lowercases a surface form and strips the fixed
// punctuation set. It is deliberately naive: no morphological analysis,
// the lemma of "Chapeau," is "chapeau".
func NormalizeLemma(surface string) string {
	return strings.ToLower(lemmaStrip.Replace(surface))
}

// Tokenize splits raw text into paragraphs, sentences and word
// occurrences. Paragraph boundaries are blank lines, sentence boundaries
// are terminating punctuation, tokens are whitespace-separated words.
// Occurrence ids are derived from idPrefix and the token's position, so
// tokenizing the same text twice yields identical ids. Empty input
// yields a single degenerate paragraph with one empty sentence.
func Tokenize(text, idPrefix string) []Paragraph {
	blocks := blankLine.Split(text, -1)
	paragraphs := make([]Paragraph, 0, len(blocks))

	for pIdx, block := range blocks {
		spans := sentenceSpan.FindAllString(block, -1)
		if spans == nil {
			spans = []string{block}
		}

		sentences := make([]Sentence, 0, len(spans))
		for sIdx, span := range spans {
			trimmed := strings.TrimSpace(span)
			sentenceID := fmt.Sprintf("%s-p%d-s%d", idPrefix, pIdx, sIdx)

			words := strings.Fields(trimmed)
			tokens := make([]WordOccurrence, 0, len(words))
			for wIdx, w := range words {
				tokens = append(tokens, WordOccurrence{
					ID:    fmt.Sprintf("%s-w%d", sentenceID, wIdx),
					Text:  w,
					Lemma: NormalizeLemma(w),
					POS:   "unknown",
				})
			}
			sentences = append(sentences, Sentence{
				ID:     sentenceID,
				Text:   trimmed,
				Tokens: tokens,
			})
		}

		kind := Prose
		if strings.ContainsAny(block, `"«`) {
			kind = Dialogue
		}
		paragraphs = append(paragraphs, Paragraph{
			ID:        fmt.Sprintf("%s-p%d", idPrefix, pIdx),
			Kind:      kind,
			Sentences: sentences,
		})
	}

	return paragraphs
}
