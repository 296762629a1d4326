package vocab

import (
	"sort"

	"github.com/japaniel/margin/pkg/corpus"
)

// maxContexts bounds how many example sentences are cached per lemma.
const maxContexts = 5

// LemmaCount is the corpus-derived frequency record for one lemma.
type LemmaCount struct {
	Count    int
	FirstPos int // 1-based running token position of the first sight
}

// ContextSnippet is a cached example of a lemma in situ.
type ContextSnippet struct {
	OccurrenceID string
	SentenceID   string
	Sentence     string
}

// LexiconItem is a read-only projection of a VocabularyStat over the
// current corpus. It is recomputed whenever the corpus or the stat map
// changes and is never persisted.
type LexiconItem struct {
	VocabularyStat
	Count       int
	Occurrences []ContextSnippet
}

// Analysis is the term-frequency table derived from a full pass over the
// corpus. Deriving it is pure; callers re-derive whenever the corpus
// changes rather than mutating it in place.
type Analysis struct {
	TotalTokens int
	ByLemma     map[string]LemmaCount

	contexts map[string][]ContextSnippet
}

// Analyze walks every occurrence once, left to right, recording count and
// first-sight position per lemma plus a bounded set of context snippets.
// Tokens whose lemma normalizes to the empty string still advance the
// position counter but are not indexed.
func Analyze(c corpus.Corpus) *Analysis {
	a := &Analysis{
		ByLemma:  make(map[string]LemmaCount),
		contexts: make(map[string][]ContextSnippet),
	}
	c.EachOccurrence(func(pos int, occ corpus.WordOccurrence, sentence corpus.Sentence) {
		a.TotalTokens = pos
		if occ.Lemma == "" {
			return
		}
		lc, seen := a.ByLemma[occ.Lemma]
		if !seen {
			lc.FirstPos = pos
		}
		lc.Count++
		a.ByLemma[occ.Lemma] = lc

		if snippets := a.contexts[occ.Lemma]; len(snippets) < maxContexts {
			a.contexts[occ.Lemma] = append(snippets, ContextSnippet{
				OccurrenceID: occ.ID,
				SentenceID:   sentence.ID,
				Sentence:     sentence.Text,
			})
		}
	})
	return a
}

// getOrCreate resolves the lemma's persisted stat, or synthesizes the
// default one from the current analysis. This is the single
// default-construction path shared by the aggregator and the recorder.
// The synthesized record carries a zero LastEncounterDate; only the
// recorder stamps encounters, which keeps aggregation a pure function.
func (a *Analysis) getOrCreate(stats map[string]VocabularyStat, lemma string) VocabularyStat {
	if s, ok := stats[lemma]; ok {
		return s
	}
	lc, ok := a.ByLemma[lemma]
	if !ok {
		// Interactions may arrive for lemmas outside the loaded corpus;
		// treat them as a single first-position occurrence.
		lc = LemmaCount{Count: 1, FirstPos: 1}
	}
	progress := 0.0
	if a.TotalTokens > 0 {
		progress = float64(lc.FirstPos) / float64(a.TotalTokens)
	}
	return VocabularyStat{
		Lemma:                  lemma,
		TotalOccurrences:       lc.Count,
		RelativeDifficulty:     RelativeDifficulty(lc.Count),
		FirstDiscoveryProgress: progress,
		Familiarity:            Unknown,
	}
}

// Lexicon merges the analysis with persisted stats into the ranked,
// deduplicated lexicon: one item per distinct lemma, sorted descending by
// live count with lemma order breaking ties.
func (a *Analysis) Lexicon(stats map[string]VocabularyStat) []LexiconItem {
	items := make([]LexiconItem, 0, len(a.ByLemma))
	for lemma, lc := range a.ByLemma {
		items = append(items, LexiconItem{
			VocabularyStat: a.getOrCreate(stats, lemma),
			Count:          lc.Count,
			Occurrences:    a.contexts[lemma],
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Lemma < items[j].Lemma
	})
	return items
}

// Aggregate derives the ranked lexicon for a corpus and persisted stat
// map in one call. Pure: identical inputs produce identical output.
func Aggregate(c corpus.Corpus, stats map[string]VocabularyStat) []LexiconItem {
	return Analyze(c).Lexicon(stats)
}
