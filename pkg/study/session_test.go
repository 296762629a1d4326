package study

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/japaniel/margin/pkg/corpus"
	"github.com/japaniel/margin/pkg/vocab"
)

type fakeProvider struct {
	definition string
	err        error
	delay      time.Duration
	calls      int
}

func (p *fakeProvider) Fetch(ctx context.Context, lemma, language string) (string, error) {
	p.calls++
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if p.err != nil {
		return "", p.err
	}
	return p.definition + ":" + lemma, nil
}

func testLexicon(t *testing.T, text string, stats map[string]vocab.VocabularyStat) ([]vocab.BandedItem, *vocab.Recorder) {
	t.Helper()
	c := corpus.Corpus{{ID: "t", Paragraphs: corpus.Tokenize(text, "t")}}
	analysis := vocab.Analyze(c)
	recorder := vocab.NewRecorder(analysis, stats)
	return vocab.ClassifyBands(analysis.Lexicon(recorder.Stats())), recorder
}

func TestStartShufflesAndCaps(t *testing.T) {
	words := make([]string, 40)
	for i := range words {
		words[i] = strings.Repeat("abcdefghij"[i%10:i%10+1], i/10+1)
	}
	lexicon, recorder := testLexicon(t, strings.Join(words, " ")+".", nil)

	s := NewSession(recorder, nil, Config{QueueCap: 10, Seed: 7})
	n := s.Start(lexicon, Filter{Band: vocab.BandAll, Status: StatusAll})
	if n != 10 {
		t.Fatalf("queue length = %d, want cap 10", n)
	}
	if s.Mode() != Study {
		t.Error("session should be in study mode")
	}
}

func TestStartEmptyFilterRefusesSession(t *testing.T) {
	stats := map[string]vocab.VocabularyStat{}
	lexicon, recorder := testLexicon(t, "un deux trois quatre cinq six sept.", stats)

	// Mark everything as reviewed so the "new" filter matches nothing.
	for _, item := range lexicon {
		st := item.VocabularyStat
		st.ReviewCount = 3
		st.Familiarity = vocab.Familiar
		stats[item.Lemma] = st
	}
	lexicon = vocab.ClassifyBands(vocab.Aggregate(corpus.Corpus{{ID: "t", Paragraphs: corpus.Tokenize("un deux trois quatre cinq six sept.", "t")}}, stats))

	s := NewSession(recorder, nil, Config{Seed: 1})
	if n := s.Start(lexicon, Filter{Band: vocab.BandCore, Status: StatusNew}); n != 0 {
		t.Fatalf("expected empty queue, got %d", n)
	}
	if s.Mode() != Dashboard {
		t.Error("empty queue should keep the session on the dashboard")
	}
	// Navigation on an empty queue must not panic.
	if _, ok := s.Current(); ok {
		t.Error("Current should report no card")
	}
	if _, ok := s.Rate(true); ok {
		t.Error("Rate should refuse without a card")
	}
	<-s.Reveal(context.Background())
}

func TestFilterStatusPredicates(t *testing.T) {
	newItem := vocab.BandedItem{LexiconItem: vocab.LexiconItem{VocabularyStat: vocab.VocabularyStat{Lemma: "a", Familiarity: vocab.Seen}}, Band: vocab.BandCore}
	reviewItem := vocab.BandedItem{LexiconItem: vocab.LexiconItem{VocabularyStat: vocab.VocabularyStat{Lemma: "b", ReviewCount: 2, Familiarity: vocab.Familiar}}, Band: vocab.BandCore}
	masteredItem := vocab.BandedItem{LexiconItem: vocab.LexiconItem{VocabularyStat: vocab.VocabularyStat{Lemma: "c", ReviewCount: 9, Familiarity: vocab.Mastered}}, Band: vocab.BandNiche}

	cases := []struct {
		item vocab.BandedItem
		f    Filter
		want bool
	}{
		{newItem, Filter{Status: StatusNew}, true},
		{reviewItem, Filter{Status: StatusNew}, false},
		{reviewItem, Filter{Status: StatusReview}, true},
		{masteredItem, Filter{Status: StatusReview}, false},
		{masteredItem, Filter{Status: StatusMastered}, true},
		{newItem, Filter{Status: StatusMastered}, false},
		{newItem, Filter{Band: vocab.BandNiche, Status: StatusAll}, false},
		{masteredItem, Filter{Band: vocab.BandNiche, Status: StatusAll}, true},
		{newItem, Filter{Band: vocab.BandAll, Status: StatusAll}, true},
	}
	for i, tc := range cases {
		if got := matches(tc.item, tc.f); got != tc.want {
			t.Errorf("case %d: matches(%s, %+v) = %v, want %v", i, tc.item.Lemma, tc.f, got, tc.want)
		}
	}
}

func TestRateAdvancesAndReturnsToDashboard(t *testing.T) {
	lexicon, recorder := testLexicon(t, "alpha beta.", nil)
	s := NewSession(recorder, nil, Config{Seed: 3})

	if n := s.Start(lexicon, Filter{Band: vocab.BandAll, Status: StatusAll}); n != 2 {
		t.Fatalf("queue length = %d, want 2", n)
	}

	first, _ := s.Current()
	if _, ok := s.Rate(true); ok {
		t.Fatal("rating an unrevealed card must be refused")
	}
	<-s.Reveal(context.Background())
	stat, ok := s.Rate(true)
	if !ok {
		t.Fatal("rate refused")
	}
	if stat.Lemma != first.Lemma {
		t.Errorf("rated %q, expected current card %q", stat.Lemma, first.Lemma)
	}
	if stat.Familiarity != vocab.Seen || stat.ReviewCount != 1 {
		t.Errorf("unexpected stat after success: familiarity %d reviews %d", stat.Familiarity, stat.ReviewCount)
	}
	if stat.ExplicitScore <= 0 {
		t.Error("success rating should raise the explicit score")
	}

	<-s.Reveal(context.Background())
	if _, ok := s.Rate(false); !ok {
		t.Fatal("second rate refused")
	}
	if s.Mode() != Dashboard {
		t.Error("rating past the last card should return to the dashboard")
	}
}

func TestRevealFetchesAndCachesDefinition(t *testing.T) {
	lexicon, recorder := testLexicon(t, "mouton.", nil)
	provider := &fakeProvider{definition: "def"}
	s := NewSession(recorder, provider, Config{Seed: 3})
	s.Start(lexicon, Filter{Band: vocab.BandAll, Status: StatusAll})

	got := <-s.Reveal(context.Background())
	if got != "def:mouton" {
		t.Fatalf("revealed %q", got)
	}
	if recorder.Stats()["mouton"].Definition != "def:mouton" {
		t.Error("definition should be persisted on the stat record")
	}

	// Second session over the merged stats serves the cache, no refetch.
	lexicon = vocab.ClassifyBands(vocab.Analyze(corpus.Corpus{{ID: "t", Paragraphs: corpus.Tokenize("mouton.", "t")}}).Lexicon(recorder.Stats()))
	s.Start(lexicon, Filter{Band: vocab.BandAll, Status: StatusAll})
	if got := <-s.Reveal(context.Background()); got != "def:mouton" {
		t.Fatalf("cached reveal %q", got)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls)
	}
}

func TestRevealFailureDegradesToPlaceholder(t *testing.T) {
	lexicon, recorder := testLexicon(t, "inconnu.", nil)
	provider := &fakeProvider{err: errors.New("service down")}
	s := NewSession(recorder, provider, Config{Seed: 3})
	s.Start(lexicon, Filter{Band: vocab.BandAll, Status: StatusAll})

	if got := <-s.Reveal(context.Background()); got != Placeholder {
		t.Fatalf("revealed %q, want placeholder", got)
	}
	if recorder.Stats()["inconnu"].Definition != "" {
		t.Error("failed fetch must leave the stat uncached for retry")
	}
}

func TestSlowFetchLandsOnCorrectLemma(t *testing.T) {
	lexicon, recorder := testLexicon(t, "premier second.", nil)
	provider := &fakeProvider{definition: "def", delay: 30 * time.Millisecond}
	s := NewSession(recorder, provider, Config{Seed: 3})
	s.Start(lexicon, Filter{Band: vocab.BandAll, Status: StatusAll})

	first, _ := s.Current()
	ch := s.Reveal(context.Background())

	// Advance past the card before its definition resolves.
	s.Rate(true)

	if got := <-ch; got != "def:"+first.Lemma {
		t.Fatalf("revealed %q for lemma %q", got, first.Lemma)
	}
	if recorder.Stats()[first.Lemma].Definition != "def:"+first.Lemma {
		t.Error("stale result must still update the original lemma's record")
	}
}
