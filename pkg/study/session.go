// Package study implements the flashcard session selector: a small state
// machine that filters the banded lexicon into a bounded shuffled queue
// and advances a discrete familiarity ladder per card outcome.
package study

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/japaniel/margin/pkg/vocab"
)

// Status filters cards by their position on the familiarity ladder.
type Status string

const (
	StatusNew      Status = "new"
	StatusReview   Status = "review"
	StatusMastered Status = "mastered"
	StatusAll      Status = "all"
)

// Filter is the transient selection criteria for a session.
type Filter struct {
	Band   vocab.Band
	Status Status
}

// Mode is the session state: idle on the dashboard, or iterating a queue.
type Mode int

const (
	Dashboard Mode = iota
	Study
)

// Explicit interaction weights applied by card ratings. A failed review
// is mild evidence of not knowing the word, so its weight is negative.
const (
	successWeight = 0.5
	failureWeight = -0.1
)

// Placeholder is shown when the definition provider fails; the stat
// record is left uncached so the fetch is retried on the next reveal.
const Placeholder = "definition unavailable"

// DefinitionProvider resolves a learner definition for a lemma. Backed
// by an external service; calls may be slow or fail.
type DefinitionProvider interface {
	Fetch(ctx context.Context, lemma, language string) (string, error)
}

// Card is one queued lexicon entry plus its per-session orientation.
type Card struct {
	vocab.BandedItem
	Revealed bool
}

// Config carries session tuning. Zero values fall back to defaults.
type Config struct {
	QueueCap     int           // max cards per session, default 10
	FetchTimeout time.Duration // cap on a single definition fetch, default 15s
	Language     string        // hint passed to the definition provider
	Seed         int64         // shuffle seed, 0 means time-based
}

// Session drives one user's flashcard reviews. All stat mutations funnel
// through the shared Recorder under a single mutex, so a definition
// arriving after the user has advanced still lands on the right lemma.
type Session struct {
	recorder *vocab.Recorder
	provider DefinitionProvider
	cfg      Config
	rng      *rand.Rand

	mu     sync.Mutex
	mode   Mode
	queue  []Card
	cursor int
}

// NewSession wires a session to the recorder that owns the persisted
// stat map. provider may be nil; reveals then degrade to the placeholder.
func NewSession(recorder *vocab.Recorder, provider DefinitionProvider, cfg Config) *Session {
	if cfg.QueueCap <= 0 {
		cfg.QueueCap = 10
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Session{
		recorder: recorder,
		provider: provider,
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Mode reports whether the session is on the dashboard or studying.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func matches(item vocab.BandedItem, f Filter) bool {
	if f.Band != "" && f.Band != vocab.BandAll && item.Band != f.Band {
		return false
	}
	switch f.Status {
	case StatusNew:
		return item.ReviewCount == 0 && item.Familiarity <= vocab.Seen
	case StatusReview:
		return item.ReviewCount > 0 && item.Familiarity < vocab.Mastered
	case StatusMastered:
		return item.Familiarity == vocab.Mastered
	default:
		return true
	}
}

// Start filters the banded lexicon, shuffles the matches and takes up to
// the queue cap. An empty filtered set refuses the session: the mode
// stays Dashboard and the returned queue length is 0.
func (s *Session) Start(lexicon []vocab.BandedItem, f Filter) int {
	var picked []Card
	for _, item := range lexicon {
		if matches(item, f) {
			picked = append(picked, Card{BandedItem: item})
		}
	}
	s.rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	if len(picked) > s.cfg.QueueCap {
		picked = picked[:s.cfg.QueueCap]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = picked
	s.cursor = 0
	if len(picked) == 0 {
		s.mode = Dashboard
	} else {
		s.mode = Study
	}
	return len(picked)
}

// Current returns the card under the cursor. ok is false on the
// dashboard or once the queue is exhausted.
func (s *Session) Current() (Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != Study || s.cursor >= len(s.queue) {
		return Card{}, false
	}
	return s.queue[s.cursor], true
}

// Progress reports the 1-based cursor position and queue length.
func (s *Session) Progress() (current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor + 1, len(s.queue)
}

// Reveal flips the current card to its definition side. The resolved
// text (cached, freshly fetched, or the failure placeholder) is
// delivered on the returned channel. A fetched definition is written
// back to the lemma's stat record even if the session has moved on by
// the time it resolves; a failed fetch leaves the record uncached so it
// is retried next time.
func (s *Session) Reveal(ctx context.Context) <-chan string {
	out := make(chan string, 1)

	s.mu.Lock()
	if s.mode != Study || s.cursor >= len(s.queue) {
		s.mu.Unlock()
		out <- Placeholder
		return out
	}
	s.queue[s.cursor].Revealed = true
	lemma := s.queue[s.cursor].Lemma
	cached := s.queue[s.cursor].Definition
	s.mu.Unlock()

	if cached != "" {
		out <- cached
		return out
	}
	if s.provider == nil {
		out <- Placeholder
		return out
	}

	go func() {
		fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
		text, err := s.provider.Fetch(fetchCtx, lemma, s.cfg.Language)
		if err != nil || text == "" {
			out <- Placeholder
			return
		}
		s.mu.Lock()
		s.recorder.SetDefinition(lemma, text)
		s.mu.Unlock()
		out <- text
	}()
	return out
}

// Rate records the card outcome and moves to the next card. A card must
// be revealed before it can be rated; rating the prompt side is refused.
// Success climbs the familiarity ladder one rung; failure drops anything
// above Seen back to Seen. The rating also flows through the mastery
// scorer as an explicit interaction. Rating past the last card returns
// the session to the dashboard.
func (s *Session) Rate(success bool) (vocab.VocabularyStat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != Study || s.cursor >= len(s.queue) || !s.queue[s.cursor].Revealed {
		return vocab.VocabularyStat{}, false
	}
	lemma := s.queue[s.cursor].Lemma

	weight := successWeight
	if !success {
		weight = failureWeight
	}
	s.recorder.Record(lemma, vocab.Explicit, weight, "deck-review")
	stat := s.recorder.Advance(lemma, success)

	s.cursor++
	if s.cursor >= len(s.queue) {
		s.mode = Dashboard
	}
	return stat, true
}

// Exit abandons the queue and returns to the dashboard.
func (s *Session) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = Dashboard
	s.queue = nil
	s.cursor = 0
}
