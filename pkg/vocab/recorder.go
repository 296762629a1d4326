package vocab

import (
	"math"
	"time"
)

// Recorder applies interaction events to the persisted stat map. It is
// the only mutator of VocabularyStat records. State transitions replace
// whole records; a single logical user session drives all recording, so
// no locking is needed.
type Recorder struct {
	analysis *Analysis
	stats    map[string]VocabularyStat

	// now is swappable for tests.
	now func() time.Time
}

// NewRecorder wraps a stat map with the current corpus analysis. The map
// is mutated in place; callers persist it wholesale when done.
func NewRecorder(analysis *Analysis, stats map[string]VocabularyStat) *Recorder {
	if stats == nil {
		stats = make(map[string]VocabularyStat)
	}
	return &Recorder{analysis: analysis, stats: stats, now: time.Now}
}

// Stats exposes the underlying stat map for persistence.
func (r *Recorder) Stats() map[string]VocabularyStat { return r.stats }

// Record applies one interaction to the lemma's stat and returns the
// updated record. Missing lemmas are synthesized, never rejected; the
// call cannot fail.
//
// Implicit weights represent passive reinforcement and are expected
// non-negative, so only the upper bound is clamped. Explicit weights may
// be negative (a lookup is evidence of not knowing the word), so the
// explicit accumulator is clamped on both ends.
func (r *Recorder) Record(lemma string, kind InteractionKind, weight float64, occurrenceID string) VocabularyStat {
	now := r.now()
	stat := r.analysis.getOrCreate(r.stats, lemma)

	stat.Interactions = append(stat.Interactions, MemoryInteraction{
		Timestamp:    now,
		OccurrenceID: occurrenceID,
		Kind:         kind,
		Weight:       weight,
	})

	delta := weight * stat.RelativeDifficulty
	if kind == Implicit {
		stat.ImplicitScore = math.Min(1, stat.ImplicitScore+delta)
	} else {
		stat.ExplicitScore = math.Min(1, math.Max(0, stat.ExplicitScore+delta))
	}
	stat.recompose()
	stat.LastEncounterDate = now

	r.stats[lemma] = stat
	return stat
}

// SetDefinition caches a fetched definition on the lemma's stat. A
// definition is set once and reused thereafter; later calls with a
// different text are ignored.
func (r *Recorder) SetDefinition(lemma, definition string) VocabularyStat {
	stat := r.analysis.getOrCreate(r.stats, lemma)
	if stat.Definition == "" && definition != "" {
		stat.Definition = definition
		r.stats[lemma] = stat
	}
	return stat
}

// Advance moves the lemma's familiarity ladder after a flashcard rating
// and bumps its review count. Success climbs one rung, saturating at
// Mastered. Failure drops anything above Seen back to Seen.
func (r *Recorder) Advance(lemma string, success bool) VocabularyStat {
	stat := r.analysis.getOrCreate(r.stats, lemma)
	if success {
		if stat.Familiarity < Mastered {
			stat.Familiarity++
		}
	} else if stat.Familiarity > Seen {
		stat.Familiarity = Seen
	}
	stat.ReviewCount++
	stat.LastEncounterDate = r.now()
	r.stats[lemma] = stat
	return stat
}
