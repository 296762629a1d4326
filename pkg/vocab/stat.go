package vocab

import (
	"math"
	"time"
)

// InteractionKind distinguishes passive exposure from deliberate study.
type InteractionKind string

const (
	// Implicit marks a passive signal, e.g. the containing sentence was read.
	Implicit InteractionKind = "implicit"
	// Explicit marks an active signal, e.g. a lookup or a flashcard rating.
	Explicit InteractionKind = "explicit"
)

// Familiarity is the discrete 4-level ladder used by flashcard
// scheduling. It is independent of the continuous mastery score.
type Familiarity int

const (
	Unknown Familiarity = iota
	Seen
	Familiar
	Mastered
)

func (f Familiarity) String() string {
	switch f {
	case Seen:
		return "seen"
	case Familiar:
		return "familiar"
	case Mastered:
		return "mastered"
	default:
		return "unknown"
	}
}

// MemoryInteraction is one entry of a lemma's append-only interaction log.
type MemoryInteraction struct {
	Timestamp    time.Time
	OccurrenceID string
	Kind         InteractionKind
	Weight       float64
}

// VocabularyStat is the durable acquisition state of a single lemma.
// It is created lazily on first interaction and never deleted.
type VocabularyStat struct {
	Lemma            string
	TotalOccurrences int
	// RelativeDifficulty is a fixed damping factor: rarer words get a
	// larger factor, so a single encounter moves their score further.
	RelativeDifficulty float64
	// FirstDiscoveryProgress is the fractional corpus position (0..1) of
	// the lemma's first occurrence.
	FirstDiscoveryProgress float64

	ImplicitScore float64
	ExplicitScore float64
	// MasteryScore is derived, never set directly:
	// 0.4*ImplicitScore + 0.6*ExplicitScore.
	MasteryScore float64

	Familiarity Familiarity
	ReviewCount int

	Interactions []MemoryInteraction

	Definition        string
	LastEncounterDate time.Time
}

// RelativeDifficulty computes the per-lemma damping factor
// 1/ln(occurrences+1.1). The 1.1 offset keeps the logarithm positive
// even for a zero count.
func RelativeDifficulty(occurrences int) float64 {
	return 1 / math.Log(float64(occurrences)+1.1)
}

// recompose derives the composite score. Explicit evidence is weighted
// higher than incidental exposure.
func (s *VocabularyStat) recompose() {
	s.MasteryScore = 0.4*s.ImplicitScore + 0.6*s.ExplicitScore
}
