package vocab

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func newTestRecorder(t *testing.T, text string, stats map[string]VocabularyStat) *Recorder {
	t.Helper()
	r := NewRecorder(Analyze(corpusFromText(t, text)), stats)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return base }
	return r
}

func TestRecordScoreBoundsProperty(t *testing.T) {
	r := newTestRecorder(t, "le zèbre mange. le lion dort. le vent souffle.", nil)
	rng := rand.New(rand.NewSource(42))
	lemmas := []string{"le", "zèbre", "lion", "vent"}

	for i := 0; i < 500; i++ {
		lemma := lemmas[rng.Intn(len(lemmas))]
		kind := Implicit
		weight := rng.Float64() * 0.5
		if rng.Intn(2) == 0 {
			kind = Explicit
			weight = rng.Float64() - 0.5 // explicit weights may be negative
		}
		stat := r.Record(lemma, kind, weight, "occ")

		for name, v := range map[string]float64{
			"implicit": stat.ImplicitScore,
			"explicit": stat.ExplicitScore,
			"mastery":  stat.MasteryScore,
		} {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Fatalf("iteration %d: %s score %v out of [0,1]", i, name, v)
			}
		}
		want := 0.4*stat.ImplicitScore + 0.6*stat.ExplicitScore
		if stat.MasteryScore != want {
			t.Fatalf("mastery %v != composite %v", stat.MasteryScore, want)
		}
	}
}

func TestRecordNegativeExplicitWeight(t *testing.T) {
	r := newTestRecorder(t, "the the the the the zebra.", nil)

	if RelativeDifficulty(r.analysis.ByLemma["zebra"].Count) <= RelativeDifficulty(r.analysis.ByLemma["the"].Count) {
		t.Fatal("zebra must be relatively harder than the")
	}

	before := r.Record("zebra", Explicit, 0.3, "occ-1").ExplicitScore
	after := r.Record("zebra", Explicit, -0.1, "occ-2").ExplicitScore
	if after >= before {
		t.Errorf("negative explicit weight should lower the score: %v -> %v", before, after)
	}
	if after < 0 {
		t.Errorf("explicit score clamped below zero: %v", after)
	}

	// A large negative weight clamps to exactly zero, never below.
	if got := r.Record("zebra", Explicit, -100, "occ-3").ExplicitScore; got != 0 {
		t.Errorf("explicit score = %v, want 0", got)
	}
}

func TestRecordSynthesizesMissingLemma(t *testing.T) {
	r := newTestRecorder(t, "un mot seul.", nil)

	stat := r.Record("absent", Explicit, 0.2, "deck-review")
	if stat.Lemma != "absent" {
		t.Fatalf("unexpected lemma %q", stat.Lemma)
	}
	if stat.TotalOccurrences != 1 {
		t.Errorf("synthesized TotalOccurrences = %d, want 1", stat.TotalOccurrences)
	}
	if len(stat.Interactions) != 1 {
		t.Errorf("interaction log length = %d, want 1", len(stat.Interactions))
	}
	if _, ok := r.Stats()["absent"]; !ok {
		t.Error("stat map should hold the synthesized record")
	}
}

func TestRecordAppendsInteractionLog(t *testing.T) {
	r := newTestRecorder(t, "mot mot.", nil)
	r.Record("mot", Implicit, 0.05, "test-p0-s0-w0")
	stat := r.Record("mot", Explicit, 0.5, "test-p0-s0-w1")

	if len(stat.Interactions) != 2 {
		t.Fatalf("interaction log length = %d, want 2", len(stat.Interactions))
	}
	if stat.Interactions[0].Kind != Implicit || stat.Interactions[1].Kind != Explicit {
		t.Error("interaction log should preserve append order")
	}
	if stat.LastEncounterDate.IsZero() {
		t.Error("LastEncounterDate should be set")
	}
}

func TestSetDefinitionOnce(t *testing.T) {
	r := newTestRecorder(t, "mouton.", nil)
	first := r.SetDefinition("mouton", "a sheep")
	if first.Definition != "a sheep" {
		t.Fatalf("definition = %q", first.Definition)
	}
	second := r.SetDefinition("mouton", "something else")
	if second.Definition != "a sheep" {
		t.Errorf("definition overwritten to %q; should be set once", second.Definition)
	}
}

func TestAdvanceLadder(t *testing.T) {
	r := newTestRecorder(t, "mot.", nil)

	// Five successes in a row: Unknown->Seen->Familiar->Mastered, then saturate.
	want := []Familiarity{Seen, Familiar, Mastered, Mastered, Mastered}
	for i, w := range want {
		if got := r.Advance("mot", true).Familiarity; got != w {
			t.Fatalf("success %d: familiarity = %d, want %d", i+1, got, w)
		}
	}
	if got := r.Stats()["mot"].ReviewCount; got != 5 {
		t.Errorf("ReviewCount = %d, want 5", got)
	}

	// A failure from Mastered drops all the way back to Seen.
	if got := r.Advance("mot", false).Familiarity; got != Seen {
		t.Errorf("failure from Mastered: familiarity = %d, want Seen", got)
	}
	// A failure at or below Seen stays put.
	if got := r.Advance("mot", false).Familiarity; got != Seen {
		t.Errorf("failure at Seen: familiarity = %d, want Seen", got)
	}
}
