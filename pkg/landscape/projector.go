// Package landscape maps the lexicon into 2-D visualization space: word
// particles, the cumulative discovery curve, and rank-based zones. All
// output is derived and read-only; projecting never mutates stats.
package landscape

import (
	"math"
	"sort"

	"github.com/japaniel/margin/pkg/vocab"
)

// View selects the coordinate mapping.
type View string

const (
	// ViewContent answers "how fast does new vocabulary appear while
	// reading linearly": x is discovery progress, y the cumulative
	// fraction of unique lemmas discovered by that point.
	ViewContent View = "content"
	// ViewMemory answers "how well is each frequency tier retained":
	// x is frequency rank, y the mastery score.
	ViewMemory View = "memory"
	// ViewReality is the composite map: memory coordinates with a 3-way
	// visual class blending discovery state and mastery.
	ViewReality View = "reality"
)

// VisualClass is the 3-way coloring used by the reality view.
type VisualClass string

const (
	ClassUndiscovered VisualClass = "undiscovered"
	ClassLearning     VisualClass = "learning"
	ClassMastered     VisualClass = "mastered"
)

// masteredThreshold separates discovered-learning from
// discovered-mastered in the reality view.
const masteredThreshold = 0.7

// Zone names follow the terrain metaphor of the visualization. The cut
// points (25%/70%) differ from the study band classifier on purpose; the
// two partitions serve different consumers.
type Zone string

const (
	ZoneCore    Zone = "core"
	ZoneSlopes  Zone = "slopes"
	ZoneCanyons Zone = "canyons"
)

// Particle is one lexicon item placed in plot space. Coordinates and
// opacity are normalized to [0,1].
type Particle struct {
	Lemma      string
	Count      int
	X, Y       float64
	Opacity    float64
	Size       float64
	Class      VisualClass
	Discovered bool
	// FreqRank is the item's position in count-descending order,
	// normalized to [0,1). DiscoveryRank is the position in
	// first-discovery order, normalized to (0,1].
	FreqRank      float64
	DiscoveryRank float64
}

// CurvePoint is one step of the cumulative discovery ("climbing") curve.
type CurvePoint struct {
	X, Y float64
}

// PlotModel is the full projection output for one view.
type PlotModel struct {
	View      View
	Particles []Particle
	// Curve is the cumulative discovery curve; only the content view
	// renders it but it is always computed.
	Curve []CurvePoint
	// Zones partitions the particles by frequency rank, independent of
	// the view.
	Zones map[Zone][]Particle
	// Discovered counts particles at or before the simulated progress.
	Discovered int
}

// Project places every lexicon item into the requested view's plot
// space. simulatedProgress is a hypothetical reading cursor in [0,1],
// independent of real reading progress, used for what-if exploration.
func Project(lexicon []vocab.LexiconItem, view View, simulatedProgress float64) PlotModel {
	total := len(lexicon)
	model := PlotModel{
		View:  view,
		Zones: map[Zone][]Particle{ZoneCore: {}, ZoneSlopes: {}, ZoneCanyons: {}},
	}
	if total == 0 {
		return model
	}

	byDiscovery := make([]vocab.LexiconItem, total)
	copy(byDiscovery, lexicon)
	sort.SliceStable(byDiscovery, func(i, j int) bool {
		return byDiscovery[i].FirstDiscoveryProgress < byDiscovery[j].FirstDiscoveryProgress
	})
	byFrequency := make([]vocab.LexiconItem, total)
	copy(byFrequency, lexicon)
	sort.SliceStable(byFrequency, func(i, j int) bool {
		return byFrequency[i].Count > byFrequency[j].Count
	})

	discoveryIdx := make(map[string]int, total)
	for i, item := range byDiscovery {
		discoveryIdx[item.Lemma] = i
	}
	freqIdx := make(map[string]int, total)
	for i, item := range byFrequency {
		freqIdx[item.Lemma] = i
	}

	model.Curve = make([]CurvePoint, total)
	for i, item := range byDiscovery {
		model.Curve[i] = CurvePoint{
			X: item.FirstDiscoveryProgress,
			Y: float64(i+1) / float64(total),
		}
	}

	model.Particles = make([]Particle, total)
	for i, item := range lexicon {
		discovered := item.FirstDiscoveryProgress <= simulatedProgress
		freqRank := float64(freqIdx[item.Lemma]) / float64(total)
		discoveryRank := float64(discoveryIdx[item.Lemma]+1) / float64(total)

		p := Particle{
			Lemma:         item.Lemma,
			Count:         item.Count,
			Size:          math.Log(float64(item.Count)+1.2)*2.5 + 1.5,
			Discovered:    discovered,
			FreqRank:      freqRank,
			DiscoveryRank: discoveryRank,
		}

		switch {
		case item.MasteryScore > masteredThreshold:
			p.Class = ClassMastered
		case discovered:
			p.Class = ClassLearning
		default:
			p.Class = ClassUndiscovered
		}

		switch view {
		case ViewContent:
			p.X = item.FirstDiscoveryProgress
			p.Y = discoveryRank
			if discovered {
				p.Opacity = 0.9
			} else {
				p.Opacity = 0.15
			}
		case ViewMemory:
			p.X = freqRank
			p.Y = item.MasteryScore
			p.Opacity = item.MasteryScore*0.9 + 0.1
		default: // reality
			p.X = freqRank
			p.Y = item.MasteryScore
			if discovered {
				p.Opacity = 0.9
			} else {
				p.Opacity = 0.05
			}
		}

		if discovered {
			model.Discovered++
		}
		model.Particles[i] = p

		switch {
		case freqRank < 0.25:
			model.Zones[ZoneCore] = append(model.Zones[ZoneCore], p)
		case freqRank < 0.70:
			model.Zones[ZoneSlopes] = append(model.Zones[ZoneSlopes], p)
		default:
			model.Zones[ZoneCanyons] = append(model.Zones[ZoneCanyons], p)
		}
	}

	return model
}
