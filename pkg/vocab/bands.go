package vocab

import "math"

// Band is a rank-percentile frequency tier.
type Band string

const (
	BandCore      Band = "core"
	BandEssential Band = "essential"
	BandNiche     Band = "niche"
	BandAll       Band = "all"
)

// BandedItem is a lexicon item tagged with its frequency band and rank.
type BandedItem struct {
	LexiconItem
	Band Band
	Rank int // 0-based position in count-descending order
}

// ClassifyBands partitions a count-descending lexicon by rank index: the
// top ceil(0.15N) entries are core, entries through ceil(0.60N) are
// essential, the remainder niche. Partitioning by rank rather than raw
// count keeps the bands stable regardless of corpus scale. The input
// must already be frequency-sorted; re-sorting by another key first
// would change the bands.
func ClassifyBands(lexicon []LexiconItem) []BandedItem {
	n := len(lexicon)
	coreEnd := int(math.Ceil(0.15 * float64(n)))
	essentialEnd := int(math.Ceil(0.60 * float64(n)))

	out := make([]BandedItem, n)
	for i, item := range lexicon {
		band := BandNiche
		switch {
		case i < coreEnd:
			band = BandCore
		case i < essentialEnd:
			band = BandEssential
		}
		out[i] = BandedItem{LexiconItem: item, Band: band, Rank: i}
	}
	return out
}
