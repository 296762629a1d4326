package vocab

import (
	"fmt"
	"testing"
)

func syntheticLexicon(n int) []LexiconItem {
	items := make([]LexiconItem, n)
	for i := range items {
		items[i] = LexiconItem{
			VocabularyStat: VocabularyStat{Lemma: fmt.Sprintf("w%03d", i)},
			Count:          n - i,
		}
	}
	return items
}

func TestClassifyBandsPartitionExhaustive(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7, 10, 100, 333} {
		banded := ClassifyBands(syntheticLexicon(n))
		if len(banded) != n {
			t.Fatalf("n=%d: lost items, got %d", n, len(banded))
		}
		counts := map[Band]int{}
		for _, b := range banded {
			counts[b.Band]++
		}
		if counts[BandCore]+counts[BandEssential]+counts[BandNiche] != n {
			t.Errorf("n=%d: bands do not partition the lexicon: %v", n, counts)
		}
	}
}

func TestClassifyBandsCutoffs(t *testing.T) {
	banded := ClassifyBands(syntheticLexicon(100))

	// ceil(0.15*100)=15 core, through ceil(0.60*100)=60 essential, rest niche.
	if banded[0].Band != BandCore || banded[14].Band != BandCore {
		t.Error("first 15 entries should be core")
	}
	if banded[15].Band != BandEssential || banded[59].Band != BandEssential {
		t.Error("entries 16..60 should be essential")
	}
	if banded[60].Band != BandNiche || banded[99].Band != BandNiche {
		t.Error("remaining entries should be niche")
	}
}

func TestClassifyBandsRankOnly(t *testing.T) {
	a := syntheticLexicon(20)
	b := syntheticLexicon(20)
	for i := range b {
		b[i].Lemma = fmt.Sprintf("autre%03d", i)
	}
	ba, bb := ClassifyBands(a), ClassifyBands(b)
	for i := range ba {
		if ba[i].Band != bb[i].Band {
			t.Fatalf("band assignment at rank %d depends on lemma identity", i)
		}
		if ba[i].Rank != i {
			t.Fatalf("rank %d recorded as %d", i, ba[i].Rank)
		}
	}
}
