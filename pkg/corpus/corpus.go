package corpus

// WordOccurrence is a single physical appearance of a word inside a
// sentence. It is immutable once tokenized and owned by exactly one
// sentence.
type WordOccurrence struct {
	ID    string // stable position-derived id, e.g. "doc-p0-s1-w3"
	Text  string // surface text as it appears
	Lemma string // normalized aggregation key
	POS   string // part-of-speech placeholder, always "unknown" for now
}

// Sentence is an ordered sequence of word occurrences.
type Sentence struct {
	ID     string
	Text   string
	Tokens []WordOccurrence
}

// ParagraphKind is a coarse layout hint used by readers.
type ParagraphKind string

const (
	Prose    ParagraphKind = "prose"
	Dialogue ParagraphKind = "dialogue"
	Poetry   ParagraphKind = "poetry"
)

// Paragraph groups sentences under a layout hint.
type Paragraph struct {
	ID        string
	Kind      ParagraphKind
	Sentences []Sentence
}

// Document is a single imported text (article, book chapter, file).
type Document struct {
	ID         string
	Title      string
	Author     string
	Language   string
	Paragraphs []Paragraph
}

// Corpus is the ordered list of documents the user is reading.
type Corpus []Document

// EachOccurrence walks every token of the corpus in reading order.
// The callback receives the 1-based running token position.
func (c Corpus) EachOccurrence(fn func(pos int, occ WordOccurrence, sentence Sentence)) {
	pos := 0
	for _, doc := range c {
		for _, p := range doc.Paragraphs {
			for _, s := range p.Sentences {
				for _, t := range s.Tokens {
					pos++
					fn(pos, t, s)
				}
			}
		}
	}
}

// TotalTokens counts every word occurrence across the corpus.
func (c Corpus) TotalTokens() int {
	n := 0
	c.EachOccurrence(func(int, WordOccurrence, Sentence) { n++ })
	return n
}
