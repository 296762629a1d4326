// Package ingest imports raw documents into the corpus store: worker
// goroutines tokenize document text concurrently while a single consumer
// persists the results in original order through batched transactions.
package ingest

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/japaniel/margin/pkg/corpus"
	"github.com/japaniel/margin/pkg/store"
)

// RawDocument is an unprocessed import candidate.
type RawDocument struct {
	ID        string
	Title     string
	Author    string
	Language  string
	SourceURL string
	Content   string
}

// Ingester tokenizes and persists documents.
type Ingester struct {
	DB        *sql.DB
	BatchSize int
	Workers   int
	// Logger is used for informational messages. nil means no logging.
	Logger *log.Logger
	// OnProgress is called after each persisted document with the number
	// of processed documents and the total.
	OnProgress func(current, total int)
}

// NewIngester creates an Ingester with default batching and concurrency.
func NewIngester(db *sql.DB) *Ingester {
	return &Ingester{
		DB:        db,
		BatchSize: 25,
		Workers:   4,
	}
}

// tokenized is the result of processing one document before persistence.
type tokenized struct {
	Index  int
	Doc    store.Document
	Tokens int
}

// Ingest tokenizes every document concurrently and writes them to the
// store in input order. It returns the total number of word occurrences
// imported. A canceled context stops the pipeline; documents already
// committed stay committed.
func (ig *Ingester) Ingest(ctx context.Context, docs []RawDocument) (int, error) {
	total := len(docs)
	if total == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := NewWorkerPool(ig.Workers, ig.Workers*2)
	pool.Start(ctx)
	resultCh := make(chan tokenized, ig.Workers*2)

	bw := NewBatchWriter(ig.DB, ig.BatchSize)
	doneCh := make(chan error, 1)

	totalTokens := 0
	go func() {
		defer close(doneCh)
		buffer := make(map[int]tokenized)
		next := 0
		for res := range resultCh {
			buffer[res.Index] = res
			for {
				item, ok := buffer[next]
				if !ok {
					break
				}
				delete(buffer, next)

				doc := item.Doc
				err := bw.Submit(ctx, func(ctx context.Context, tx *sql.Tx) error {
					return store.SaveDocument(tx, doc)
				})
				if err != nil {
					cancel()
					doneCh <- err
					return
				}
				totalTokens += item.Tokens
				next++
				if ig.OnProgress != nil {
					ig.OnProgress(next, total)
				}
			}
		}
		doneCh <- nil
	}()

	var submitErr error
	for i, raw := range docs {
		idx, doc := i, raw
		err := pool.Submit(ctx, func(ctx context.Context) {
			res := ig.process(idx, doc)
			select {
			case resultCh <- res:
			case <-ctx.Done():
			}
		})
		if err != nil {
			submitErr = err
			break
		}
	}

	pool.Close()
	close(resultCh)
	consumerErr := <-doneCh

	if err := bw.Close(context.Background()); err != nil && consumerErr == nil {
		consumerErr = err
	}
	if consumerErr == nil && submitErr != nil && submitErr != ErrPoolClosed {
		consumerErr = submitErr
	}
	if consumerErr == nil {
		if err := ctx.Err(); err != nil {
			consumerErr = err
		}
	}

	return totalTokens, consumerErr
}

// process performs the CPU-bound tokenization for one document.
func (ig *Ingester) process(index int, raw RawDocument) tokenized {
	paragraphs := corpus.Tokenize(raw.Content, raw.ID)
	doc := corpus.Document{ID: raw.ID, Paragraphs: paragraphs}
	tokens := corpus.Corpus{doc}.TotalTokens()

	if ig.Logger != nil {
		ig.Logger.Printf("tokenized %q: %d paragraphs, %d tokens", raw.Title, len(paragraphs), tokens)
	}
	return tokenized{
		Index: index,
		Doc: store.Document{
			ID:        raw.ID,
			Title:     raw.Title,
			Author:    raw.Author,
			Language:  raw.Language,
			SourceURL: raw.SourceURL,
			Content:   raw.Content,
			AddedAt:   time.Now(),
		},
		Tokens: tokens,
	}
}
