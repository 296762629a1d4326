package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/japaniel/margin/pkg/store"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := store.InitDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestIngestPersistsDocumentsInOrder(t *testing.T) {
	db := setupTestDB(t)
	ig := NewIngester(db)
	ig.Workers = 3

	docs := make([]RawDocument, 12)
	for i := range docs {
		docs[i] = RawDocument{
			ID:      fmt.Sprintf("doc-%02d", i),
			Title:   fmt.Sprintf("Document %d", i),
			Content: "un deux trois. quatre cinq.",
		}
	}

	var progressCalls int32
	ig.OnProgress = func(current, total int) { atomic.AddInt32(&progressCalls, 1) }

	tokens, err := ig.Ingest(context.Background(), docs)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if tokens != 12*5 {
		t.Errorf("token count = %d, want %d", tokens, 12*5)
	}
	if atomic.LoadInt32(&progressCalls) != 12 {
		t.Errorf("progress calls = %d, want 12", progressCalls)
	}

	listed, err := store.ListDocuments(db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 12 {
		t.Fatalf("stored %d documents, want 12", len(listed))
	}

	c, err := store.LoadCorpus(db)
	if err != nil {
		t.Fatalf("load corpus: %v", err)
	}
	if got := c.TotalTokens(); got != 60 {
		t.Errorf("corpus tokens = %d, want 60", got)
	}
}

func TestIngestEmptyInput(t *testing.T) {
	ig := NewIngester(setupTestDB(t))
	tokens, err := ig.Ingest(context.Background(), nil)
	if err != nil || tokens != 0 {
		t.Fatalf("empty ingest = (%d, %v), want (0, nil)", tokens, err)
	}
}

func TestIngestCanceledContext(t *testing.T) {
	ig := NewIngester(setupTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ig.Ingest(ctx, []RawDocument{{ID: "d1", Content: "mot."}})
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestWorkerPoolRejectsAfterClose(t *testing.T) {
	p := NewWorkerPool(2, 2)
	p.Start(context.Background())
	p.Close()
	if err := p.Submit(context.Background(), func(context.Context) {}); err != ErrPoolClosed {
		t.Fatalf("err = %v, want ErrPoolClosed", err)
	}
}

func TestBatchWriterFlushesOnCapAndClose(t *testing.T) {
	bw := NewBatchWriter(nil, 3)
	var ran int
	write := func(ctx context.Context, tx *sql.Tx) error { ran++; return nil }

	for i := 0; i < 4; i++ {
		if err := bw.Submit(context.Background(), write); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if ran != 3 {
		t.Errorf("after 4 submits with cap 3, ran = %d, want 3", ran)
	}
	if err := bw.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if ran != 4 {
		t.Errorf("after close, ran = %d, want 4", ran)
	}
	if err := bw.Submit(context.Background(), write); err != ErrBatchWriterClosed {
		t.Fatalf("submit after close = %v, want ErrBatchWriterClosed", err)
	}
}
