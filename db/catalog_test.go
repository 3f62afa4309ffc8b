package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func testCatalog(t *testing.T) *DocumentCatalog {
	t.Helper()
	catalog, err := OpenDocumentCatalog(filepath.Join(t.TempDir(), "docqa.db"), testLogger())
	if err != nil {
		t.Fatalf("OpenDocumentCatalog: %v", err)
	}
	t.Cleanup(func() { catalog.Close() })
	return catalog
}

func TestCatalogRecordAndLookup(t *testing.T) {
	catalog := testCatalog(t)
	ctx := context.Background()

	mtime := time.Date(2025, 6, 1, 10, 30, 0, 123456789, time.UTC)
	if err := catalog.RecordIngested(ctx, "report.pdf", mtime, "indexed"); err != nil {
		t.Fatalf("RecordIngested: %v", err)
	}

	got, known, err := catalog.LastIngested(ctx, "report.pdf")
	if err != nil {
		t.Fatalf("LastIngested: %v", err)
	}
	if !known {
		t.Fatal("document not found after recording")
	}
	if !got.Equal(mtime) {
		t.Errorf("mtime = %v, want %v", got, mtime)
	}
}

func TestCatalogUnknownDocument(t *testing.T) {
	catalog := testCatalog(t)

	_, known, err := catalog.LastIngested(context.Background(), "never-seen.pdf")
	if err != nil {
		t.Fatalf("LastIngested: %v", err)
	}
	if known {
		t.Error("unknown document reported as known")
	}
}

func TestCatalogRecordOverwrites(t *testing.T) {
	catalog := testCatalog(t)
	ctx := context.Background()

	first := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	if err := catalog.RecordIngested(ctx, "report.pdf", first, "failed"); err != nil {
		t.Fatalf("RecordIngested: %v", err)
	}
	if err := catalog.RecordIngested(ctx, "report.pdf", second, "indexed"); err != nil {
		t.Fatalf("RecordIngested: %v", err)
	}

	got, known, err := catalog.LastIngested(ctx, "report.pdf")
	if err != nil {
		t.Fatalf("LastIngested: %v", err)
	}
	if !known || !got.Equal(second) {
		t.Errorf("mtime = %v (known=%v), want %v", got, known, second)
	}
}

func TestCatalogPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docqa.db")
	catalog, err := OpenDocumentCatalog(path, testLogger())
	if err != nil {
		t.Fatalf("OpenDocumentCatalog: %v", err)
	}

	mtime := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if err := catalog.RecordIngested(context.Background(), "report.pdf", mtime, "indexed"); err != nil {
		t.Fatalf("RecordIngested: %v", err)
	}
	if err := catalog.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenDocumentCatalog(path, testLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, known, err := reopened.LastIngested(context.Background(), "report.pdf")
	if err != nil {
		t.Fatalf("LastIngested: %v", err)
	}
	if !known || !got.Equal(mtime) {
		t.Errorf("mtime = %v (known=%v) after reopen", got, known)
	}
}
