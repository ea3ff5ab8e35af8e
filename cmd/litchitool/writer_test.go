package main

import (
	"path/filepath"
	"testing"

	"github.com/VolaTeQ/litchitool/internal/history"
)

func TestNewHistoryWriterDefault(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	w, cleanup, err := newHistoryWriter("", false)
	if err != nil {
		t.Fatalf("newHistoryWriter returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(history.Discard); !ok {
		t.Fatalf("expected history.Discard, got %T", w)
	}
}

func TestNewHistoryWriterPrint(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	w, cleanup, err := newHistoryWriter("", true)
	if err != nil {
		t.Fatalf("newHistoryWriter returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*history.JSONWriter); !ok {
		t.Fatalf("expected *history.JSONWriter, got %T", w)
	}
}

func TestNewHistoryWriterFile(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	path := filepath.Join(t.TempDir(), "history.jsonl")

	w, cleanup, err := newHistoryWriter(path, false)
	if err != nil {
		t.Fatalf("newHistoryWriter returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*history.FileWriter); !ok {
		t.Fatalf("expected *history.FileWriter, got %T", w)
	}

	w, cleanup, err = newHistoryWriter(path, true)
	if err != nil {
		t.Fatalf("newHistoryWriter returned error: %v", err)
	}
	defer cleanup()
	mw, ok := w.(*history.MultiWriter)
	if !ok {
		t.Fatalf("expected *history.MultiWriter, got %T", w)
	}
	if mw.Len() != 2 {
		t.Fatalf("expected 2 writers, got %d", mw.Len())
	}
}

func TestNewHistoryWriterBadPath(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	if _, _, err := newHistoryWriter(filepath.Join(t.TempDir(), "missing", "h.jsonl"), false); err == nil {
		t.Fatal("expected error for unwritable history path")
	}
}
