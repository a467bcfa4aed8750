package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"invoicer/internal/kv"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, found, err := s.Get(ctx, "invoices"); found || err != nil {
		t.Fatalf("expected missing key, found=%v err=%v", found, err)
	}

	val := []byte(`[1,2]`)
	if err := s.Set(ctx, "invoices", val); err != nil {
		t.Fatalf("set: %v", err)
	}
	val[0] = 'x' // caller mutation must not leak into the store

	got, found, err := s.Get(ctx, "invoices")
	if err != nil || !found || string(got) != `[1,2]` {
		t.Fatalf("unexpected get: %q found=%v err=%v", got, found, err)
	}
	got[0] = 'y'
	again, _, _ := s.Get(ctx, "invoices")
	if string(again) != `[1,2]` {
		t.Fatalf("returned slice aliases store: %q", again)
	}
	if s.Len() != 1 {
		t.Fatalf("keys=%d", s.Len())
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	s := New()
	_ = s.Close()
	if err := s.Set(context.Background(), "k", nil); !errors.Is(err, kv.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, _, err := s.Get(context.Background(), "k"); !errors.Is(err, kv.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	// No files -> empty store
	s := NewFromFiles(dir, "invoices", "company")
	if s.Len() != 0 {
		t.Fatalf("expected empty store")
	}

	if err := os.WriteFile(filepath.Join(dir, "company.json"), []byte(`{"name":"Acme"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s = NewFromFiles(dir, "invoices", "company")
	got, found, _ := s.Get(context.Background(), "company")
	if !found || string(got) != `{"name":"Acme"}` {
		t.Fatalf("unexpected seed: %q found=%v", got, found)
	}
	if _, found, _ := s.Get(context.Background(), "invoices"); found {
		t.Fatalf("invoices should not be seeded")
	}
}
