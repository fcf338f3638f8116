package save

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	db, err := OpenSQLite(filepath.Join(dir, "saves.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return map[string]Store{
		"file":   NewFileStore(filepath.Join(dir, "slots")),
		"sqlite": db,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			at := time.Unix(1700000000, 42)
			want := Record{Tick: 99, Data: []byte{1, 2, 3, 4}, SavedAt: at}
			if err := s.Save(ctx, "quick", want); err != nil {
				t.Fatalf("Save: %v", err)
			}

			got, err := s.Load(ctx, "quick")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Tick != 99 || got.Slot != "quick" || !bytes.Equal(got.Data, want.Data) {
				t.Errorf("Record mismatch: %+v", got)
			}
			if !got.SavedAt.Equal(at) {
				t.Errorf("SavedAt = %v, want %v", got.SavedAt, at)
			}
			if _, err := uuid.Parse(got.ID); err != nil {
				t.Errorf("Expected minted uuid, got %q", got.ID)
			}
		})
	}
}

func TestStore_LatestWins(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			base := time.Unix(1700000000, 0)
			for i := range 3 {
				rec := Record{Tick: uint64(i), Data: []byte{byte(i)}, SavedAt: base.Add(time.Duration(i) * time.Second)}
				if err := s.Save(ctx, "auto", rec); err != nil {
					t.Fatalf("Save %d: %v", i, err)
				}
			}
			got, err := s.Load(ctx, "auto")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Tick != 2 {
				t.Errorf("Expected newest tick 2, got %d", got.Tick)
			}
		})
	}
}

func TestStore_MissingSlot(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Load(ctx, "nope"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Save(ctx, "  ", Record{}); err == nil {
				t.Error("Expected error for blank slot")
			}
			if err := s.Save(ctx, "x", Record{ID: "not-a-uuid"}); err == nil {
				t.Error("Expected error for malformed id")
			}

			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			if err := s.Save(cancelled, "x", Record{}); !errors.Is(err, context.Canceled) {
				t.Errorf("Expected context.Canceled, got %v", err)
			}
		})
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	if err := os.WriteFile(s.FilePath("bad"), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := s.Load(context.Background(), "bad")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Expected corruption error, got %v", err)
	}
}

func TestFileStore_Exists(t *testing.T) {
	s := NewFileStore(t.TempDir())
	if s.Exists("a") {
		t.Error("Expected no slot before save")
	}
	if err := s.Save(context.Background(), "a", Record{Data: []byte{9}}); err != nil {
		t.Fatal(err)
	}
	if !s.Exists("a") {
		t.Error("Expected slot after save")
	}
}

func TestSQLiteStore_History(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "h.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	base := time.Unix(1700000000, 0)
	for i := range 4 {
		if err := db.Save(ctx, "s", Record{Tick: uint64(i), SavedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatal(err)
		}
	}

	hist, err := db.History(ctx, "s", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 2 || hist[0].Tick != 3 || hist[1].Tick != 2 {
		t.Errorf("Expected ticks [3 2], got %+v", hist)
	}
	if hist[0].Data != nil {
		t.Error("History must not load data")
	}
}

func TestSQLiteStore_ConnectionPragmas(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "p.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"busy_timeout", "5000"},
		{"synchronous", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.pragma, func(t *testing.T) {
			var got string
			if err := db.sqlDB.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
				t.Fatalf("PRAGMA %s: %v", tt.pragma, err)
			}
			if got != tt.want {
				t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
			}
		})
	}
}
