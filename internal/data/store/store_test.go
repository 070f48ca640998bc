package store

import (
	"path/filepath"
	"testing"
	"time"
)

func TestStore_OpenInitializesSchemaAndSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "shadowmap.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	first := Pass{
		RunID:     "run-1",
		Timestamp: base,
		Files:     4,
		Mixins:    2,
		Elements:  6,
		Lookups:   12,
		Accepted:  10,
		Missing:   2,
	}
	second := Pass{
		RunID:        "run-2",
		Timestamp:    base.Add(time.Hour),
		Files:        4,
		Mixins:       2,
		Elements:     6,
		Lookups:      12,
		Accepted:     11,
		Missing:      1,
		WarningCount: 1,
	}

	rows := []Mapping{
		{Environment: "searge", Owner: "com/example/Foo", Name: "counter", Descriptor: "I", Kind: "field", RenamedOwner: "a", RenamedName: "field_1_i"},
		{Environment: "searge", Owner: "com/example/Foo", Name: "describe", Descriptor: "(I)Ljava/lang/String;", Kind: "method", RenamedOwner: "a", RenamedName: "func_2_d", RenamedDescriptor: "(I)Ljava/lang/String;"},
	}

	if err := s.SavePass(first, nil); err != nil {
		t.Fatalf("save first pass: %v", err)
	}
	if err := s.SavePass(second, rows); err != nil {
		t.Fatalf("save second pass: %v", err)
	}

	latest, err := s.LoadLatestPass()
	if err != nil {
		t.Fatalf("load latest pass: %v", err)
	}
	if latest == nil || latest.RunID != "run-2" {
		t.Fatalf("latest = %+v", latest)
	}
	if latest.Accepted != 11 || latest.WarningCount != 1 {
		t.Fatalf("counters did not roundtrip: %+v", latest)
	}

	mappings, err := s.LoadMappings(latest.ID)
	if err != nil {
		t.Fatalf("load mappings: %v", err)
	}
	if len(mappings) != 2 {
		t.Fatalf("expected 2 mapping rows, got %d", len(mappings))
	}
	if mappings[0].Name != "counter" || mappings[0].RenamedName != "field_1_i" {
		t.Fatalf("mapping rows out of order or wrong: %+v", mappings)
	}
	// The full renamed coordinate survives the round trip, not just the name.
	if mappings[0].RenamedOwner != "a" || mappings[0].RenamedDescriptor != "" {
		t.Fatalf("renamed field coordinate did not roundtrip: %+v", mappings[0])
	}
	if mappings[1].RenamedOwner != "a" || mappings[1].RenamedDescriptor != "(I)Ljava/lang/String;" {
		t.Fatalf("renamed method coordinate did not roundtrip: %+v", mappings[1])
	}
}

func TestStore_LoadLatestPassEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	latest, err := s.LoadLatestPass()
	if err != nil {
		t.Fatalf("load latest: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil pass on empty store, got %+v", latest)
	}
}

func TestStore_RejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestStore_RejectsDuplicateRunID(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "dup.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	pass := Pass{RunID: "run-1"}
	if err := s.SavePass(pass, nil); err != nil {
		t.Fatalf("save pass: %v", err)
	}
	if err := s.SavePass(pass, nil); err == nil {
		t.Fatal("expected unique constraint error for duplicate run id")
	}
}
