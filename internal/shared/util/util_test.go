package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSortedStringKeys(t *testing.T) {
	m := map[string]int{"mcp": 1, "searge": 2, "dev": 3}
	got := SortedStringKeys(m)
	want := []string{"dev", "mcp", "searge"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWriteFileWithDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "report.tsv")
	if err := WriteStringWithDirs(path, "a\tb\n", 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "a\tb\n" {
		t.Errorf("content = %q", data)
	}
}
