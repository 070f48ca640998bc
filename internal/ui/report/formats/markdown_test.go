package formats

import (
	"strings"
	"testing"
	"time"

	"shadowmap/internal/engine/mapping"
	"shadowmap/internal/engine/shadow"
)

func TestMarkdownGenerate(t *testing.T) {
	data := MarkdownReportData{
		TotalFiles:  3,
		TotalMixins: 1,
		Stats: shadow.Stats{
			Elements: 2,
			Lookups:  4,
			Accepted: 3,
			Missing:  1,
		},
		Diagnostics: []shadow.Diagnostic{
			{
				Severity: shadow.SeverityWarning,
				Kind:     shadow.KindMappingNotFound,
				Message:  "unable to locate obfuscation mapping for @Shadow field counter",
				Mixin:    "com/example/mixin/MixinFoo",
				Element:  "field counter",
				Target:   "com/example/core/Foo",
				Location: shadow.DeclRef{File: "/project/src/MixinFoo.java", Line: 12, Column: 5},
			},
		},
		Records: []shadow.Record{
			{
				Environment: "searge",
				Owner:       "com/example/mixin/MixinFoo",
				Name:        "describe",
				Descriptor:  "(I)Ljava/lang/String;",
				Kind:        mapping.KindMethod,
				Renamed:     mapping.MethodCoordinate("com/example/core/Foo", "func_2_d", "(I)Ljava/lang/String;"),
			},
		},
	}
	opts := MarkdownReportOptions{
		ProjectName: "demo",
		ProjectRoot: "/project",
		Version:     "1.2.3",
		GeneratedAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
	}

	out, err := NewMarkdownGenerator().Generate(data, opts)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	for _, want := range []string{
		"title: Shadow Mapping Report",
		"project: demo",
		"| Mapping Lookups | 4 |",
		"| Missing Mappings | 1 |",
		"## Warnings",
		"`src/MixinFoo.java:12:5`",
		"## Resolved Mappings",
		"`func_2_d`",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}

	// No errors were reported.
	if !strings.Contains(out, "## Errors\nNone.") {
		t.Error("expected empty Errors section")
	}
}

func TestTSVGenerate(t *testing.T) {
	records := []shadow.Record{
		{
			Environment: "searge",
			Owner:       "com/example/mixin/MixinFoo",
			Name:        "counter",
			Descriptor:  "I",
			Kind:        mapping.KindField,
			Renamed:     mapping.FieldCoordinate("com/example/core/Foo", "field_1_i", ""),
		},
	}

	out, err := NewTSVGenerator().Generate(records)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	// Only the final newline may be trimmed: a field record has no renamed
	// descriptor, so the data row legitimately ends in a tab.
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Environment\tMixin") {
		t.Errorf("header = %q", lines[0])
	}
	cols := strings.Split(lines[1], "\t")
	if len(cols) != 8 {
		t.Fatalf("expected 8 columns, got %d: %q", len(cols), lines[1])
	}
	if cols[0] != "searge" || cols[2] != "counter" || cols[6] != "field_1_i" {
		t.Errorf("row = %q", lines[1])
	}
	if cols[7] != "" {
		t.Errorf("renamed descriptor column = %q, want empty for a field", cols[7])
	}
}
