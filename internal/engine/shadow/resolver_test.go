// # internal/engine/shadow/resolver_test.go
package shadow

import (
	"strings"
	"testing"

	"shadowmap/internal/engine/mapping"
)

// fakeProvider counts lookups and answers from a fixed table keyed by the
// symbolic coordinate's string form.
type fakeProvider struct {
	lookups int
	answers map[string]map[string]mapping.Coordinate // key.String() -> env -> renamed
}

func (p *fakeProvider) Lookup(key mapping.Coordinate) *mapping.ObfuscationData {
	p.lookups++
	data := mapping.NewObfuscationData()
	for env, renamed := range p.answers[key.String()] {
		data.Put(env, renamed)
	}
	return data
}

type allowAllValidator struct{}

func (allowAllValidator) ValidateMember(name, descriptor string, kind mapping.MemberKind, targets []string) bool {
	return true
}

type denyAllValidator struct{}

func (denyAllValidator) ValidateMember(name, descriptor string, kind mapping.MemberKind, targets []string) bool {
	return false
}

func fieldElem(name string) *Element {
	return NewElement("com/example/mixin/MixinFoo", name, "I", mapping.KindField, true,
		DeclRef{File: "MixinFoo.java", Line: 10, Column: 5})
}

func newTestResolver(p Provider, v TargetValidator) (*Resolver, *Collector, *Table) {
	collector := NewCollector()
	table := NewTable()
	return NewResolver(p, v, collector, table), collector, table
}

func TestResolve_MultiTargetFanOut(t *testing.T) {
	// Both targets resolve to the same coordinate in both environments, as
	// when two obfuscated classes share a common obfuscated ancestor.
	shared := map[string]mapping.Coordinate{
		"searge": mapping.FieldCoordinate("com/example/Base", "field_1_i", ""),
		"mcp":    mapping.FieldCoordinate("com/example/Base", "counterValue", ""),
	}
	provider := &fakeProvider{answers: map[string]map[string]mapping.Coordinate{
		"com/example/Foo.counter:I": shared,
		"com/example/Bar.counter:I": shared,
	}}

	r, collector, table := newTestResolver(provider, allowAllValidator{})
	r.Resolve(fieldElem("counter"), []string{"com/example/Foo", "com/example/Bar"})

	// Exactly one lookup per declared target.
	if provider.lookups != 2 {
		t.Fatalf("lookups = %d, want 2", provider.lookups)
	}
	if collector.Len() != 0 {
		t.Fatalf("diagnostics = %+v", collector.All())
	}
	// One entry per environment; the second target merged idempotently.
	if table.Len() != 2 {
		t.Fatalf("table len = %d", table.Len())
	}
	if got := r.Stats(); got.Lookups != 2 || got.Accepted != 4 || got.Conflicts != 0 {
		t.Fatalf("stats = %+v", got)
	}
}

func TestResolve_ConflictAcrossTargets(t *testing.T) {
	// The two targets disagree on the searge rename of the same element.
	provider := &fakeProvider{answers: map[string]map[string]mapping.Coordinate{
		"com/example/Foo.counter:I": {
			"searge": mapping.FieldCoordinate("com/example/Foo", "field_1_i", ""),
		},
		"com/example/Bar.counter:I": {
			"searge": mapping.FieldCoordinate("com/example/Bar", "field_2_i", ""),
		},
	}}

	r, collector, table := newTestResolver(provider, allowAllValidator{})
	r.Resolve(fieldElem("counter"), []string{"com/example/Foo", "com/example/Bar"})

	diags := collector.All()
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %+v", diags)
	}
	d := diags[0]
	if d.Severity != SeverityError || d.Kind != KindMappingConflict {
		t.Fatalf("diagnostic = %+v", d)
	}
	// Both simple names appear in the message.
	if !strings.Contains(d.Message, "field_2_i") || !strings.Contains(d.Message, "field_1_i") {
		t.Errorf("message = %q", d.Message)
	}
	if d.Existing != "field_1_i" || d.Incoming != "field_2_i" {
		t.Errorf("sides = existing %q incoming %q", d.Existing, d.Incoming)
	}
	if d.Environment != "searge" {
		t.Errorf("environment = %q", d.Environment)
	}

	// First target's resolution stays in the table.
	got, _ := table.Get("searge", fieldElem("counter"))
	if got.Name != "field_1_i" {
		t.Errorf("winner = %+v", got)
	}
	if got := r.Stats(); got.Conflicts != 1 || got.Accepted != 1 {
		t.Errorf("stats = %+v", got)
	}
}

func TestResolve_EmptyResultIsWarningOnly(t *testing.T) {
	provider := &fakeProvider{answers: map[string]map[string]mapping.Coordinate{}}

	r, collector, table := newTestResolver(provider, allowAllValidator{})
	elem := fieldElem("counter")
	r.Resolve(elem, []string{"com/example/Foo"})

	diags := collector.All()
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %+v", diags)
	}
	d := diags[0]
	if d.Severity != SeverityWarning || d.Kind != KindMappingNotFound {
		t.Fatalf("diagnostic = %+v", d)
	}
	// Single target: no target qualifier in the message.
	if strings.Contains(d.Message, " in target ") {
		t.Errorf("message = %q", d.Message)
	}
	if table.Len() != 0 {
		t.Errorf("empty result must not mutate the table, len = %d", table.Len())
	}
	// The element keeps its declared name for display.
	if elem.ObfuscatedName() != "counter" {
		t.Errorf("obfuscated name = %q", elem.ObfuscatedName())
	}
}

func TestResolve_EmptyResultNamesTargetWhenMultiTarget(t *testing.T) {
	provider := &fakeProvider{answers: map[string]map[string]mapping.Coordinate{
		"com/example/Foo.counter:I": {
			"searge": mapping.FieldCoordinate("com/example/Foo", "field_1_i", ""),
		},
	}}

	r, collector, _ := newTestResolver(provider, allowAllValidator{})
	r.Resolve(fieldElem("counter"), []string{"com/example/Foo", "com/example/Bar"})

	diags := collector.All()
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %+v", diags)
	}
	if !strings.Contains(diags[0].Message, " in target com/example/Bar") {
		t.Errorf("message = %q", diags[0].Message)
	}
	if got := r.Stats(); got.Missing != 1 || got.Accepted != 1 {
		t.Errorf("stats = %+v", got)
	}
}

func TestResolve_RemapFalseSkips(t *testing.T) {
	provider := &fakeProvider{answers: map[string]map[string]mapping.Coordinate{}}

	r, collector, table := newTestResolver(provider, allowAllValidator{})
	elem := NewElement("com/example/mixin/MixinFoo", "counter", "I", mapping.KindField, false, DeclRef{})
	r.Resolve(elem, []string{"com/example/Foo"})

	if provider.lookups != 0 {
		t.Errorf("lookups = %d, want 0", provider.lookups)
	}
	if collector.Len() != 0 {
		t.Errorf("diagnostics = %+v", collector.All())
	}
	if table.Len() != 0 {
		t.Errorf("table len = %d", table.Len())
	}
	if got := r.Stats(); got.Skipped != 1 || got.Elements != 1 {
		t.Errorf("stats = %+v", got)
	}
}

func TestResolve_InvalidTargetIsFatalToElement(t *testing.T) {
	provider := &fakeProvider{answers: map[string]map[string]mapping.Coordinate{}}

	r, collector, _ := newTestResolver(provider, denyAllValidator{})
	r.Resolve(fieldElem("missing"), []string{"com/example/Foo"})

	if provider.lookups != 0 {
		t.Errorf("invalid element must not reach the provider, lookups = %d", provider.lookups)
	}
	diags := collector.All()
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %+v", diags)
	}
	if diags[0].Severity != SeverityError || diags[0].Kind != KindInvalidTarget {
		t.Fatalf("diagnostic = %+v", diags[0])
	}
	if got := r.Stats(); got.Invalid != 1 {
		t.Errorf("stats = %+v", got)
	}
}

func TestResolve_PassIsDeterministic(t *testing.T) {
	answers := map[string]map[string]mapping.Coordinate{
		"com/example/Foo.counter:I": {
			"searge": mapping.FieldCoordinate("com/example/Foo", "field_1_i", ""),
			"mcp":    mapping.FieldCoordinate("com/example/Foo", "counterValue", ""),
		},
	}

	run := func() []Record {
		r, _, table := newTestResolver(&fakeProvider{answers: answers}, allowAllValidator{})
		r.Resolve(fieldElem("counter"), []string{"com/example/Foo"})
		return table.Records()
	}

	first := run()
	for i := 0; i < 10; i++ {
		again := run()
		if len(again) != len(first) {
			t.Fatalf("run %d produced %d records, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d record %d = %+v, want %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestResolve_AcceptsObfuscatedDisplayName(t *testing.T) {
	provider := &fakeProvider{answers: map[string]map[string]mapping.Coordinate{
		"com/example/Foo.counter:I": {
			"searge": mapping.FieldCoordinate("com/example/Foo", "field_1_i", ""),
		},
	}}

	r, _, _ := newTestResolver(provider, allowAllValidator{})
	elem := fieldElem("counter")
	r.Resolve(elem, []string{"com/example/Foo"})

	if elem.ObfuscatedName() != "field_1_i" {
		t.Errorf("obfuscated name = %q", elem.ObfuscatedName())
	}
}

func TestResolve_NilValidatorValidatesEverything(t *testing.T) {
	provider := &fakeProvider{answers: map[string]map[string]mapping.Coordinate{}}

	r, collector, _ := newTestResolver(provider, nil)
	r.Resolve(fieldElem("counter"), []string{"com/example/Foo"})

	if provider.lookups != 1 {
		t.Errorf("lookups = %d, want 1", provider.lookups)
	}
	// Only the missing-mapping warning, no invalid-target error.
	if collector.Count(SeverityError) != 0 {
		t.Errorf("errors = %d", collector.Count(SeverityError))
	}
}
