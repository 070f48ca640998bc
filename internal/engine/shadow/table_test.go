// # internal/engine/shadow/table_test.go
package shadow

import (
	"testing"

	"shadowmap/internal/engine/mapping"
)

func testElement(name string) *Element {
	return NewElement("com/example/mixin/MixinFoo", name, "I", mapping.KindField, true, DeclRef{})
}

func TestTableMerge_InsertAndIdempotent(t *testing.T) {
	table := NewTable()
	elem := testElement("counter")
	coord := mapping.FieldCoordinate("com/example/Foo", "field_1_i", "")

	res := table.Merge("searge", elem, coord)
	if !res.Accepted {
		t.Fatal("first merge must accept")
	}
	if table.Len() != 1 {
		t.Fatalf("table len = %d", table.Len())
	}

	// The same element visited through a second target with the same
	// resolved coordinate must accept without growing the table.
	res = table.Merge("searge", elem, coord)
	if !res.Accepted {
		t.Fatal("identical re-merge must accept")
	}
	if table.Len() != 1 {
		t.Fatalf("table len after re-merge = %d", table.Len())
	}

	got, ok := table.Get("searge", elem)
	if !ok || got != coord {
		t.Fatalf("Get = %v, %v", got, ok)
	}
}

func TestTableMerge_FirstWins(t *testing.T) {
	table := NewTable()
	elem := testElement("counter")
	first := mapping.FieldCoordinate("com/example/Foo", "field_1_i", "")
	second := mapping.FieldCoordinate("com/example/Bar", "field_2_i", "")

	if res := table.Merge("searge", elem, first); !res.Accepted {
		t.Fatal("first merge must accept")
	}

	res := table.Merge("searge", elem, second)
	if res.Accepted {
		t.Fatal("conflicting merge must be rejected")
	}
	if res.Existing != first || res.Incoming != second {
		t.Fatalf("conflict sides = %+v", res)
	}

	// The table is unchanged: first write wins.
	got, _ := table.Get("searge", elem)
	if got != first {
		t.Fatalf("winner = %v, want %v", got, first)
	}
	if table.Len() != 1 {
		t.Fatalf("table len = %d", table.Len())
	}
}

func TestTableMerge_ConflictDetectionIsOrderIndependent(t *testing.T) {
	a := mapping.FieldCoordinate("com/example/Foo", "field_1_i", "")
	b := mapping.FieldCoordinate("com/example/Bar", "field_2_i", "")

	for name, order := range map[string][2]mapping.Coordinate{
		"a then b": {a, b},
		"b then a": {b, a},
	} {
		table := NewTable()
		elem := testElement("counter")

		if res := table.Merge("searge", elem, order[0]); !res.Accepted {
			t.Fatalf("%s: first merge rejected", name)
		}
		if res := table.Merge("searge", elem, order[1]); res.Accepted {
			t.Fatalf("%s: conflicting merge accepted", name)
		}

		// The winner depends on the order; a conflict is detected either way.
		got, _ := table.Get("searge", elem)
		if got != order[0] {
			t.Fatalf("%s: winner = %v", name, got)
		}
	}
}

func TestTableMerge_EnvironmentsAreIndependent(t *testing.T) {
	table := NewTable()
	elem := testElement("counter")
	searge := mapping.FieldCoordinate("com/example/Foo", "field_1_i", "")
	mcp := mapping.FieldCoordinate("com/example/Foo", "counterValue", "")

	if res := table.Merge("searge", elem, searge); !res.Accepted {
		t.Fatal("searge merge rejected")
	}
	if res := table.Merge("mcp", elem, mcp); !res.Accepted {
		t.Fatal("mcp merge rejected")
	}
	if table.Len() != 2 {
		t.Fatalf("table len = %d", table.Len())
	}
}

func TestTableRecords_SortedAndComplete(t *testing.T) {
	table := NewTable()
	a := testElement("alpha")
	b := testElement("beta")

	table.Merge("searge", b, mapping.FieldCoordinate("com/example/Foo", "field_2_b", ""))
	table.Merge("searge", a, mapping.FieldCoordinate("com/example/Foo", "field_1_a", ""))
	table.Merge("mcp", a, mapping.FieldCoordinate("com/example/Foo", "alphaValue", ""))

	records := table.Records()
	if len(records) != 3 {
		t.Fatalf("records = %d", len(records))
	}
	if records[0].Environment != "mcp" {
		t.Errorf("records[0].Environment = %q", records[0].Environment)
	}
	if records[1].Name != "alpha" || records[2].Name != "beta" {
		t.Errorf("record order: %q then %q", records[1].Name, records[2].Name)
	}
}
