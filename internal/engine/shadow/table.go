// # internal/engine/shadow/table.go
package shadow

import (
	"sort"

	"shadowmap/internal/engine/mapping"
)

// MergeResult is the outcome of one Table.Merge call. When Accepted is false
// both the previously accepted and the newly attempted coordinates are
// carried so the caller can report the conflict.
type MergeResult struct {
	Accepted bool
	Existing mapping.Coordinate
	Incoming mapping.Coordinate
}

type tableKey struct {
	Env     string
	Element string
}

type tableEntry struct {
	mixin      string
	name       string
	descriptor string
	kind       mapping.MemberKind
	renamed    mapping.Coordinate
}

// Record is one accepted mapping in export form: the symbolic side names the
// declaring mixin and declared member, the renamed side is the coordinate
// chosen for the environment.
type Record struct {
	Environment string
	Owner       string
	Name        string
	Descriptor  string
	Kind        mapping.MemberKind
	Renamed     mapping.Coordinate
}

// Table accumulates the single renamed coordinate chosen per (environment,
// element) pair for the duration of one pass. Entries are never overwritten:
// a second distinct write for a key is rejected and reported as a conflict,
// so ambiguous mapping data fails the build instead of silently producing
// inconsistent renames.
type Table struct {
	entries map[tableKey]tableEntry
}

func NewTable() *Table {
	return &Table{entries: make(map[tableKey]tableEntry)}
}

// Merge records candidate for (env, elem) following first-wins semantics:
// an absent key inserts and accepts; a structurally equal existing entry
// accepts idempotently (the same element visited through two targets); a
// differing existing entry is left untouched and the conflict is returned.
func (t *Table) Merge(env string, elem *Element, candidate mapping.Coordinate) MergeResult {
	key := tableKey{Env: env, Element: elem.Identity()}

	existing, ok := t.entries[key]
	if !ok {
		t.entries[key] = tableEntry{
			mixin:      elem.Mixin,
			name:       elem.DeclaredName,
			descriptor: elem.Descriptor,
			kind:       elem.Kind,
			renamed:    candidate,
		}
		return MergeResult{Accepted: true, Incoming: candidate}
	}
	if existing.renamed == candidate {
		return MergeResult{Accepted: true, Existing: existing.renamed, Incoming: candidate}
	}
	return MergeResult{Accepted: false, Existing: existing.renamed, Incoming: candidate}
}

// Get returns the accepted coordinate for (env, elem), if any.
func (t *Table) Get(env string, elem *Element) (mapping.Coordinate, bool) {
	entry, ok := t.entries[tableKey{Env: env, Element: elem.Identity()}]
	return entry.renamed, ok
}

func (t *Table) Len() int {
	return len(t.entries)
}

// Records returns all accepted mappings sorted by (environment, owner, name,
// descriptor) so exports and persistence are reproducible across runs.
func (t *Table) Records() []Record {
	records := make([]Record, 0, len(t.entries))
	for key, entry := range t.entries {
		records = append(records, Record{
			Environment: key.Env,
			Owner:       entry.mixin,
			Name:        entry.name,
			Descriptor:  entry.descriptor,
			Kind:        entry.kind,
			Renamed:     entry.renamed,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Environment != b.Environment {
			return a.Environment < b.Environment
		}
		if a.Owner != b.Owner {
			return a.Owner < b.Owner
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Descriptor < b.Descriptor
	})
	return records
}
