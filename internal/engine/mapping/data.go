package mapping

import "sort"

// ObfuscationData holds the per-environment results of a single symbolic
// coordinate lookup: zero or one renamed coordinate per environment. An empty
// data set is a valid outcome, not an error.
type ObfuscationData struct {
	entries map[string]Coordinate
}

func NewObfuscationData() *ObfuscationData {
	return &ObfuscationData{entries: make(map[string]Coordinate)}
}

func (d *ObfuscationData) Put(env string, c Coordinate) {
	d.entries[env] = c
}

func (d *ObfuscationData) Get(env string) (Coordinate, bool) {
	c, ok := d.entries[env]
	return c, ok
}

// Environments returns the environment identifiers in sorted order so that
// callers process entries deterministically regardless of provider ordering.
func (d *ObfuscationData) Environments() []string {
	names := make([]string, 0, len(d.entries))
	for name := range d.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *ObfuscationData) IsEmpty() bool {
	return len(d.entries) == 0
}

func (d *ObfuscationData) Len() int {
	return len(d.entries)
}
