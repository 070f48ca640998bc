package mapping

// Table is one environment's raw mapping data: symbolic coordinate to renamed
// coordinate. Field entries are additionally indexed by (owner, name) because
// SRG files carry no field descriptors.
type Table struct {
	entries map[string]Coordinate
	classes map[string]string // named binary class name -> renamed
	size    int
}

func NewTable() *Table {
	return &Table{
		entries: make(map[string]Coordinate),
		classes: make(map[string]string),
	}
}

func memberKey(c Coordinate, withDescriptor bool) string {
	base := c.Owner + "." + c.Name
	if c.Kind == KindMethod {
		return "m:" + base + c.Descriptor
	}
	if withDescriptor && c.Descriptor != "" {
		return "f:" + base + ":" + c.Descriptor
	}
	return "f:" + base
}

func (t *Table) Put(symbolic, renamed Coordinate) {
	key := memberKey(symbolic, true)
	if _, exists := t.entries[key]; !exists {
		t.size++
	}
	t.entries[key] = renamed
	if symbolic.Kind == KindField && symbolic.Descriptor != "" {
		// Name-only twin for descriptor-less lookups.
		t.entries[memberKey(symbolic, false)] = renamed
	}
}

func (t *Table) PutClass(named, renamed string) {
	t.classes[named] = renamed
}

func (t *Table) Class(named string) (string, bool) {
	renamed, ok := t.classes[named]
	return renamed, ok
}

// Lookup resolves a symbolic coordinate. Methods match on the full
// (owner, name, descriptor) key; fields try the descriptor-qualified key
// first and fall back to (owner, name).
func (t *Table) Lookup(key Coordinate) (Coordinate, bool) {
	if key.Kind == KindMethod {
		c, ok := t.entries[memberKey(key, true)]
		return c, ok
	}
	if key.Descriptor != "" {
		if c, ok := t.entries[memberKey(key, true)]; ok {
			return c, ok
		}
	}
	c, ok := t.entries[memberKey(key, false)]
	return c, ok
}

func (t *Table) Len() int {
	return t.size
}
