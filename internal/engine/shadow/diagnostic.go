package shadow

import "sort"

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "ERROR"
	}
	return "WARNING"
}

// DiagnosticKind classifies resolution failures; report generators map
// these onto rule identifiers.
type DiagnosticKind string

const (
	KindInvalidTarget   DiagnosticKind = "invalid-target"
	KindMappingNotFound DiagnosticKind = "mapping-not-found"
	KindMappingConflict DiagnosticKind = "mapping-conflict"
)

// Diagnostic is one reported outcome of the resolution pass. Diagnostics
// never abort the pass; they accumulate so a single run surfaces every
// problem.
type Diagnostic struct {
	Severity    Severity
	Kind        DiagnosticKind
	Message     string
	Mixin       string
	Element     string
	Target      string
	Environment string
	// Existing/Incoming carry both simple names for mapping conflicts.
	Existing string
	Incoming string
	Location DeclRef
}

// DiagnosticSink receives diagnostics as the resolver produces them.
type DiagnosticSink interface {
	Report(Diagnostic)
}

// Collector is a DiagnosticSink that accumulates diagnostics in memory.
// Sorted() returns them ordered by location then message so emission is
// reproducible even if a future caller parallelizes resolution.
type Collector struct {
	diagnostics []Diagnostic
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Report(d Diagnostic) {
	c.diagnostics = append(c.diagnostics, d)
}

func (c *Collector) All() []Diagnostic {
	out := make([]Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

func (c *Collector) Sorted() []Diagnostic {
	out := c.All()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Message < b.Message
	})
	return out
}

func (c *Collector) Count(severity Severity) int {
	n := 0
	for _, d := range c.diagnostics {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

func (c *Collector) Len() int {
	return len(c.diagnostics)
}
