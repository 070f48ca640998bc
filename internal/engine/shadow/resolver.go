// # internal/engine/shadow/resolver.go
package shadow

import (
	"fmt"

	"shadowmap/internal/engine/mapping"
)

// Provider is the mapping data provider contract: a pure lookup from one
// symbolic coordinate to the per-environment renamed coordinates.
type Provider interface {
	Lookup(key mapping.Coordinate) *mapping.ObfuscationData
}

// TargetValidator checks that a declared shadow member exists on at least one
// of the declared target classes. Implementations that cannot see a target
// class should report true rather than guess.
type TargetValidator interface {
	ValidateMember(name, descriptor string, kind mapping.MemberKind, targets []string) bool
}

// Stats counts what a resolution pass did. Lookups counts provider calls,
// which is exactly elements-with-remap × targets.
type Stats struct {
	Elements  int
	Skipped   int
	Lookups   int
	Accepted  int
	Conflicts int
	Missing   int
	Invalid   int
}

// Resolver drives the resolution pass: declared shadow elements × declared
// target classes × discovered environments. It owns the mapping table and is
// its only writer. Failures become diagnostics; nothing aborts the pass.
type Resolver struct {
	provider  Provider
	validator TargetValidator
	sink      DiagnosticSink
	table     *Table
	stats     Stats
}

func NewResolver(provider Provider, validator TargetValidator, sink DiagnosticSink, table *Table) *Resolver {
	return &Resolver{
		provider:  provider,
		validator: validator,
		sink:      sink,
		table:     table,
	}
}

func (r *Resolver) Table() *Table {
	return r.table
}

func (r *Resolver) Stats() Stats {
	return r.stats
}

// Resolve processes one shadow element against its mixin's declared targets.
// Order of operations per the element lifecycle: target validation (fatal to
// the element), remap gate (silent skip), then per-target per-environment
// lookup and merge.
func (r *Resolver) Resolve(elem *Element, targets []string) {
	r.stats.Elements++

	if r.validator != nil && !r.validator.ValidateMember(elem.DeclaredName, elem.Descriptor, elem.Kind, targets) {
		r.stats.Invalid++
		r.sink.Report(Diagnostic{
			Severity: SeverityError,
			Kind:     KindInvalidTarget,
			Message:  fmt.Sprintf("@Shadow %s was not located in any declared target", elem),
			Mixin:    elem.Mixin,
			Element:  elem.String(),
			Location: elem.Decl,
		})
		return
	}

	if !elem.Remap {
		r.stats.Skipped++
		return
	}

	multiTarget := len(targets) > 1
	for _, target := range targets {
		r.resolveForTarget(elem, target, multiTarget)
	}
}

func (r *Resolver) resolveForTarget(elem *Element, target string, multiTarget bool) {
	data := r.provider.Lookup(elem.MappingKey(target))
	r.stats.Lookups++

	if data.IsEmpty() {
		info := ""
		if multiTarget {
			info = " in target " + target
		}
		r.stats.Missing++
		r.sink.Report(Diagnostic{
			Severity: SeverityWarning,
			Kind:     KindMappingNotFound,
			Message:  fmt.Sprintf("unable to locate obfuscation mapping%s for @Shadow %s", info, elem),
			Mixin:    elem.Mixin,
			Element:  elem.String(),
			Target:   target,
			Location: elem.Decl,
		})
		return
	}

	for _, env := range data.Environments() {
		renamed, _ := data.Get(env)
		elem.AcceptObfuscatedName(renamed)

		result := r.table.Merge(env, elem, renamed)
		if result.Accepted {
			r.stats.Accepted++
			continue
		}
		r.stats.Conflicts++
		r.sink.Report(Diagnostic{
			Severity: SeverityError,
			Kind:     KindMappingConflict,
			Message: fmt.Sprintf("mapping conflict for @Shadow %s: %s for target %s conflicts with existing mapping %s",
				elem, result.Incoming.Name, target, result.Existing.Name),
			Mixin:       elem.Mixin,
			Element:     elem.String(),
			Target:      target,
			Environment: env,
			Existing:    result.Existing.Name,
			Incoming:    result.Incoming.Name,
			Location:    elem.Decl,
		})
	}
}
