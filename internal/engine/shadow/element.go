// # internal/engine/shadow/element.go
package shadow

import (
	"shadowmap/internal/engine/mapping"
)

// DeclRef points a diagnostic back at the source declaration that produced it.
type DeclRef struct {
	File   string
	Line   int
	Column int
}

// Element is one shadow member declared by a mixin patch: a field or method
// that aliases a member of the patch's target classes. The descriptor and
// declared name are fixed at construction; only the obfuscated display name
// is ever updated, and only through AcceptObfuscatedName.
type Element struct {
	Mixin        string // binary name of the declaring mixin class
	DeclaredName string
	Descriptor   string
	Kind         mapping.MemberKind
	Remap        bool
	Decl         DeclRef

	obfuscatedName string
}

func NewElement(mixin, name, descriptor string, kind mapping.MemberKind, remap bool, decl DeclRef) *Element {
	return &Element{
		Mixin:        mixin,
		DeclaredName: name,
		Descriptor:   descriptor,
		Kind:         kind,
		Remap:        remap,
		Decl:         decl,
	}
}

// MappingKey builds the symbolic lookup coordinate for this element against
// one target class. Pure; the element is not modified.
func (e *Element) MappingKey(owner string) mapping.Coordinate {
	if e.Kind == mapping.KindMethod {
		return mapping.MethodCoordinate(owner, e.DeclaredName, e.Descriptor)
	}
	return mapping.FieldCoordinate(owner, e.DeclaredName, e.Descriptor)
}

// AcceptObfuscatedName records the renamed simple name for display. A single
// element is expected to resolve to the same simple name across all of its
// mixin's targets for a given environment; per-environment disagreement is
// caught by Table.Merge, which keys on the element, not the target.
func (e *Element) AcceptObfuscatedName(renamed mapping.Coordinate) {
	e.obfuscatedName = renamed.Name
}

// ObfuscatedName returns the accepted display name, or the declared name when
// no resolution has been accepted yet.
func (e *Element) ObfuscatedName() string {
	if e.obfuscatedName == "" {
		return e.DeclaredName
	}
	return e.obfuscatedName
}

// Identity is the element's key in the mapping table: stable across targets
// and environments.
func (e *Element) Identity() string {
	return e.Mixin + "." + e.DeclaredName + ":" + e.Descriptor + ":" + e.Kind.String()
}

func (e *Element) String() string {
	return e.Kind.String() + " " + e.DeclaredName
}
