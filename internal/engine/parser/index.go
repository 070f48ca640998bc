// # internal/engine/parser/index.go
package parser

import (
	"shadowmap/internal/engine/mapping"
)

// ClassIndex is the member index over every parsed class, mixin or not.
// The resolver consults it to validate that a shadow member actually
// exists on a declared target. Targets outside the scanned source set
// cannot be disproven and always validate.
type ClassIndex struct {
	classes map[string]map[string]Member // class binary name -> member key -> member
}

func NewClassIndex() *ClassIndex {
	return &ClassIndex{classes: make(map[string]map[string]Member)}
}

func (idx *ClassIndex) AddFile(file *File) {
	for _, cls := range file.Classes {
		members, ok := idx.classes[cls.Name]
		if !ok {
			members = make(map[string]Member)
			idx.classes[cls.Name] = members
		}
		for _, m := range cls.Members {
			members[memberKey(m.Name, m.Descriptor, m.Kind)] = m
			if m.Kind == mapping.KindField {
				// Fields also index by bare name: declared shadow field
				// types may disagree with the target's erased generics.
				members[memberKey(m.Name, "", m.Kind)] = m
			}
		}
	}
}

func (idx *ClassIndex) Has(class string) bool {
	_, ok := idx.classes[class]
	return ok
}

func (idx *ClassIndex) Classes() int {
	return len(idx.classes)
}

// ValidateMember reports whether the member can plausibly exist on at
// least one declared target.
func (idx *ClassIndex) ValidateMember(name, descriptor string, kind mapping.MemberKind, targets []string) bool {
	unknown := 0
	for _, target := range targets {
		members, ok := idx.classes[target]
		if !ok {
			unknown++
			continue
		}
		if kind == mapping.KindField {
			if _, ok := members[memberKey(name, "", kind)]; ok {
				return true
			}
			continue
		}
		if _, ok := members[memberKey(name, descriptor, kind)]; ok {
			return true
		}
	}
	return unknown > 0
}

func memberKey(name, descriptor string, kind mapping.MemberKind) string {
	if kind == mapping.KindField {
		return "f:" + name + ":" + descriptor
	}
	return "m:" + name + descriptor
}
