// # internal/engine/parser/types.go
package parser

import (
	"time"

	"shadowmap/internal/engine/mapping"
)

type File struct {
	Path     string
	Package  string            // dotted package name
	Imports  map[string]string // simple name -> dotted fully qualified name
	Classes  []Class
	ParsedAt time.Time
}

// Class is one parsed class declaration. Mixin classes additionally carry
// their declared targets and shadow members; plain classes contribute their
// member lists to the target index used for shadow validation.
type Class struct {
	Name     string // binary name, slash separated, nested classes use $
	IsMixin  bool
	Targets  []string // binary names of declared target classes
	Remap    bool     // class-level remap flag, default true
	Shadows  []ShadowMember
	Members  []Member
	Location Location
}

type Member struct {
	Name       string
	Descriptor string
	Kind       mapping.MemberKind
}

type ShadowMember struct {
	Member
	RawName  string // name as written, before prefix stripping
	Prefix   string // stripped prefix, if any
	Remap    bool   // effective flag: class remap && member remap
	Final    bool
	Location Location
}

type Location struct {
	File   string
	Line   int
	Column int
}
