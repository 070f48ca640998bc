// # internal/engine/mapping/types.go
package mapping

// MemberKind distinguishes field coordinates from method coordinates.
type MemberKind int

const (
	KindField MemberKind = iota
	KindMethod
)

func (k MemberKind) String() string {
	if k == KindMethod {
		return "method"
	}
	return "field"
}

// Coordinate identifies one class member: owner is the binary class name
// (slash-separated), descriptor is the JVM type descriptor. A Coordinate is
// used both as the symbolic lookup key and as the renamed lookup result.
// Two coordinates are equal iff all four fields match.
type Coordinate struct {
	Owner      string
	Name       string
	Descriptor string
	Kind       MemberKind
}

func FieldCoordinate(owner, name, descriptor string) Coordinate {
	return Coordinate{Owner: owner, Name: name, Descriptor: descriptor, Kind: KindField}
}

func MethodCoordinate(owner, name, descriptor string) Coordinate {
	return Coordinate{Owner: owner, Name: name, Descriptor: descriptor, Kind: KindMethod}
}

// WithOwner returns a copy of the coordinate rebased onto another class.
func (c Coordinate) WithOwner(owner string) Coordinate {
	c.Owner = owner
	return c
}

func (c Coordinate) IsZero() bool {
	return c.Owner == "" && c.Name == "" && c.Descriptor == ""
}

func (c Coordinate) String() string {
	if c.Kind == KindMethod {
		return c.Owner + "." + c.Name + c.Descriptor
	}
	if c.Descriptor == "" {
		return c.Owner + "." + c.Name
	}
	return c.Owner + "." + c.Name + ":" + c.Descriptor
}
