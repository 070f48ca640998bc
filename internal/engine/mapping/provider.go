package mapping

import (
	"fmt"
	"sort"
)

// Environment is one independent renaming scheme. A plain environment answers
// lookups from its own table; an overlay environment (csv member-name
// overlays) reuses a base environment's coordinates and rewrites the simple
// names it knows about.
type Environment struct {
	Name    string
	table   *Table
	base    *Environment
	renames map[string]string
}

func NewEnvironment(name string, table *Table) *Environment {
	return &Environment{Name: name, table: table}
}

func NewOverlayEnvironment(name string, base *Environment, renames map[string]string) *Environment {
	return &Environment{Name: name, base: base, renames: renames}
}

func (e *Environment) Lookup(key Coordinate) (Coordinate, bool) {
	if e.base != nil {
		c, ok := e.base.Lookup(key)
		if !ok {
			return Coordinate{}, false
		}
		if renamed, ok := e.renames[c.Name]; ok {
			c.Name = renamed
		}
		return c, true
	}
	if e.table == nil {
		return Coordinate{}, false
	}
	return e.table.Lookup(key)
}

func (e *Environment) Len() int {
	if e.base != nil {
		return e.base.Len()
	}
	if e.table == nil {
		return 0
	}
	return e.table.Len()
}

// EnvironmentSet is the mapping data provider: a fixed set of environments
// queried together for one symbolic coordinate. Lookup is a pure read.
type EnvironmentSet struct {
	envs map[string]*Environment
}

func NewEnvironmentSet() *EnvironmentSet {
	return &EnvironmentSet{envs: make(map[string]*Environment)}
}

func (s *EnvironmentSet) Add(env *Environment) error {
	if env == nil || env.Name == "" {
		return fmt.Errorf("environment name must not be empty")
	}
	if _, exists := s.envs[env.Name]; exists {
		return fmt.Errorf("duplicate environment %q", env.Name)
	}
	s.envs[env.Name] = env
	return nil
}

func (s *EnvironmentSet) Get(name string) (*Environment, bool) {
	env, ok := s.envs[name]
	return env, ok
}

func (s *EnvironmentSet) Names() []string {
	names := make([]string, 0, len(s.envs))
	for name := range s.envs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *EnvironmentSet) Len() int {
	return len(s.envs)
}

// Lookup queries every environment for the symbolic coordinate and collects
// the renamed coordinates that exist. Environments with no entry simply do
// not appear in the result.
func (s *EnvironmentSet) Lookup(key Coordinate) *ObfuscationData {
	data := NewObfuscationData()
	for name, env := range s.envs {
		if renamed, ok := env.Lookup(key); ok {
			data.Put(name, renamed)
		}
	}
	return data
}
