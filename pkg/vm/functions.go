package vm

import (
	"maps"
	"slices"
)

// Functions maps call names to programs. Named function literals add to it
// while a script runs. It is not safe for concurrent use.
type Functions struct {
	programs map[string]*Program
}

// NewFunctions creates an empty function table.
func NewFunctions() *Functions {
	return &Functions{programs: make(map[string]*Program)}
}

// Get returns the program registered under name.
func (f *Functions) Get(name string) (*Program, bool) {
	p, ok := f.programs[name]
	return p, ok
}

// Set registers p under name, replacing any previous definition.
func (f *Functions) Set(name string, p *Program) {
	f.programs[name] = p
}

// Len returns the number of functions.
func (f *Functions) Len() int {
	return len(f.programs)
}

// Names returns the function names in sorted order.
func (f *Functions) Names() []string {
	return slices.Sorted(maps.Keys(f.programs))
}

// Clone returns an independent copy of the table. Programs are shared.
func (f *Functions) Clone() *Functions {
	return &Functions{programs: maps.Clone(f.programs)}
}
