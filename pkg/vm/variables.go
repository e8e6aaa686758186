package vm

import (
	"maps"
	"slices"
)

// Variables is the name -> number table shared by every frame of a run.
// Reading a name that was never set yields 0.
// It is not safe for concurrent use.
type Variables struct {
	values map[string]float64
}

// NewVariables creates a variable table, optionally seeded from initial.
func NewVariables(initial map[string]float64) *Variables {
	v := &Variables{values: make(map[string]float64, len(initial))}
	maps.Copy(v.values, initial)
	return v
}

// Get retrieves a variable value by name.
//
// Returns:
//   - float64: The variable value, 0 when unset
//   - bool: true if the variable was set
func (v *Variables) Get(name string) (float64, bool) {
	value, ok := v.values[name]
	return value, ok
}

// Value returns the variable value, or 0 when it is unset.
func (v *Variables) Value(name string) float64 {
	return v.values[name]
}

// Set sets a variable value, creating it if needed.
func (v *Variables) Set(name string, value float64) {
	v.values[name] = value
}

// Len returns the number of variables that are set.
func (v *Variables) Len() int {
	return len(v.values)
}

// Names returns the variable names in sorted order.
func (v *Variables) Names() []string {
	return slices.Sorted(maps.Keys(v.values))
}
