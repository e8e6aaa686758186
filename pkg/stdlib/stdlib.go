// Package stdlib provides the script functions every registry starts with.
//
// Libraries are YAML documents listing named script bodies. The built-in
// library is embedded; hosts can add their own with LoadFile and Register.
package stdlib

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zurustar/trace/pkg/vm"
)

//go:embed library.yaml
var builtin []byte

// Definition is one library function.
type Definition struct {
	Name string `yaml:"name"`
	Doc  string `yaml:"doc"`
	Body string `yaml:"body"`
}

// Library is a set of function definitions.
type Library struct {
	Functions []Definition `yaml:"functions"`
}

// Decode parses a library document and checks that every function has a
// unique name and a body.
func Decode(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse library: %w", err)
	}

	seen := make(map[string]bool, len(lib.Functions))
	for i, def := range lib.Functions {
		if def.Name == "" {
			return nil, fmt.Errorf("function %d: missing name", i)
		}
		if def.Body == "" {
			return nil, fmt.Errorf("function %s: missing body", def.Name)
		}
		if seen[def.Name] {
			return nil, fmt.Errorf("function %s: defined twice", def.Name)
		}
		seen[def.Name] = true
	}
	return &lib, nil
}

// Builtin returns the embedded standard library.
func Builtin() (*Library, error) {
	return Decode(builtin)
}

// LoadFile reads a library document from path.
func LoadFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library: %w", err)
	}
	lib, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

// Register defines every function of lib in r. All definitions are
// attempted; the returned error joins the ones that failed.
func Register(r *vm.Registry, lib *Library) error {
	var errs []error
	for _, def := range lib.Functions {
		if _, err := r.Define(def.Name, def.Body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewRegistry creates a registry seeded with the standard library.
func NewRegistry(opts ...vm.RegistryOption) (*vm.Registry, error) {
	lib, err := Builtin()
	if err != nil {
		return nil, err
	}
	r := vm.NewRegistry(opts...)
	if err := Register(r, lib); err != nil {
		return nil, err
	}
	return r, nil
}
