package stdlib

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zurustar/trace/pkg/vm"
)

func newTestRegistry(t *testing.T) *vm.Registry {
	t.Helper()
	r, err := NewRegistry(vm.WithRegistryLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	require.NoError(t, err)
	return r
}

func TestBuiltinLibrary(t *testing.T) {
	lib, err := Builtin()
	require.NoError(t, err)

	names := make([]string, 0, len(lib.Functions))
	for _, def := range lib.Functions {
		names = append(names, def.Name)
		assert.NotEmpty(t, def.Doc, "function %s has no doc", def.Name)
	}
	assert.ElementsMatch(t, []string{"abs", "sign", "coin", "d6", "d20", "chance", "jitter"}, names)
}

func TestNewRegistryDefinesEveryFunction(t *testing.T) {
	r := newTestRegistry(t)
	assert.Equal(t, []string{"abs", "chance", "coin", "d20", "d6", "jitter", "sign"}, r.Names())
}

func TestFunctions(t *testing.T) {
	tests := []struct {
		name     string
		call     string
		value    float64
		random   float64
		expected float64
	}{
		{"abs negative", "abs()", -3, 0, 3},
		{"abs positive", "abs()", 4, 0, 4},
		{"sign positive", "sign()", 5, 0, 1},
		{"sign negative", "sign()", -2, 0, -1},
		{"sign zero", "sign()", 0, 0, 0},
		{"coin heads", "coin()", 0, 0.9, 1},
		{"coin tails", "coin()", 0, 0.1, 0},
		{"d6 low", "d6()", 0, 0, 1},
		{"d6 high", "d6()", 0, 0.999, 6},
		{"d20 high", "d20()", 0, 0.999, 20},
		{"chance hit", "chance()", 30, 0.2, 1},
		{"chance miss", "chance()", 30, 0.5, 0},
		{"used in an expression", "abs()*2+1", -5, 0, 11},
	}

	r := newTestRegistry(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := vm.New(
				vm.WithRegistry(r),
				vm.WithTimeLimit(0),
				vm.WithRandom(func() float64 { return tt.random }),
			)
			got, err := machine.Run(r.Parse(tt.call), nil,
				vm.WithVariableTable(vm.NewVariables(map[string]float64{"value": tt.value})),
			)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestJitter(t *testing.T) {
	r := newTestRegistry(t)
	machine := vm.New(vm.WithRegistry(r), vm.WithTimeLimit(0), vm.WithRandom(func() float64 { return 0.5 }))

	got, err := machine.Run(r.Parse("jitter()"), nil,
		vm.WithVariableTable(vm.NewVariables(map[string]float64{"value": 100})),
	)
	require.NoError(t, err)
	assert.InDelta(t, 100, got, 1e-9)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"invalid yaml", "functions: [name: x"},
		{"missing name", "functions:\n  - body: '1'\n"},
		{"missing body", "functions:\n  - name: one\n"},
		{"duplicate", "functions:\n  - name: one\n    body: '1'\n  - name: one\n    body: '2'\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFileAndRegister(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.yaml")
	doc := "functions:\n  - name: half\n    body: 'value/2'\n  - name: bad\n    body: '1+*'\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	lib, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, lib.Functions, 2)

	r := newTestRegistry(t)
	err = Register(r, lib)
	assert.Error(t, err, "the definition with a syntax error should be reported")
	assert.Contains(t, r.Names(), "half", "valid definitions are still registered")
	assert.NotContains(t, r.Names(), "bad")

	machine := vm.New(vm.WithRegistry(r), vm.WithTimeLimit(0))
	got, err := machine.Run(r.Parse("half()"), nil,
		vm.WithVariableTable(vm.NewVariables(map[string]float64{"value": 9})),
	)
	require.NoError(t, err)
	assert.Equal(t, 4.5, got)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
