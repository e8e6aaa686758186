package vm

import (
	"fmt"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestProperty_PrecedenceMatchesArithmetic checks that mixed additive and
// multiplicative expressions evaluate with the usual precedence.
func TestProperty_PrecedenceMatchesArithmetic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	vm := newTestVM()

	properties.Property("a+b*c-d", prop.ForAll(
		func(a, b, c, d int) bool {
			got := vm.Eval(fmt.Sprintf("%d+%d*%d-%d", a, b, c, d))
			return got == float64(a+b*c-d)
		},
		gen.IntRange(0, 1000), gen.IntRange(0, 1000), gen.IntRange(0, 1000), gen.IntRange(0, 1000),
	))

	properties.Property("a*b+c*d", prop.ForAll(
		func(a, b, c, d int) bool {
			got := vm.Eval(fmt.Sprintf("%d*%d+%d*%d", a, b, c, d))
			return got == float64(a*b+c*d)
		},
		gen.IntRange(0, 1000), gen.IntRange(0, 1000), gen.IntRange(0, 1000), gen.IntRange(0, 1000),
	))

	properties.Property("subtraction is left associative", prop.ForAll(
		func(a, b, c int) bool {
			return vm.Eval(fmt.Sprintf("%d-%d-%d", a, b, c)) == float64(a-b-c)
		},
		gen.IntRange(0, 1000), gen.IntRange(0, 1000), gen.IntRange(0, 1000),
	))

	properties.Property("power binds tighter than multiplication", prop.ForAll(
		func(a, b, c int) bool {
			got := vm.Eval(fmt.Sprintf("%d*%d**%d", a, b, c))
			return got == float64(a)*math.Pow(float64(b), float64(c))
		},
		gen.IntRange(0, 20), gen.IntRange(0, 10), gen.IntRange(0, 5),
	))

	properties.Property("comparison of sums", prop.ForAll(
		func(a, b, c int) bool {
			got := vm.Eval(fmt.Sprintf("%d+%d<%d", a, b, c))
			return got == truth(a+b < c)
		},
		gen.IntRange(0, 100), gen.IntRange(0, 100), gen.IntRange(0, 200),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// TestProperty_RangeStaysWithinBounds checks that "lo~hi" lands in [lo, hi]
// for any random source value in [0, 1).
func TestProperty_RangeStaysWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("lo~hi within bounds", prop.ForAll(
		func(lo, span int, r float64) bool {
			vm := newTestVM(WithRandom(fixedRandom(r)))
			hi := lo + span
			got := vm.Eval(fmt.Sprintf("%d~%d", lo, hi))
			return got >= float64(lo) && got <= float64(hi)
		},
		gen.IntRange(0, 1000), gen.IntRange(0, 1000), gen.Float64Range(0, 0.999999),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// TestProperty_RunIsRepeatable checks that running one program twice on
// fresh tables gives the same result.
func TestProperty_RunIsRepeatable(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)
	vm := newTestVM()

	properties.Property("same program, same result", prop.ForAll(
		func(a, b int) bool {
			p := vm.Registry().Parse(fmt.Sprintf("x=%d;y=x*%d;x>y?x:y", a, b))
			first, err1 := vm.Run(p, nil, WithVariableTable(NewVariables(nil)))
			second, err2 := vm.Run(p, nil, WithVariableTable(NewVariables(nil)))
			return err1 == nil && err2 == nil && first == second
		},
		gen.IntRange(0, 100), gen.IntRange(0, 5),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
