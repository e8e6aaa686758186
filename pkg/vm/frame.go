package vm

import (
	"math"

	"github.com/zurustar/trace/pkg/token"
)

// saved is the accumulator state put aside by a "(".
type saved struct {
	value    float64
	operator token.Kind
}

// Frame is the execution state of one function body.
type Frame struct {
	tokens []token.Token
	memory Memory
	pc     int

	value     float64 // accumulator
	lastValue float64 // accumulator before the most recent fold
	stack     []saved
	operator  token.Kind // pending binary operator

	// deferred compound assignment, applied at the end of the statement
	setOp  token.Kind
	setVar string

	lastVar string
	sign    float64
	not     bool
	ptr     bool
}

func newFrame(tokens []token.Token, memory Memory) *Frame {
	return &Frame{
		tokens:   tokens,
		memory:   memory,
		operator: token.Add,
		setOp:    token.Add,
		sign:     1,
	}
}

func (f *Frame) startGroup() {
	f.stack = append(f.stack, saved{value: f.value, operator: f.operator})
	f.lastValue = 0
	f.value = 0
	f.operator = token.Add
}

// endGroup restores the enclosing accumulator and returns the group's value,
// which the caller folds in as an operand.
func (f *Frame) endGroup() float64 {
	val := f.value
	if n := len(f.stack); n > 0 {
		s := f.stack[n-1]
		f.stack = f.stack[:n-1]
		f.value = s.value
		f.lastValue = s.value
		f.operator = s.operator
	} else {
		f.value = 0
		f.lastValue = 0
		f.operator = token.Add
	}
	return val
}

// modify applies and clears the pending unary modifiers: sign, then not,
// then dereference.
func (f *Frame) modify(val float64) float64 {
	val *= f.sign
	f.sign = 1
	if f.not {
		val = truth(val == 0)
		f.not = false
	}
	if f.ptr {
		val = f.memory.Load(val)
		f.ptr = false
	}
	return val
}

// fold combines val into the accumulator with the pending operator.
// Kinds that are not binary operators leave the accumulator unchanged.
func (f *Frame) fold(val float64, random func() float64) {
	f.lastValue = f.value

	switch f.operator {
	case token.Add:
		f.value += val
	case token.Sub:
		f.value -= val
	case token.Mul:
		f.value *= val
	case token.Div:
		f.value /= val
	case token.Mod:
		f.value = math.Mod(f.value, val)
	case token.Pow:
		f.value = math.Pow(f.value, val)
	case token.Range:
		f.value += random() * (val - f.value)
	case token.Gt:
		f.value = truth(f.value > val)
	case token.Lt:
		f.value = truth(f.value < val)
	case token.GtEq:
		f.value = truth(f.value >= val)
	case token.LtEq:
		f.value = truth(f.value <= val)
	case token.Eq:
		f.value = truth(f.value == val)
	case token.NotEq:
		f.value = truth(f.value != val)
	case token.Or:
		f.value = truth(f.value != 0 || val != 0)
	case token.And:
		f.value = truth(f.value != 0 && val != 0)
	case token.Xor:
		f.value = truth((f.value != 0) != (val != 0))
	}
}

// assign records a compound assignment to the last variable read.
// The right-hand side accumulates from the value before that variable.
func (f *Frame) assign(op token.Kind) {
	f.operator = token.Add
	f.setOp = op
	f.setVar = f.lastVar
	f.value = f.lastValue
}

// closeStatement applies the pending assignment, if any. The accumulator
// becomes the variable's new value.
func (f *Frame) closeStatement(vars *Variables) {
	if f.setVar == "" {
		return
	}

	current := vars.Value(f.setVar)
	switch f.setOp {
	case token.Set:
		vars.Set(f.setVar, f.value)
	case token.AddSet:
		vars.Set(f.setVar, current+f.value)
	case token.SubSet:
		vars.Set(f.setVar, current-f.value)
	case token.MulSet:
		vars.Set(f.setVar, current*f.value)
	case token.DivSet:
		vars.Set(f.setVar, current/f.value)
	case token.ModSet:
		vars.Set(f.setVar, math.Mod(current, f.value))
	case token.PowSet:
		vars.Set(f.setVar, math.Pow(current, f.value))
	}

	f.value = vars.Value(f.setVar)
	f.setVar = ""
}

// skipBranch advances pc past the branch of a ternary that is not taken.
// It starts on the "?" or ":" token. With stopAtFalse it stops on a ":" at
// the starting group depth, so the loop increment lands after it. A
// statement, separator or unmatched ")" ends the branch and is left for the
// loop to execute.
func (f *Frame) skipBranch(stopAtFalse bool) {
	depth := 0
	for ; f.pc < len(f.tokens); f.pc++ {
		switch f.tokens[f.pc].Kind {
		case token.TernaryFalse:
			if stopAtFalse && depth == 0 {
				return
			}
		case token.Statement, token.Separator:
			f.pc--
			return
		case token.StartGroup:
			depth++
		case token.EndGroup:
			depth--
			if depth < 0 {
				f.pc--
				return
			}
		}
	}
}

func truth(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
