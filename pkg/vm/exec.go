package vm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zurustar/trace/pkg/token"
)

// ctxCheckInterval is how many tokens run between context checks.
const ctxCheckInterval = 1024

// execution is the state of one Run.
type execution struct {
	vm    *VM
	ctx   context.Context
	vars  *Variables
	funcs *Functions
	start time.Time

	frames []*Frame

	// value left by the frame that finished last; consumed by the call or
	// function literal token its caller resumes on
	returned  float64
	hasReturn bool

	tokens int
	peak   int
}

// run is the dispatch loop. A call pushes the caller (unless it is a tail
// call) and the callee, then restarts the outer loop without advancing the
// caller's pc, so the caller resumes on the call token and picks up the
// returned value there.
func (e *execution) run() (float64, error) {
	e.peak = len(e.frames)

frames:
	for len(e.frames) > 0 {
		f := e.frames[len(e.frames)-1]
		e.frames = e.frames[:len(e.frames)-1]

		for ; f.pc < len(f.tokens); f.pc++ {
			if err := e.check(f); err != nil {
				return 0, err
			}
			e.tokens++

			t := f.tokens[f.pc]
			val, isOperand := 0.0, false

			switch t.Kind {
			case token.Beep:
				e.beep(f, t)
				continue

			case token.Negate:
				f.sign = -1
			case token.Pointer:
				f.ptr = true
			case token.PlusMinus:
				if e.vm.random() < 0.5 {
					f.sign = 1
				} else {
					f.sign = -1
				}
			case token.Not:
				f.not = true

			case token.StartGroup:
				f.startGroup()
			case token.EndGroup:
				val, isOperand = f.endGroup(), true

			case token.Variable:
				val, isOperand = e.vars.Value(t.Text), true
				f.lastVar = t.Text
			case token.Percent:
				if v, ok := e.vars.Get("value"); ok {
					val = v * (t.Value * 0.01)
				}
				isOperand = true
			case token.Literal:
				val, isOperand = t.Value, true
			case token.LiteralArray:
				val, isOperand = e.pick(t.Text), true

			case token.AnonFunction, token.Function, token.AnonLambda, token.Lambda:
				if e.hasReturn {
					val, isOperand = e.returned, true
					e.hasReturn = false
					break
				}
				name, body := splitLiteral(t)
				if name != "" {
					e.funcs.Set(name, e.vm.registry.Parse(body))
					break
				}
				// anonymous functions share the caller's memory
				callee := newFrame(e.vm.registry.Parse(body).Tokens, f.memory)
				if err := e.call(f, callee, false); err != nil {
					return 0, err
				}
				continue frames

			case token.FunctionCall, token.TailCall:
				tail := t.Kind == token.TailCall
				if e.hasReturn {
					if !tail {
						val, isOperand = e.returned, true
					}
					e.hasReturn = false
					break
				}
				name := callName(t)
				if p, ok := e.funcs.Get(name); ok {
					size := p.MemorySize
					if size < 0 {
						size = 0
					}
					if err := e.call(f, newFrame(p.Tokens, NewMemory(size)), tail); err != nil {
						return 0, err
					}
					continue frames
				}
				if name == "" {
					// "()" re-enters the current body with shared memory
					if err := e.call(f, newFrame(f.tokens, f.memory), tail); err != nil {
						return 0, err
					}
					continue frames
				}
				val, isOperand = 0, true

			case token.Set, token.AddSet, token.SubSet, token.MulSet,
				token.DivSet, token.ModSet, token.PowSet:
				f.assign(t.Kind)
				continue

			case token.Increment:
				val, isOperand = e.vars.Value(f.lastVar)+1, true
				e.vars.Set(f.lastVar, val)
				f.value = f.lastValue
			case token.Decrement:
				val, isOperand = e.vars.Value(f.lastVar)-1, true
				e.vars.Set(f.lastVar, val)
				f.value = f.lastValue

			case token.Statement, token.Separator:
				f.closeStatement(e.vars)
				f.lastValue = 0
				f.value = 0

			case token.TernaryTrue:
				f.operator = token.Add
				if f.value == 0 {
					f.skipBranch(true)
					continue
				}
				f.lastValue = 0
				f.value = 0

			case token.TernaryFalse:
				// only reached at the end of a taken "?" branch
				f.skipBranch(false)
				continue

			default:
				f.operator = t.Kind
			}

			if !isOperand {
				continue
			}
			f.fold(f.modify(val), e.vm.random)
		}

		f.closeStatement(e.vars)
		e.returned = f.value
		e.hasReturn = true
	}

	return e.returned, nil
}

// check enforces the time limit and cancellation before each token.
func (e *execution) check(f *Frame) error {
	if limit := e.vm.timeLimit; limit > 0 && e.vm.clock().Sub(e.start) > limit {
		e.vm.log.Error("trace timed out", "limit", limit, "token", f.pc)
		return NewTimeoutError(limit, f.pc)
	}
	if e.ctx != nil && e.tokens%ctxCheckInterval == 0 {
		if err := e.ctx.Err(); err != nil {
			e.vm.log.Warn("trace cancelled", "token", f.pc)
			return fmt.Errorf("run cancelled: %w", err)
		}
	}
	return nil
}

// call schedules callee. Unless it is a tail call, the caller is pushed
// first so that it resumes once the callee finishes.
func (e *execution) call(caller, callee *Frame, tail bool) error {
	if !tail {
		e.frames = append(e.frames, caller)
	}
	e.frames = append(e.frames, callee)

	if n := len(e.frames); n > e.peak {
		e.peak = n
		if n > e.vm.maxFrames {
			err := NewStackOverflowError(n, e.vm.maxFrames)
			e.vm.log.Error("trace stack overflow", "depth", n, "max", e.vm.maxFrames)
			return err
		}
	}
	return nil
}

// pick returns one of the "|"-separated numbers of a literal array at random.
func (e *execution) pick(text string) float64 {
	parts := strings.Split(text, "|")
	i := int(e.vm.random() * float64(len(parts)))
	i = max(0, min(i, len(parts)-1))
	return token.ParseNumber(parts[i])
}

// callName returns the name of a call token, "" for "()".
func callName(t token.Token) string {
	text := strings.TrimPrefix(t.Text, ">")
	if i := strings.IndexByte(text, '('); i >= 0 {
		return text[:i]
	}
	return text
}

// splitLiteral returns the name and body source of a function literal.
func splitLiteral(t token.Token) (name, body string) {
	text := t.Text
	if i := strings.IndexByte(text, '('); i >= 0 {
		name = text[:i]
	}

	switch t.Kind {
	case token.Function, token.AnonFunction:
		if i := strings.IndexByte(text, '{'); i >= 0 && strings.HasSuffix(text, "}") {
			body = text[i+1 : len(text)-1]
		}
	default:
		if i := strings.Index(text, "=>"); i >= 0 {
			body = strings.TrimSuffix(text[i+2:], ";")
		}
	}
	return name, body
}
