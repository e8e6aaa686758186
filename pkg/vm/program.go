package vm

import (
	"sync"

	"github.com/zurustar/trace/pkg/lexer"
	"github.com/zurustar/trace/pkg/token"
)

// Program is a tokenized script. Its tokens are never modified after
// construction, so one Program can be run any number of times.
type Program struct {
	Source     string // preprocessed source, also the cache key
	Tokens     []token.Token
	Params     []string
	MemorySize int // >= 0, or lexer.MemoryFromArgs

	err      error
	registry *Registry

	// tables used by runs that do not supply their own
	mu        sync.Mutex
	variables *Variables
	functions *Functions
}

func newProgram(result *lexer.Result, err error, registry *Registry) *Program {
	return &Program{
		Source:     result.Source,
		Tokens:     result.Tokens,
		Params:     result.Params,
		MemorySize: result.MemorySize,
		err:        err,
		registry:   registry,
	}
}

// Err returns the syntax error that stopped tokenizing, if any.
// A program with an error still runs the tokens read before it.
func (p *Program) Err() error {
	return p.err
}

// memorySize returns the size of the top-level memory block for a run.
func (p *Program) memorySize(args int) int {
	if p.MemorySize == lexer.MemoryFromArgs {
		return args + 1
	}
	return p.MemorySize
}

// Variables returns the program's default variable table, creating it on
// first use.
func (p *Program) Variables() *Variables {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.variables == nil {
		p.variables = NewVariables(nil)
	}
	return p.variables
}

// Functions returns the program's default function table, creating it on
// first use from the library of the registry that parsed it (or fallback).
func (p *Program) Functions(fallback *Registry) *Functions {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.functions == nil {
		r := p.registry
		if r == nil {
			r = fallback
		}
		if r != nil {
			p.functions = r.Library()
		} else {
			p.functions = NewFunctions()
		}
	}
	return p.functions
}
