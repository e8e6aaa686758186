package vm

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zurustar/trace/pkg/lexer"
	"github.com/zurustar/trace/pkg/logger"
	"github.com/zurustar/trace/pkg/metrics"
)

// Registry caches tokenized scripts by preprocessed source and holds the
// library of functions every new function table starts from.
// It is safe for concurrent use; entries are never evicted.
type Registry struct {
	mu       sync.RWMutex
	programs map[string]*Program
	library  *Functions

	log     *slog.Logger
	metrics *metrics.Collector
}

// RegistryOption is a functional option for configuring a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used to report syntax errors.
func WithRegistryLogger(log *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.log = log
	}
}

// WithRegistryMetrics records parses and cache hits on c.
func WithRegistryMetrics(c *metrics.Collector) RegistryOption {
	return func(r *Registry) {
		r.metrics = c
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		programs: make(map[string]*Program),
		library:  NewFunctions(),
		log:      logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Compile returns the program for source, tokenizing it on a cache miss.
// The syntax error, if any, is returned on every lookup; the program is
// usable either way.
func (r *Registry) Compile(source string) (*Program, error) {
	p, _ := r.compile(source)
	return p, p.err
}

// Parse is Compile for callers that want fail-soft behaviour: a syntax
// error is logged once, when the script is first tokenized.
func (r *Registry) Parse(source string) *Program {
	p, fresh := r.compile(source)
	if fresh && p.err != nil {
		r.log.Warn("syntax error", "source", p.Source, "error", p.err)
	}
	return p
}

func (r *Registry) compile(source string) (*Program, bool) {
	key := lexer.Preprocess(source)

	r.mu.RLock()
	p, ok := r.programs[key]
	r.mu.RUnlock()
	if ok {
		r.metrics.ObserveCacheHit()
		return p, false
	}

	result, err := lexer.Tokenize(key)
	p = newProgram(result, err, r)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.programs[key]; ok {
		// another goroutine won the race
		r.metrics.ObserveCacheHit()
		return existing, false
	}
	r.programs[key] = p
	r.metrics.ObserveParse(err != nil)
	return p, true
}

// Define parses source and adds it to the library under name.
// Function tables created afterwards include it.
func (r *Registry) Define(name, source string) (*Program, error) {
	if name == "" {
		return nil, errors.New("function name must not be empty")
	}
	p, err := r.Compile(source)
	if err != nil {
		return p, fmt.Errorf("failed to define %s: %w", name, err)
	}

	r.mu.Lock()
	r.library.Set(name, p)
	r.mu.Unlock()
	return p, nil
}

// Library returns a new function table seeded with the library.
func (r *Registry) Library() *Functions {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.library.Clone()
}

// Names returns the library function names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.library.Names()
}

// Len returns the number of cached programs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.programs)
}
