// Package vm executes tokenized scripts on an explicit frame stack.
// It provides:
// - Program caching through a Registry
// - Variable and function tables supplied by the host or owned by the program
// - Tail calls that replace the current frame
// - A wall-clock time limit and a frame-count limit
// - Beep diagnostics
package vm

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/zurustar/trace/pkg/logger"
	"github.com/zurustar/trace/pkg/metrics"
)

const (
	// DefaultTimeLimit is the wall-clock budget of a run.
	DefaultTimeLimit = time.Second

	// DefaultMaxFrames is the deepest frame stack a run may build.
	DefaultMaxFrames = 100000
)

// VM runs programs. A VM keeps the statistics of its last run and is not
// safe for concurrent Run calls; use one VM per goroutine.
type VM struct {
	registry *Registry

	// Configuration
	timeLimit time.Duration
	maxFrames int
	random    func() float64
	clock     func() time.Time

	log         *slog.Logger
	diagnostics *slog.Logger
	metrics     *metrics.Collector

	lastRun RunStats
}

// RunStats describes the most recent run.
type RunStats struct {
	Duration   time.Duration
	Tokens     int // tokens dispatched
	PeakFrames int // deepest frame stack, including the running frame
	TimedOut   bool
}

// Option is a functional option for configuring the VM.
type Option func(*VM)

// WithRegistry sets the registry used to parse function literal bodies and Eval sources.
func WithRegistry(r *Registry) Option {
	return func(vm *VM) {
		vm.registry = r
	}
}

// WithTimeLimit sets the wall-clock budget of each run. A limit <= 0 disables it.
func WithTimeLimit(limit time.Duration) Option {
	return func(vm *VM) {
		vm.timeLimit = limit
	}
}

// WithMaxFrames sets the frame stack limit.
func WithMaxFrames(n int) Option {
	return func(vm *VM) {
		vm.maxFrames = n
	}
}

// WithRandom sets the source of uniform numbers in [0, 1).
func WithRandom(random func() float64) Option {
	return func(vm *VM) {
		vm.random = random
	}
}

// WithClock sets the clock the time limit is measured with.
func WithClock(clock func() time.Time) Option {
	return func(vm *VM) {
		vm.clock = clock
	}
}

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(vm *VM) {
		vm.log = log
	}
}

// WithDiagnostics sets the logger beeps are written to.
func WithDiagnostics(log *slog.Logger) Option {
	return func(vm *VM) {
		vm.diagnostics = log
	}
}

// WithMetrics records runs on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(vm *VM) {
		vm.metrics = c
	}
}

// New creates a new VM instance with the given options.
//
// Parameters:
//   - opts: Optional configuration options (registry, time limit, random source, clock, loggers)
//
// Returns:
//   - *VM: The initialized VM instance
func New(opts ...Option) *VM {
	vm := &VM{
		timeLimit: DefaultTimeLimit,
		maxFrames: DefaultMaxFrames,
		random:    rand.Float64,
		clock:     time.Now,
		log:       logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(vm)
	}

	if vm.registry == nil {
		vm.registry = NewRegistry(WithRegistryLogger(vm.log), WithRegistryMetrics(vm.metrics))
	}
	if vm.diagnostics == nil {
		vm.diagnostics = logger.GetDiagnostics()
	}

	return vm
}

// Registry returns the registry the VM parses with.
func (vm *VM) Registry() *Registry {
	return vm.registry
}

// LastRun returns the statistics of the most recent run.
func (vm *VM) LastRun() RunStats {
	return vm.lastRun
}

// runConfig holds per-run settings.
type runConfig struct {
	ctx       context.Context
	variables *Variables
	functions *Functions
	extra     map[string]float64
	start     time.Time
}

// RunOption is a functional option for a single run.
type RunOption func(*runConfig)

// WithVariables copies values into the run's variable table before it starts.
func WithVariables(values map[string]float64) RunOption {
	return func(c *runConfig) {
		c.extra = values
	}
}

// WithVariableTable runs against t instead of the program's own table.
func WithVariableTable(t *Variables) RunOption {
	return func(c *runConfig) {
		c.variables = t
	}
}

// WithFunctionTable runs against t instead of the program's own table.
func WithFunctionTable(t *Functions) RunOption {
	return func(c *runConfig) {
		c.functions = t
	}
}

// WithStart measures the time limit from start instead of from the call to Run.
func WithStart(start time.Time) RunOption {
	return func(c *runConfig) {
		c.start = start
	}
}

// WithContext aborts the run when ctx is cancelled.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		c.ctx = ctx
	}
}

// Run executes p with the given arguments and returns its value.
// Arguments fill memory slots 1..n of the top-level frame.
//
// On timeout, stack overflow or cancellation the run stops, the result is 0
// and the error describes why. Variable and function changes made before
// that point are kept.
func (vm *VM) Run(p *Program, args []float64, opts ...RunOption) (float64, error) {
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.start.IsZero() {
		cfg.start = vm.clock()
	}
	if cfg.variables == nil {
		cfg.variables = p.Variables()
	}
	if cfg.functions == nil {
		cfg.functions = p.Functions(vm.registry)
	}
	for name, value := range cfg.extra {
		cfg.variables.Set(name, value)
	}

	size := p.memorySize(len(args))
	memory := NewMemory(size)
	if size > 0 {
		memory[0] = float64(size - 1)
		for i := 0; i+1 < size && i < len(args); i++ {
			memory[i+1] = args[i]
		}
	}

	e := &execution{
		vm:     vm,
		ctx:    cfg.ctx,
		vars:   cfg.variables,
		funcs:  cfg.functions,
		start:  cfg.start,
		frames: make([]*Frame, 0, 16),
	}
	e.frames = append(e.frames, newFrame(p.Tokens, memory))

	result, err := e.run()

	vm.lastRun = RunStats{
		Duration:   vm.clock().Sub(cfg.start),
		Tokens:     e.tokens,
		PeakFrames: e.peak,
		TimedOut:   IsTimeout(err),
	}
	vm.metrics.ObserveRun(runResult(err), vm.lastRun.Duration, e.tokens, e.peak)

	return result, err
}

// Eval parses source with the VM's registry and runs it, discarding the
// error, which has already been logged.
func (vm *VM) Eval(source string, args ...float64) float64 {
	result, _ := vm.Run(vm.registry.Parse(source), args)
	return result
}

func runResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case IsStackOverflow(err):
		return metrics.ResultStackOverflow
	case IsTimeout(err):
		return metrics.ResultTimeout
	default:
		return metrics.ResultCancelled
	}
}
