// Package metrics exposes Prometheus collectors for the script runtime.
//
// A nil *Collector is valid and records nothing, so the VM and registry can
// call the Observe methods unconditionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes used as the "result" label of trace_runs_total.
const (
	ResultOK            = "ok"
	ResultTimeout       = "timeout"
	ResultStackOverflow = "stack_overflow"
	ResultCancelled     = "cancelled"
)

// Collector groups every metric the runtime records.
type Collector struct {
	parses      prometheus.Counter
	cacheHits   prometheus.Counter
	syntaxErrs  prometheus.Counter
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
	tokens      prometheus.Counter
	peakFrames  prometheus.Gauge
	beeps       prometheus.Counter
}

// New creates a Collector and registers it with reg.
// A nil reg leaves the collectors unregistered, which is useful in tests.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		parses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trace_parses_total",
			Help: "Total number of scripts tokenized (cache misses)",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trace_cache_hits_total",
			Help: "Total number of script lookups served from the cache",
		}),
		syntaxErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trace_syntax_errors_total",
			Help: "Total number of scripts that stopped tokenizing on a syntax error",
		}),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trace_runs_total",
				Help: "Total number of script runs by result",
			},
			[]string{"result"},
		),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trace_run_duration_seconds",
			Help:    "Wall-clock time spent in a single run",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		tokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trace_tokens_executed_total",
			Help: "Total number of tokens dispatched by the evaluator",
		}),
		peakFrames: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trace_peak_frames",
			Help: "Deepest frame stack seen in the most recent run",
		}),
		beeps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trace_beeps_total",
			Help: "Total number of beep diagnostics emitted",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			c.parses,
			c.cacheHits,
			c.syntaxErrs,
			c.runs,
			c.runDuration,
			c.tokens,
			c.peakFrames,
			c.beeps,
		)
	}
	return c
}

// ObserveParse records a tokenized script. failed marks a syntax error.
func (c *Collector) ObserveParse(failed bool) {
	if c == nil {
		return
	}
	c.parses.Inc()
	if failed {
		c.syntaxErrs.Inc()
	}
}

// ObserveCacheHit records a lookup served from the script cache.
func (c *Collector) ObserveCacheHit() {
	if c == nil {
		return
	}
	c.cacheHits.Inc()
}

// ObserveRun records the outcome of one run.
func (c *Collector) ObserveRun(result string, d time.Duration, tokens, peakFrames int) {
	if c == nil {
		return
	}
	c.runs.WithLabelValues(result).Inc()
	c.runDuration.Observe(d.Seconds())
	c.tokens.Add(float64(tokens))
	c.peakFrames.Set(float64(peakFrames))
}

// ObserveBeep records one beep diagnostic.
func (c *Collector) ObserveBeep() {
	if c == nil {
		return
	}
	c.beeps.Inc()
}
