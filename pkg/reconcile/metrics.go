package reconcile

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Edit-op label values for the ops counter.
const (
	opClear  = "clear"
	opRemove = "remove"
	opMove   = "move"
	opAdd    = "add"
)

// MetricsConfig configures the Prometheus metrics for the engine.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "floem").
	Namespace string

	// Subsystem is the metrics subsystem (default: "reconcile").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for apply duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the apply-duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "floem",
		Subsystem: "reconcile",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus metrics for the reconciliation engine.
// A nil *Metrics is valid and records nothing.
//
// Metrics collected:
//   - floem_reconcile_diffs_total: Counter of diffs computed
//   - floem_reconcile_ops_total: Counter of applied edit ops by kind
//   - floem_reconcile_children_created_total: Counter of constructed children
//   - floem_reconcile_children_disposed_total: Counter of disposed children
//   - floem_reconcile_children_live: Gauge of live children across stacks
//   - floem_reconcile_apply_duration_seconds: Histogram of apply-pass duration
type Metrics struct {
	diffsTotal       prometheus.Counter
	opsTotal         *prometheus.CounterVec
	childrenCreated  prometheus.Counter
	childrenDisposed prometheus.Counter
	childrenLive     prometheus.Gauge
	applyDuration    prometheus.Histogram
}

// NewMetrics creates and registers the engine metrics.
//
// Example:
//
//	m := reconcile.NewMetrics(reconcile.WithRegistry(reg))
//	stack := reconcile.NewStack(each, key, build, reconcile.WithMetrics(m))
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		diffsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "diffs_total",
			Help:        "Total number of diffs computed",
			ConstLabels: config.ConstLabels,
		}),

		opsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "ops_total",
			Help:        "Total number of applied edit operations by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		childrenCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "children_created_total",
			Help:        "Total number of child views constructed by insertions",
			ConstLabels: config.ConstLabels,
		}),

		childrenDisposed: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "children_disposed_total",
			Help:        "Total number of child views disposed by removals",
			ConstLabels: config.ConstLabels,
		}),

		childrenLive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "children_live",
			Help:        "Number of live child views across all stacks",
			ConstLabels: config.ConstLabels,
		}),

		applyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "apply_duration_seconds",
			Help:        "Apply-pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

func (m *Metrics) diffComputed() {
	if m == nil {
		return
	}
	m.diffsTotal.Inc()
}

func (m *Metrics) countOp(op string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.opsTotal.WithLabelValues(op).Add(float64(n))
}

func (m *Metrics) childCreated() {
	if m == nil {
		return
	}
	m.childrenCreated.Inc()
	m.childrenLive.Inc()
}

func (m *Metrics) childDisposed() {
	if m == nil {
		return
	}
	m.childrenDisposed.Inc()
	m.childrenLive.Dec()
}

func (m *Metrics) observeApply(start time.Time) {
	if m == nil {
		return
	}
	m.applyDuration.Observe(time.Since(start).Seconds())
}
