package termpool

// metrics.go is a thin abstraction over Prometheus so the pool works with or
// without metrics enabled, the same split the teacher's metrics.go used
// between noopMetrics and promMetrics. When the caller passes a
// *prometheus.Registry via WithMetrics, unlabeled collectors are created and
// registered; otherwise a no-op sink is used and the hot path pays nothing
// for metric updates.
//
// ┌────────────────────────────────┬───────┐
// │ Metric                         │ Type  │
// ├──────────────────────────────────┼───────┤
// │ termpool_interns_total          │ Ctr   │
// │ termpool_makes_total            │ Ctr   │
// │ termpool_gc_runs_total          │ Ctr   │
// │ termpool_gc_duration_seconds    │ Hist  │
// │ termpool_gc_reclaimed_total     │ Ctr   │
// │ termpool_pool_size              │ Gge   │
// │ termpool_pool_capacity          │ Gge   │
// └────────────────────────────────┴───────┘
//
// © 2025 termpool authors. MIT License.

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metricsSink abstracts the concrete backend (Prometheus vs noop) away from
// the rest of the package.
type metricsSink interface {
	incIntern()
	incMake()
	incGCRun()
	observeGCDuration(seconds float64)
	addReclaimed(n int)
	setPoolSize(n int)
	setPoolCapacity(n int)
}

type noopMetrics struct{}

func (noopMetrics) incIntern()                {}
func (noopMetrics) incMake()                  {}
func (noopMetrics) incGCRun()                 {}
func (noopMetrics) observeGCDuration(float64) {}
func (noopMetrics) addReclaimed(int)          {}
func (noopMetrics) setPoolSize(int)           {}
func (noopMetrics) setPoolCapacity(int)       {}

type promMetrics struct {
	interns    prometheus.Counter
	makes      prometheus.Counter
	gcRuns     prometheus.Counter
	gcDuration prometheus.Histogram
	reclaimed  prometheus.Counter
	poolSize   prometheus.Gauge
	poolCap    prometheus.Gauge
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	pm := &promMetrics{
		interns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "termpool",
			Name:      "interns_total",
			Help:      "Number of symbol intern calls.",
		}),
		makes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "termpool",
			Name:      "makes_total",
			Help:      "Number of term construction calls (constant, application, numeric).",
		}),
		gcRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "termpool",
			Name:      "gc_runs_total",
			Help:      "Number of completed collection cycles.",
		}),
		gcDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "termpool",
			Name:      "gc_duration_seconds",
			Help:      "Wall-clock duration of a collection cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
		reclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "termpool",
			Name:      "gc_reclaimed_total",
			Help:      "Number of term nodes reclaimed across all collections.",
		}),
		poolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "termpool",
			Name:      "pool_size",
			Help:      "Number of live term nodes currently stored.",
		}),
		poolCap: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "termpool",
			Name:      "pool_capacity",
			Help:      "Current slot capacity of the term table.",
		}),
	}
	reg.MustRegister(pm.interns, pm.makes, pm.gcRuns, pm.gcDuration, pm.reclaimed, pm.poolSize, pm.poolCap)
	return pm
}

func (m *promMetrics) incIntern()                        { m.interns.Inc() }
func (m *promMetrics) incMake()                          { m.makes.Inc() }
func (m *promMetrics) incGCRun()                         { m.gcRuns.Inc() }
func (m *promMetrics) observeGCDuration(seconds float64) { m.gcDuration.Observe(seconds) }
func (m *promMetrics) addReclaimed(n int)                { m.reclaimed.Add(float64(n)) }
func (m *promMetrics) setPoolSize(n int)                 { m.poolSize.Set(float64(n)) }
func (m *promMetrics) setPoolCapacity(n int)             { m.poolCap.Set(float64(n)) }

func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
