package munch

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics mirrors queue statistics into Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	Enqueued     *prometheus.CounterVec
	Dequeued     *prometheus.CounterVec
	EnqueueWait  *prometheus.HistogramVec
	DequeueWait  *prometheus.HistogramVec
	LinesDropped prometheus.Counter
	LinesWritten prometheus.Counter
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.NewRegistry())
}

// NewMetricsWith creates the collectors and registers them on reg. It panics if the
// collectors are already registered there. WriteText only works when reg is also a
// prometheus.Gatherer.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	buckets := prometheus.ExponentialBuckets(0.000001, 10, 8) // 1µs to 10s
	m := &Metrics{
		Enqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "munch_queue_enqueued_total",
			Help: "Items enqueued, per queue",
		}, []string{"queue"}),
		Dequeued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "munch_queue_dequeued_total",
			Help: "Items dequeued, per queue",
		}, []string{"queue"}),
		EnqueueWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "munch_queue_enqueue_duration_seconds",
			Help:    "Time spent in enqueue, waiting for space included",
			Buckets: buckets,
		}, []string{"queue"}),
		DequeueWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "munch_queue_dequeue_duration_seconds",
			Help:    "Time spent in dequeue, waiting for data included",
			Buckets: buckets,
		}, []string{"queue"}),
		LinesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "munch_lines_dropped_total",
			Help: "Input lines dropped for exceeding the maximum length",
		}),
		LinesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "munch_lines_written_total",
			Help: "Lines written by the writer stage",
		}),
	}
	reg.MustRegister(m.Enqueued, m.Dequeued, m.EnqueueWait, m.DequeueWait, m.LinesDropped, m.LinesWritten)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// WriteText writes every gathered metric family in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil || m.gatherer == nil {
		return nil
	}
	families, err := m.gatherer.Gather()
	if err != nil {
		return newError("Metrics", "prometheus", "Gather", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return newError("Metrics", mf.GetName(), "Write", err)
		}
	}
	return nil
}

func (m *Metrics) addEnqueue(queue string, n int) {
	if m == nil {
		return
	}
	m.Enqueued.WithLabelValues(queue).Add(float64(n))
}

func (m *Metrics) addDequeue(queue string, n int) {
	if m == nil {
		return
	}
	m.Dequeued.WithLabelValues(queue).Add(float64(n))
}

func (m *Metrics) observeEnqueue(queue string, d time.Duration) {
	if m == nil {
		return
	}
	m.EnqueueWait.WithLabelValues(queue).Observe(d.Seconds())
}

func (m *Metrics) observeDequeue(queue string, d time.Duration) {
	if m == nil {
		return
	}
	m.DequeueWait.WithLabelValues(queue).Observe(d.Seconds())
}

func (m *Metrics) lineDropped() {
	if m == nil {
		return
	}
	m.LinesDropped.Inc()
}

func (m *Metrics) lineWritten() {
	if m == nil {
		return
	}
	m.LinesWritten.Inc()
}
