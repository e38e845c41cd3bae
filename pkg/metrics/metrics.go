// Package metrics records per-run pipeline metrics in a private Prometheus
// registry that can be dumped to a node_exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cbd"

type Recorder struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	records       *prometheus.CounterVec
	failures      *prometheus.CounterVec
	extensions    prometheus.Counter
	upperBound    prometheus.Gauge
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of one pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records that left a pipeline stage.",
		}, []string{"stage"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Pipeline stages that ended in an error.",
		}, []string{"stage"}),
		extensions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stitch_extensions_total",
			Help:      "Tail paths extended by the stitch stage.",
		}),
		upperBound: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upper_bound",
			Help:      "Exclusive upper bound of the last run.",
		}),
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveStage(stage string, d time.Duration, records int) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	r.records.WithLabelValues(stage).Add(float64(records))
}

func (r *Recorder) StageFailed(stage string) {
	r.failures.WithLabelValues(stage).Inc()
}

func (r *Recorder) AddExtensions(n int) {
	r.extensions.Add(float64(n))
}

func (r *Recorder) SetUpperBound(v int64) {
	r.upperBound.Set(float64(v))
}

// WriteTextfile writes every metric in the registry to path in the text
// exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
