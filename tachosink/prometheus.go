package tachosink

import (
	"time"

	"github.com/backpack-edge/backpack/timepiece"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spenczar/tdigest"
)

// Prometheus keeps the statistics of the last report in gauges
// <namespace>_<name>_seconds{stat="min|mean|max|p90"} and counts events in
// <namespace>_<name>_events_total.
type Prometheus struct {
	seconds *prometheus.GaugeVec
	events  prometheus.Counter
}

// NewPrometheus registers the collectors on reg, the default registerer if nil.
func NewPrometheus(namespace, name string, reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		seconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name + "_seconds",
			Help:      "Statistics of the last reported " + name + " tachometer window",
		}, []string{"stat"}),
		events: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name + "_events_total",
			Help:      "Number of " + name + " events reported",
		}),
	}
	reg.MustRegister(p.seconds, p.events)
	return p
}

func (p *Prometheus) Stats(ts time.Time, timer timepiece.Timer) any {
	td := tdigest.New()
	for _, v := range timer.Values() {
		td.Add(v, 1)
	}
	p.seconds.WithLabelValues("min").Set(timer.Min())
	p.seconds.WithLabelValues("mean").Set(timer.Mean())
	p.seconds.WithLabelValues("max").Set(timer.Max())
	p.seconds.WithLabelValues("p90").Set(td.Quantile(0.9))
	p.events.Add(float64(timer.Len()))
	return nil
}
