package stats

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"
)

var errFmtMetricExists = "fatal: metric %q already exists as type %T"

// GraphiteMetric is a measurement that can be reported in the graphite line format
type GraphiteMetric interface {
	// ReportGraphite appends the measurements to buf and resets them for the
	// next interval if needed
	ReportGraphite(prefix []byte, buf []byte, now time.Time) []byte
}

// Registry tracks metrics and reporters by name.
// Asking twice for a metric of the same name and type returns the same metric,
// so that packages instantiated several times (e.g. one SkyLine per stream)
// share their counters.
type Registry struct {
	sync.Mutex
	metrics map[string]GraphiteMetric
}

func NewRegistry() *Registry {
	return &Registry{
		metrics: make(map[string]GraphiteMetric),
	}
}

func (r *Registry) getOrAdd(name string, metric GraphiteMetric) GraphiteMetric {
	r.Lock()
	defer r.Unlock()
	if existing, ok := r.metrics[name]; ok {
		if reflect.TypeOf(existing) == reflect.TypeOf(metric) {
			return existing
		}
		panic(fmt.Sprintf(errFmtMetricExists, name, existing))
	}
	r.metrics[name] = metric
	return metric
}

// names returns the registered names, sorted
func (r *Registry) names() []string {
	r.Lock()
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	r.Unlock()
	sort.Strings(names)
	return names
}

func (r *Registry) list() map[string]GraphiteMetric {
	metrics := make(map[string]GraphiteMetric)
	r.Lock()
	for name, metric := range r.metrics {
		metrics[name] = metric
	}
	r.Unlock()
	return metrics
}

func (r *Registry) Clear() {
	r.Lock()
	r.metrics = make(map[string]GraphiteMetric)
	r.Unlock()
}

// report renders all metrics, in name order, as graphite lines
func (r *Registry) report(prefix []byte, buf []byte, now time.Time) []byte {
	metrics := r.list()
	full := make([]byte, 0, len(prefix)+64)
	for _, name := range r.names() {
		metric, ok := metrics[name]
		if !ok {
			continue
		}
		full = append(full[:0], prefix...)
		full = append(full, name...)
		full = append(full, '.')
		buf = metric.ReportGraphite(full, buf, now)
	}
	return buf
}
