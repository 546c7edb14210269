package observability

import (
	"errors"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusFactory is a MetricFactory that registers prometheus collectors.
// Dotted names become underscored: folio.invoice.created is exported as
// folio_invoice_created_total.
type PrometheusFactory struct {
	reg prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	histograms map[string]prometheus.Histogram
}

var _ MetricFactory = (*PrometheusFactory)(nil)

// NewPrometheusFactory creates a factory registering into reg. A nil reg
// uses prometheus.DefaultRegisterer.
func NewPrometheusFactory(reg prometheus.Registerer) *PrometheusFactory {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusFactory{
		reg:        reg,
		counters:   make(map[string]prometheus.Counter),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// Counter returns the counter for name, creating it once.
func (f *PrometheusFactory) Counter(name string) Counter {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.counters[name]; ok {
		return c
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricName(name) + "_total",
		Help: "Total " + strings.ReplaceAll(name, ".", " ") + " events",
	})
	c = register(f.reg, c)
	f.counters[name] = c
	return c
}

// Histogram returns the histogram for name, creating it once.
func (f *PrometheusFactory) Histogram(name string) Histogram {
	f.mu.Lock()
	defer f.mu.Unlock()

	if h, ok := f.histograms[name]; ok {
		return h
	}
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    metricName(name),
		Help:    "Distribution of " + strings.ReplaceAll(name, ".", " "),
		Buckets: bucketsFor(name),
	})
	h = register(f.reg, h)
	f.histograms[name] = h
	return h
}

// register registers c, reusing an already registered identical collector.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func metricName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}

func bucketsFor(name string) []float64 {
	switch {
	case strings.HasSuffix(name, ".lines"):
		return prometheus.LinearBuckets(0, 10, 10)
	case strings.Contains(name, "amount"):
		return prometheus.ExponentialBuckets(10, 4, 10)
	default:
		return prometheus.DefBuckets
	}
}
