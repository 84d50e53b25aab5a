// Package metrics holds the process-scoped Prometheus registry shared by the
// catalog, analytics and notification services.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"
)

// Counter names used by the services
const (
	HTTPRequestsTotal      = "http_requests_total"
	ProductsCreatedTotal   = "products_created_total"
	AnalyticsEventsTotal   = "analytics_events_total"
	NotificationsSentTotal = "notifications_sent_total"
)

type counter struct {
	vec    *prometheus.CounterVec
	labels []string
}

// Registry wraps a prometheus.Registry together with the application counters
// registered on it. It is created once per process and passed to whatever needs it.
type Registry struct {
	registry *prometheus.Registry
	logger   *zap.Logger

	mu       sync.RWMutex
	counters map[string]*counter
}

// NewRegistry creates a registry with the Go runtime and process collectors registered.
func NewRegistry(logger *zap.Logger) *Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Registry{
		registry: registry,
		logger:   logger,
		counters: make(map[string]*counter),
	}
}

// RegisterCounter registers a counter vector. Registering the same name twice with
// the same label names is a no-op.
func (r *Registry) RegisterCounter(name, help string, labelNames ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.registerLocked(name, help, labelNames)
	return err
}

func (r *Registry) registerLocked(name, help string, labelNames []string) (*counter, error) {
	if c, ok := r.counters[name]; ok {
		if !sameLabels(c.labels, labelNames) {
			return nil, fmt.Errorf("counter %s already registered with labels %v", name, c.labels)
		}
		return c, nil
	}

	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labelNames)
	if err := r.registry.Register(vec); err != nil {
		return nil, fmt.Errorf("failed to register counter %s: %w", name, err)
	}

	if len(labelNames) == 0 {
		// Export unlabelled counters at zero before the first increment
		vec.WithLabelValues()
	}

	c := &counter{vec: vec, labels: append([]string(nil), labelNames...)}
	r.counters[name] = c
	return c, nil
}

// Inc increments the named counter for the given label set. It never fails: an
// unknown counter is registered on first use with the supplied label names, and a
// label set that does not fit the registered counter is logged and dropped.
func (r *Registry) Inc(name string, labels prometheus.Labels) {
	c := r.lookup(name)
	if c == nil {
		var err error
		r.mu.Lock()
		c, err = r.registerLocked(name, name+" (registered on first use)", labelNames(labels))
		r.mu.Unlock()
		if err != nil {
			r.logger.Warn("Dropping counter increment", zap.String("counter", name), zap.Error(err))
			return
		}
	}

	m, err := c.vec.GetMetricWith(labels)
	if err != nil {
		r.logger.Warn("Dropping counter increment",
			zap.String("counter", name),
			zap.Any("labels", labels),
			zap.Error(err),
		)
		return
	}
	m.Inc()
}

func (r *Registry) lookup(name string) *counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// Render writes a snapshot of every registered metric in the Prometheus text format.
func (r *Registry) Render(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Handler serves the registry for scraping. Gathering errors produce a 500.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		ErrorLog:      zap.NewStdLog(r.logger),
		ErrorHandling: promhttp.HTTPErrorOnError,
		Registry:      r.registry,
	})
}

// Registerer exposes the underlying registry so other instrumentation can
// publish into the same snapshot.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gatherer exposes the underlying registry for reading.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

func labelNames(labels prometheus.Labels) []string {
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func sameLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
