package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ConversionCollector bundles the Prometheus metrics of the conversion
// server.
type ConversionCollector struct {
	gatherer prometheus.Gatherer

	Conversions *prometheus.CounterVec
	Durations   *prometheus.HistogramVec
	Waypoints   prometheus.Histogram
	CacheHits   prometheus.Counter
}

// NewConversionCollector registers conversion metrics against reg,
// defaulting to the global registry when nil.
func NewConversionCollector(reg prometheus.Registerer) (*ConversionCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	conversions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "litchitool_conversions_total",
		Help: "Conversions handled, labeled by endpoint and result.",
	}, []string{"endpoint", "result"}), "litchitool_conversions_total")
	if err != nil {
		return nil, err
	}
	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "litchitool_conversion_duration_seconds",
		Help:    "Conversion latency in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
	}, []string{"endpoint"}), "litchitool_conversion_duration_seconds")
	if err != nil {
		return nil, err
	}
	waypoints, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "litchitool_mission_waypoints",
		Help:    "Waypoints per converted mission.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}), "litchitool_mission_waypoints")
	if err != nil {
		return nil, err
	}
	hits, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "litchitool_cache_hits_total",
		Help: "Conversions served from the result cache.",
	}), "litchitool_cache_hits_total")
	if err != nil {
		return nil, err
	}

	return &ConversionCollector{
		gatherer:    gatherer,
		Conversions: conversions,
		Durations:   durations,
		Waypoints:   waypoints,
		CacheHits:   hits,
	}, nil
}

// ObserveConversion records one request. waypoints is ignored for failures.
func (c *ConversionCollector) ObserveConversion(endpoint string, start time.Time, waypoints int, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.Conversions.WithLabelValues(endpoint, result).Inc()
	c.Durations.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err == nil {
		c.Waypoints.Observe(float64(waypoints))
	}
}

// CacheHit counts a cached response.
func (c *ConversionCollector) CacheHit() {
	if c == nil {
		return
	}
	c.CacheHits.Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ConversionCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// register adds coll to reg, returning the already registered collector of
// the same type if there is one.
func register[T prometheus.Collector](reg prometheus.Registerer, coll T, name string) (T, error) {
	if err := reg.Register(coll); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return coll, nil
}
