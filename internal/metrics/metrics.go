// Package metrics collects Prometheus metrics for cache and API activity.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache tiers reported by RecordCacheHit.
const (
	TierMemory = "memory"
	TierDisk   = "disk"
)

// Recorder is the metrics interface used by the cache, the stores and the
// GitHub client.
type Recorder interface {
	RecordCacheHit(tier string)
	RecordCacheMiss()
	RecordRevalidation(ok bool)
	RecordRequest(endpoint string, statusCode int, d time.Duration)
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordCacheHit(string)                    {}
func (Nop) RecordCacheMiss()                         {}
func (Nop) RecordRevalidation(bool)                  {}
func (Nop) RecordRequest(string, int, time.Duration) {}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	cacheHits     *prometheus.CounterVec
	cacheMisses   prometheus.Counter
	revalidations *prometheus.CounterVec
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ghusers_cache_hits_total",
			Help: "Cache hits by tier.",
		}, []string{"tier"}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ghusers_cache_misses_total",
			Help: "Cache lookups that found nothing usable.",
		}),
		revalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ghusers_revalidations_total",
			Help: "Background cache refreshes by result.",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ghusers_api_requests_total",
			Help: "GitHub API requests by endpoint and status code.",
		}, []string{"endpoint", "status_code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ghusers_api_request_seconds",
			Help:    "GitHub API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}

	reg.MustRegister(c.cacheHits, c.cacheMisses, c.revalidations, c.requests, c.latency)

	return c
}

// RecordCacheHit counts a hit in the given tier.
func (c *Collector) RecordCacheHit(tier string) {
	c.cacheHits.WithLabelValues(tier).Inc()
}

// RecordCacheMiss counts a miss in both tiers.
func (c *Collector) RecordCacheMiss() {
	c.cacheMisses.Inc()
}

// RecordRevalidation counts a finished background refresh.
func (c *Collector) RecordRevalidation(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	c.revalidations.WithLabelValues(result).Inc()
}

// RecordRequest records one API request. statusCode is 0 when no response
// was received.
func (c *Collector) RecordRequest(endpoint string, statusCode int, d time.Duration) {
	c.requests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	c.latency.WithLabelValues(endpoint).Observe(d.Seconds())
}
