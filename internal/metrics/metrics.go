// Package metrics exposes Prometheus counters for sessions, rewards, assistant queries and RPC latency.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Provider interface {
	IncSessionsRecorded(game string)
	IncAssistantQueries(state string)
	IncPremiumGrants()
	IncCacheHits()
	IncCacheMisses()
	ObserveRequestDuration(procedure string, duration time.Duration)
}

type PrometheusProvider struct {
	sessionsRecorded *prometheus.CounterVec
	assistantQueries *prometheus.CounterVec
	premiumGrants    prometheus.Counter
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	requestDuration  *prometheus.HistogramVec
	gatherer         prometheus.Gatherer
}

// NewProvider registers the collectors on a fresh registry, or returns a no-op provider when disabled.
func NewProvider(enabled bool) Provider {
	if !enabled {
		return &noopProvider{}
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &PrometheusProvider{
		sessionsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "neuronest_sessions_recorded_total",
			Help: "Total number of recorded game sessions",
		}, []string{"game"}),

		assistantQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "neuronest_assistant_queries_total",
			Help: "Total number of assistant queries by final state",
		}, []string{"state"}),

		premiumGrants: factory.NewCounter(prometheus.CounterOpts{
			Name: "neuronest_premium_grants_total",
			Help: "Total number of premium entitlements granted",
		}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "neuronest_kv_cache_hits_total",
			Help: "Total number of key-value cache hits",
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "neuronest_kv_cache_misses_total",
			Help: "Total number of key-value cache misses",
		}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "neuronest_rpc_duration_seconds",
			Help:    "RPC duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"procedure"}),

		gatherer: reg,
	}
}

func (m *PrometheusProvider) IncSessionsRecorded(game string) {
	m.sessionsRecorded.WithLabelValues(game).Inc()
}

func (m *PrometheusProvider) IncAssistantQueries(state string) {
	m.assistantQueries.WithLabelValues(state).Inc()
}

func (m *PrometheusProvider) IncPremiumGrants() {
	m.premiumGrants.Inc()
}

func (m *PrometheusProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *PrometheusProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *PrometheusProvider) ObserveRequestDuration(procedure string, duration time.Duration) {
	m.requestDuration.WithLabelValues(procedure).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func Handler(p Provider) http.Handler {
	if m, ok := p.(*PrometheusProvider); ok {
		return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
	}
	return http.NotFoundHandler()
}

type noopProvider struct{}

func (n *noopProvider) IncSessionsRecorded(_ string)                     {}
func (n *noopProvider) IncAssistantQueries(_ string)                     {}
func (n *noopProvider) IncPremiumGrants()                                {}
func (n *noopProvider) IncCacheHits()                                    {}
func (n *noopProvider) IncCacheMisses()                                  {}
func (n *noopProvider) ObserveRequestDuration(_ string, _ time.Duration) {}
