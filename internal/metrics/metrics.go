// Package metrics exports taxonscope's observability hooks as Prometheus
// metrics.
//
// A [Metrics] value implements every hook interface of pkg/observability.
// [Metrics.Install] registers it globally; [Metrics.Handler] serves the
// registry for scraping at /metrics.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/taxonscope/pkg/observability"
)

const namespace = "taxonscope"

var durationBuckets = []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000}

// Metrics holds the collectors and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	resolveTotal    *prometheus.CounterVec
	resolveDuration prometheus.Histogram
	expandTotal     prometheus.Counter
	expandChildren  prometheus.Histogram
	expandDuration  prometheus.Histogram
	childPagesTotal prometheus.Counter

	occurrencePages    *prometheus.CounterVec
	occurrenceFetched  *prometheus.CounterVec
	occurrenceAdmitted *prometheus.CounterVec
	collectTotal       *prometheus.CounterVec
	collectDuration    prometheus.Histogram

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec

	serverRequests *prometheus.CounterVec
	serverDuration *prometheus.HistogramVec
}

// New creates Metrics registered with a fresh registry that also carries
// the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,

		resolveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "resolve_total",
			Help: "Name/rank lookups by outcome",
		}, []string{"rank", "found"}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "resolve_duration_ms",
			Help: "Name/rank lookup duration in milliseconds", Buckets: durationBuckets,
		}),
		expandTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "expand_total",
			Help: "Tree nodes expanded",
		}),
		expandChildren: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "expand_children",
			Help: "Children attached per expansion", Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		}),
		expandDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "expand_duration_ms",
			Help: "Expansion duration in milliseconds", Buckets: durationBuckets,
		}),
		childPagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "children_pages_total",
			Help: "Children pages fetched from the checklist service",
		}),

		occurrencePages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "occurrence_pages_total",
			Help: "Occurrence pages requested by region and status",
		}, []string{"region", "status"}),
		occurrenceFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "occurrence_records_fetched_total",
			Help: "Occurrence records received by region",
		}, []string{"region"}),
		occurrenceAdmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "occurrence_records_admitted_total",
			Help: "Occurrence records admitted by region",
		}, []string{"region"}),
		collectTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "collect_total",
			Help: "Collection runs by status",
		}, []string{"status"}),
		collectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "collect_duration_ms",
			Help:    "Collection run duration in milliseconds",
			Buckets: []float64{100, 500, 1000, 2000, 5000, 10000, 30000, 60000},
		}),

		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_hits_total",
			Help: "Memo hits by key kind",
		}, []string{"kind"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_misses_total",
			Help: "Memo misses by key kind",
		}, []string{"kind"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_written_bytes_total",
			Help: "Bytes written to the memo backend by key kind",
		}, []string{"kind"}),

		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "upstream_requests_total",
			Help: "Requests to upstream APIs by host and status code",
		}, []string{"host", "code"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "upstream_duration_ms",
			Help: "Upstream request duration in milliseconds", Buckets: durationBuckets,
		}, []string{"host"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "upstream_errors_total",
			Help: "Upstream transport failures by host",
		}, []string{"host"}),

		serverRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests served by route and status code",
		}, []string{"route", "code"}),
		serverDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_ms",
			Help: "HTTP request duration in milliseconds", Buckets: durationBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.resolveTotal, m.resolveDuration,
		m.expandTotal, m.expandChildren, m.expandDuration, m.childPagesTotal,
		m.occurrencePages, m.occurrenceFetched, m.occurrenceAdmitted,
		m.collectTotal, m.collectDuration,
		m.cacheHits, m.cacheMisses, m.cacheBytes,
		m.upstreamRequests, m.upstreamDuration, m.upstreamErrors,
		m.serverRequests, m.serverDuration,
	)
	return m
}

// Install registers m as the global hook implementation for every category.
func (m *Metrics) Install() {
	observability.SetTraversalHooks(m)
	observability.SetCollectHooks(collectHooks{m})
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// OnResolve implements observability.TraversalHooks.
func (m *Metrics) OnResolve(_ context.Context, _ string, rank string, found bool, d time.Duration) {
	if rank == "" {
		rank = "any"
	}
	m.resolveTotal.WithLabelValues(rank, strconv.FormatBool(found)).Inc()
	m.resolveDuration.Observe(ms(d))
}

// OnExpand implements observability.TraversalHooks.
func (m *Metrics) OnExpand(_ context.Context, _ int64, children int, d time.Duration) {
	m.expandTotal.Inc()
	m.expandChildren.Observe(float64(children))
	m.expandDuration.Observe(ms(d))
}

// OnPage implements observability.TraversalHooks.
func (m *Metrics) OnPage(context.Context, int64, int, int) {
	m.childPagesTotal.Inc()
}

// collectHooks adapts Metrics to observability.CollectHooks, whose OnPage
// signature differs from the traversal one.
type collectHooks struct{ m *Metrics }

func (h collectHooks) OnPage(_ context.Context, region string, _ int, fetched, admitted int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	h.m.occurrencePages.WithLabelValues(region, status).Inc()
	h.m.occurrenceFetched.WithLabelValues(region).Add(float64(fetched))
	h.m.occurrenceAdmitted.WithLabelValues(region).Add(float64(admitted))
}

func (h collectHooks) OnComplete(_ context.Context, _ int64, _ int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "canceled"
	}
	h.m.collectTotal.WithLabelValues(status).Inc()
	h.m.collectDuration.Observe(ms(d))
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, kind string) {
	m.cacheHits.WithLabelValues(kind).Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, kind string) {
	m.cacheMisses.WithLabelValues(kind).Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, kind string, size int) {
	m.cacheBytes.WithLabelValues(kind).Add(float64(size))
}

// OnRequest implements observability.HTTPHooks.
func (m *Metrics) OnRequest(context.Context, string, string, string) {}

// OnResponse implements observability.HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	m.upstreamRequests.WithLabelValues(host, strconv.Itoa(code)).Inc()
	m.upstreamDuration.WithLabelValues(host).Observe(ms(d))
}

// OnError implements observability.HTTPHooks.
func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.upstreamErrors.WithLabelValues(host).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	m.serverRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.serverDuration.WithLabelValues(route).Observe(ms(d))
}
