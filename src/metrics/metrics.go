package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RelationToggles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twitter_relation_toggles_total",
		Help: "Relation changes applied, by relation and action",
	}, []string{"relation", "action"})
	CascadeSteps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twitter_cascade_steps_total",
		Help: "Cascade delete steps executed, by cascade, step and outcome",
	}, []string{"cascade", "step", "outcome"})
	StoreConflicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twitter_store_version_conflicts_total",
		Help: "Optimistic concurrency retries, by collection",
	}, []string{"collection"})
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twitter_http_requests_total",
		Help: "HTTP requests served",
	}, []string{"method", "route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "twitter_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	FeedSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "twitter_feed_items",
		Help:    "Items returned per feed build",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)

func init() {
	prometheus.MustRegister(RelationToggles, CascadeSteps, StoreConflicts, HTTPRequests, HTTPDuration, FeedSize)
}

// Handler exposes the default registry.
func Handler() http.Handler { return promhttp.Handler() }

func IncRelationToggle(relation, action string) {
	RelationToggles.WithLabelValues(relation, action).Inc()
}

// ObserveCascadeStep records one cleanup unit of a cascade delete.
func ObserveCascadeStep(cascade, step string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	CascadeSteps.WithLabelValues(cascade, step, outcome).Inc()
}

func IncStoreConflict(collection string) { StoreConflicts.WithLabelValues(collection).Inc() }

func ObserveRequest(method, route string, status int, start time.Time) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

func ObserveFeedSize(n int) { FeedSize.Observe(float64(n)) }
