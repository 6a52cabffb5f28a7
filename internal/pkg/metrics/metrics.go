package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kupipodariday",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kupipodariday",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	wishCopies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kupipodariday",
			Subsystem: "wishes",
			Name:      "copies_total",
			Help:      "Wish copy attempts by outcome.",
		},
		[]string{"outcome"},
	)

	offersRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kupipodariday",
			Subsystem: "offers",
			Name:      "recorded_total",
			Help:      "Offers recorded against wishes.",
		},
	)

	amountRaised = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kupipodariday",
			Subsystem: "offers",
			Name:      "amount_raised_total",
			Help:      "Sum of recorded offer amounts in minor currency units.",
		},
	)

	rankingCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kupipodariday",
			Subsystem: "rankings",
			Name:      "cache_lookups_total",
			Help:      "Ranking cache lookups by result.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		wishCopies,
		offersRecorded,
		amountRaised,
		rankingCache,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request. route is the matched route
// template so ids do not explode label cardinality.
func ObserveHTTP(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCopy counts a copy attempt: "copied", "duplicate" or "failed"
func RecordCopy(outcome string) {
	wishCopies.WithLabelValues(outcome).Inc()
}

// RecordOffer counts a recorded offer and its amount
func RecordOffer(amount int64) {
	offersRecorded.Inc()
	amountRaised.Add(float64(amount))
}

// RecordRankingCache counts a ranking cache hit or miss
func RecordRankingCache(hit bool) {
	if hit {
		rankingCache.WithLabelValues("hit").Inc()
		return
	}
	rankingCache.WithLabelValues("miss").Inc()
}
