// Package metrics registers the Prometheus counters and histograms scraped
// off /metrics: platform fetch latency, cache hit ratio, bot flags
// emitted, and ranking run duration.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "statsvc"

// Metrics holds every Prometheus instrument the service exposes.
type Metrics struct {
	PlatformFetchDuration *prometheus.HistogramVec
	PlatformFetchErrors   *prometheus.CounterVec

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	BotFlagsEmitted *prometheus.CounterVec

	RankingRunDuration *prometheus.HistogramVec

	EventsProcessed   *prometheus.CounterVec
	EventsDeadLettered *prometheus.CounterVec
}

// New creates and registers every metric against reg. Passing nil
// registers against prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		PlatformFetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "platform_fetch_duration_seconds",
				Help:      "Duration of platform adapter fetch calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"platform"},
		),
		PlatformFetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "platform_fetch_errors_total",
				Help:      "Total platform adapter fetch failures.",
			},
			[]string{"platform"},
		),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_cache_hits_total",
			Help:      "Total StatsCache reads served from cache.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_cache_misses_total",
			Help:      "Total StatsCache reads that missed.",
		}),
		BotFlagsEmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bot_flags_emitted_total",
				Help:      "Total bot-detection flags emitted, by flag type.",
			},
			[]string{"flag_type"},
		),
		RankingRunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ranking_run_duration_seconds",
				Help:      "Duration of a weekly ranking calculation run.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		EventsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_processed_total",
				Help:      "Total events processed, by routing key and outcome.",
			},
			[]string{"routing_key", "outcome"},
		),
		EventsDeadLettered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_dead_lettered_total",
				Help:      "Total events routed to the dead letter stream, by routing key.",
			},
			[]string{"routing_key"},
		),
	}
}
