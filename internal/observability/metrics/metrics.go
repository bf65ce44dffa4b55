// Package metrics provides Prometheus metrics for the word cache and word lists.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Lookup results.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

// Metrics holds the counters exported at /metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	lookupsTotal       *prometheus.CounterVec
	remoteErrorsTotal  *prometheus.CounterVec
	remoteFetchSeconds *prometheus.HistogramVec
	listMutationsTotal *prometheus.CounterVec
}

// New creates the metrics and registers them on registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "owl_word_cache_lookups_total",
				Help: "Total number of word cache lookups",
			},
			[]string{"result"}, // result: hit, miss
		),
		remoteErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "owl_word_cache_remote_errors_total",
				Help: "Total number of failed remote dictionary lookups",
			},
			[]string{"kind"},
		),
		remoteFetchSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "owl_remote_fetch_duration_seconds",
				Help:    "Time taken by remote dictionary requests",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"provider"},
		),
		listMutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "owl_word_list_mutations_total",
				Help: "Total number of history and favourites mutations",
			},
			[]string{"list", "op"},
		),
	}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements the Collector interface
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.lookupsTotal.Describe(ch)
	m.remoteErrorsTotal.Describe(ch)
	m.remoteFetchSeconds.Describe(ch)
	m.listMutationsTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.lookupsTotal.Collect(ch)
	m.remoteErrorsTotal.Collect(ch)
	m.remoteFetchSeconds.Collect(ch)
	m.listMutationsTotal.Collect(ch)
}

// RecordLookup counts a cache lookup as a hit or a miss.
func (m *Metrics) RecordLookup(hit bool) {
	if m == nil {
		return
	}
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	m.lookupsTotal.WithLabelValues(result).Inc()
}

// RecordRemoteError counts a failed remote lookup by error kind.
func (m *Metrics) RecordRemoteError(kind string) {
	if m == nil {
		return
	}
	m.remoteErrorsTotal.WithLabelValues(kind).Inc()
}

// ObserveRemoteFetch records the duration of a remote request.
func (m *Metrics) ObserveRemoteFetch(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.remoteFetchSeconds.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordListMutation counts a mutation of a word list.
func (m *Metrics) RecordListMutation(list, op string) {
	if m == nil {
		return
	}
	m.listMutationsTotal.WithLabelValues(list, op).Inc()
}
