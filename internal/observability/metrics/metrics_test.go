package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLookup(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := New(registry)
	require.NoError(t, err)

	m.RecordLookup(true)
	m.RecordLookup(true)
	m.RecordLookup(false)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.lookupsTotal.WithLabelValues(ResultHit)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.lookupsTotal.WithLabelValues(ResultMiss)))
}

func TestRecordRemoteErrorAndMutations(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := New(registry)
	require.NoError(t, err)

	m.RecordRemoteError("throttled")
	m.RecordListMutation("favourites", "add")
	m.RecordListMutation("favourites", "add")
	m.RecordListMutation("history", "clear")
	m.ObserveRemoteFetch("freedict", 120*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.remoteErrorsTotal.WithLabelValues("throttled")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.listMutationsTotal.WithLabelValues("favourites", "add")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.listMutationsTotal.WithLabelValues("history", "clear")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.remoteFetchSeconds))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := New(registry)
	require.NoError(t, err)

	_, err = New(registry)
	assert.Error(t, err)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordLookup(true)
		m.RecordRemoteError("network")
		m.RecordListMutation("history", "add")
		m.ObserveRemoteFetch("ninja", time.Second)
	})
}
