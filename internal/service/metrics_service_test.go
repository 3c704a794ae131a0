package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()
	m.ObserveTransition("drop", "success")
	m.ObserveTransition("drop", "ZERO_SHEETS")
	m.ObserveTransition("drop", "success")
	m.ObserveImport(3, 1)
	m.RecordCacheOperation(true, time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("drop", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.importRows.WithLabelValues("failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, w.Body.String(), "deck_transitions_total")
	require.Contains(t, w.Body.String(), "cache_latency_seconds_count 1")

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["cache_latency_seconds"])
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveTransition("pickup", "success")
	m.ObserveImport(1, 0)
	m.ObserveNotification("DROPPED", "sent")
	m.RecordCacheOperation(false, 0)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
