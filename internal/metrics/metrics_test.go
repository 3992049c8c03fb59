package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveDerivation("dashboard")
	m.ObserveDerivation("dashboard")
	m.ObserveSkipped("breeding", 3)
	m.ObserveSkipped("breeding", 0)
	m.ObserveMessage(nil)
	m.ObserveMessage(errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.derivations.WithLabelValues("dashboard")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.skippedRecords.WithLabelValues("breeding")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.messagesSent.WithLabelValues("error")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/api/sows", 200, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "piggery_http_request_duration_seconds")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveDerivation("x")
		m.ObserveSkipped("x", 1)
		m.ObserveRequest("GET", "/", 200, time.Second)
		m.ObserveMessage(nil)
	})
	assert.Nil(t, m.Registry())
}
