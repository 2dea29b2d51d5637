package monitoring

import (
	"net/http"
	"testing"
	"time"

	"netqoe/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector_RecordCalculation(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusCollector(reg)

	p.RecordCalculation(domain.QoEResult{
		Score:   62.5,
		Rating:  domain.RatingFair,
		Impacts: domain.DomainImpacts{RAN: 40, Transport: 66.4, Core: 70, Internet: 85},
		Recommendations: []domain.Recommendation{
			{Domain: domain.DomainRAN, Severity: domain.SeverityHigh},
			{Domain: domain.DomainRAN, Severity: domain.SeverityHigh},
			{Domain: domain.DomainCore, Severity: domain.SeverityMedium},
		},
	})
	p.RecordCalculation(domain.QoEResult{Score: 91, Rating: domain.RatingExcellent})

	assert.Equal(t, 1.0, testutil.ToFloat64(p.calculationsTotal.WithLabelValues("Fair")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.calculationsTotal.WithLabelValues("Excellent")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.recommendationsTotal.WithLabelValues("ran", "high")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.recommendationsTotal.WithLabelValues("core", "medium")))

	// The gauge keeps the last calculation's impacts.
	assert.Equal(t, 0.0, testutil.ToFloat64(p.domainImpact.WithLabelValues("ran")))
	assert.Equal(t, 1, testutil.CollectAndCount(p.score))
}

func TestPrometheusCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusCollector(reg)

	p.RecordScenarioSaved()
	p.RecordScenarioSaved()
	assert.Equal(t, 2.0, testutil.ToFloat64(p.scenariosSavedTotal))

	p.RecordLiveConnected()
	p.RecordLiveConnected()
	p.RecordLiveDisconnected()
	assert.Equal(t, 1.0, testutil.ToFloat64(p.liveConnections))

	p.RecordHTTPRequest(http.MethodPost, "/api/v1/qoe/calculate", 200, 15*time.Millisecond)
	p.RecordHTTPRequest(http.MethodGet, "", 404, time.Millisecond)
	assert.Equal(t, 2, testutil.CollectAndCount(p.httpRequestDuration))
}

func TestPrometheusCollector_IndependentRegistries(t *testing.T) {
	require.NotPanics(t, func() {
		NewPrometheusCollector(prometheus.NewRegistry())
		NewPrometheusCollector(prometheus.NewRegistry())
	})

	reg := prometheus.NewRegistry()
	NewPrometheusCollector(reg)
	assert.Panics(t, func() { NewPrometheusCollector(reg) }, "duplicate registration on one registry")
}
