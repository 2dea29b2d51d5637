package monitoring

import (
	"strconv"
	"time"

	"netqoe/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Counters
	calculationsTotal    *prometheus.CounterVec
	recommendationsTotal *prometheus.CounterVec
	scenariosSavedTotal  prometheus.Counter

	// Histograms
	score               prometheus.Histogram
	httpRequestDuration *prometheus.HistogramVec

	// Gauges
	domainImpact    *prometheus.GaugeVec
	liveConnections prometheus.Gauge
}

// NewPrometheusCollector registers the QoE collectors on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)

	return &PrometheusCollector{
		calculationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "netqoe_calculations_total",
			Help: "Total number of QoE calculations by resulting rating",
		}, []string{"rating"}),

		recommendationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "netqoe_recommendations_total",
			Help: "Total number of recommendations emitted",
		}, []string{"domain", "severity"}),

		scenariosSavedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "netqoe_scenarios_saved_total",
			Help: "Total number of scenarios persisted",
		}),

		score: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "netqoe_score",
			Help:    "Distribution of composite QoE scores (0-100)",
			Buckets: []float64{20, 40, 50, 60, 70, 75, 80, 90, 95, 100},
		}),

		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "netqoe_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		domainImpact: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netqoe_domain_impact",
			Help: "Per-domain impact score of the last calculation (0-100)",
		}, []string{"domain"}),

		liveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "netqoe_live_connections",
			Help: "Number of open live simulation websocket connections",
		}),
	}
}

func (p *PrometheusCollector) RecordCalculation(result domain.QoEResult) {
	p.calculationsTotal.WithLabelValues(string(result.Rating)).Inc()
	p.score.Observe(result.Score)

	for _, d := range domain.NetworkDomains() {
		p.domainImpact.WithLabelValues(string(d)).Set(result.Impacts.Get(d))
	}

	for _, rec := range result.Recommendations {
		p.recommendationsTotal.WithLabelValues(string(rec.Domain), string(rec.Severity)).Inc()
	}
}

func (p *PrometheusCollector) RecordScenarioSaved() {
	p.scenariosSavedTotal.Inc()
}

func (p *PrometheusCollector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	p.httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

func (p *PrometheusCollector) RecordLiveConnected() {
	p.liveConnections.Inc()
}

func (p *PrometheusCollector) RecordLiveDisconnected() {
	p.liveConnections.Dec()
}
