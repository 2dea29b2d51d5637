package services

import (
	"netqoe/internal/core/domain"
)

// RecommendationRule emits one recommendation when Guard holds.
type RecommendationRule struct {
	Domain         domain.NetworkDomain
	Severity       domain.Severity
	ImpactEstimate float64
	Message        string
	Guard          func(p domain.Parameters) bool
}

// recommendationRules are evaluated in order; that order is the output order.
var recommendationRules = []RecommendationRule{
	{
		Domain:         domain.DomainRAN,
		Severity:       domain.SeverityHigh,
		ImpactEstimate: 0.20,
		Message:        "Improve signal quality (SINR) by optimizing antenna tilt or transmit power.",
		Guard:          func(p domain.Parameters) bool { return p[domain.ParamSINR] < 10 },
	},
	{
		Domain:         domain.DomainRAN,
		Severity:       domain.SeverityMedium,
		ImpactEstimate: 0.15,
		Message:        "High PRB utilization detected. Consider adding carrier aggregation or new cells to offload traffic.",
		Guard:          func(p domain.Parameters) bool { return p[domain.ParamPRBUtilization] > 80 },
	},
	{
		Domain:         domain.DomainRAN,
		Severity:       domain.SeverityHigh,
		ImpactEstimate: 0.18,
		Message:        "High block error rate detected. Check for interference sources or adjust modulation and coding scheme.",
		Guard:          func(p domain.Parameters) bool { return p[domain.ParamBLER] > 10 },
	},
	{
		Domain:         domain.DomainTransport,
		Severity:       domain.SeverityHigh,
		ImpactEstimate: 0.25,
		Message:        "MPLS tunnel utilization is critical. Increase bandwidth or implement traffic engineering.",
		Guard:          func(p domain.Parameters) bool { return p[domain.ParamMPLSUtilization] > 85 },
	},
	{
		Domain:         domain.DomainTransport,
		Severity:       domain.SeverityHigh,
		ImpactEstimate: 0.30,
		Message:        "Excessive LSP flapping detected. Check for network instability or equipment issues.",
		Guard:          func(p domain.Parameters) bool { return p[domain.ParamLSPFlapping] > 2 },
	},
	{
		Domain:         domain.DomainCore,
		Severity:       domain.SeverityMedium,
		ImpactEstimate: 0.12,
		Message:        "Low GTP tunnel efficiency. Optimize packet handling or check for fragmentation issues.",
		Guard:          func(p domain.Parameters) bool { return p[domain.ParamGTPEfficiency] < 85 },
	},
	{
		Domain:         domain.DomainCore,
		Severity:       domain.SeverityLow,
		ImpactEstimate: 0.08,
		Message:        "Consider increasing bearer QoS rate to improve potential throughput.",
		Guard:          func(p domain.Parameters) bool { return p[domain.ParamBearerRate] < 50 },
	},
}

// GenerateRecommendations runs every rule against validated parameters. The
// result is never nil.
func GenerateRecommendations(p domain.Parameters) []domain.Recommendation {
	recs := make([]domain.Recommendation, 0, len(recommendationRules))
	for _, rule := range recommendationRules {
		if !rule.Guard(p) {
			continue
		}
		recs = append(recs, domain.Recommendation{
			Domain:         rule.Domain,
			Severity:       rule.Severity,
			Message:        rule.Message,
			ImpactEstimate: rule.ImpactEstimate,
		})
	}
	return recs
}
