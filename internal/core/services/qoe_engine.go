package services

import (
	"netqoe/internal/core/domain"
)

// QoEEngine scores synthetic network conditions. It holds no state and is
// safe for concurrent use.
type QoEEngine struct{}

func NewQoEEngine() *QoEEngine {
	return &QoEEngine{}
}

// Compute validates params and returns the full QoE result. A nil map is the
// same as an empty one: every parameter takes its default.
func (e *QoEEngine) Compute(params domain.Parameters) domain.QoEResult {
	validated := ValidateParameters(params)

	impacts := CalculateImpacts(validated)
	score := CompositeScore(impacts)

	return domain.QoEResult{
		Score:           score,
		Rating:          RatingFor(score),
		Metrics:         CalculatePerformance(validated),
		Impacts:         impacts,
		Recommendations: GenerateRecommendations(validated),
		Parameters:      validated,
	}
}
