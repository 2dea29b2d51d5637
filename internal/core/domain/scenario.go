package domain

import "time"

type ScenarioID string

// Scenario is a named, persisted QoE calculation.
type Scenario struct {
	ID          ScenarioID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	OwnerID     UserID     `json:"owner_id"`
	IsBaseline  bool       `json:"is_baseline"`
	Parameters  Parameters `json:"parameters"`
	Result      QoEResult  `json:"result"`
	// Implementations is indexed like Result.Recommendations.
	Implementations []Implementation `json:"implementations"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Implementation tracks whether a stored recommendation has been acted on.
type Implementation struct {
	Implemented   bool       `json:"implemented"`
	ImplementedBy UserID     `json:"implemented_by,omitempty"`
	ImplementedAt *time.Time `json:"implemented_at,omitempty"`
}

// ParameterDifference compares one parameter between two scenarios.
type ParameterDifference struct {
	A          float64 `json:"scenario1"`
	B          float64 `json:"scenario2"`
	Difference float64 `json:"difference"`
	Percentage float64 `json:"percentage"`
}

// ScenarioComparison is the side-by-side view of two scenarios.
type ScenarioComparison struct {
	A          ScenarioID                            `json:"scenario1"`
	B          ScenarioID                            `json:"scenario2"`
	Parameters map[ParameterName]ParameterDifference `json:"parameters"`
	RatingA    QualityRating                         `json:"rating1"`
	RatingB    QualityRating                         `json:"rating2"`
	ScoreDelta float64                               `json:"score_delta"`
	MetricsA   PerformanceMetrics                    `json:"metrics1"`
	MetricsB   PerformanceMetrics                    `json:"metrics2"`
}

// Clone returns a deep copy so stored scenarios never alias caller memory.
func (s *Scenario) Clone() *Scenario {
	if s == nil {
		return nil
	}
	c := *s
	c.Parameters = s.Parameters.Clone()
	c.Result.Parameters = s.Result.Parameters.Clone()
	if s.Result.Recommendations != nil {
		c.Result.Recommendations = append([]Recommendation(nil), s.Result.Recommendations...)
	}
	if s.Implementations != nil {
		c.Implementations = make([]Implementation, len(s.Implementations))
		for i, impl := range s.Implementations {
			if impl.ImplementedAt != nil {
				t := *impl.ImplementedAt
				impl.ImplementedAt = &t
			}
			c.Implementations[i] = impl
		}
	}
	return &c
}
