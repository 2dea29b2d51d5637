package services

import (
	"math"

	"netqoe/internal/core/domain"
)

// DomainWeight is the share of the composite score contributed by a domain.
type DomainWeight struct {
	Domain domain.NetworkDomain `json:"domain"`
	Weight float64              `json:"weight"`
}

// domainWeights must sum to 1.0.
var domainWeights = []DomainWeight{
	{Domain: domain.DomainRAN, Weight: 0.4},
	{Domain: domain.DomainTransport, Weight: 0.3},
	{Domain: domain.DomainCore, Weight: 0.2},
	{Domain: domain.DomainInternet, Weight: 0.1},
}

// RatingThreshold maps the lowest score of a band to its rating.
type RatingThreshold struct {
	MinScore float64              `json:"min_score"`
	Rating   domain.QualityRating `json:"rating"`
}

// ratingThresholds is ordered from the highest band down.
var ratingThresholds = []RatingThreshold{
	{MinScore: 90, Rating: domain.RatingExcellent},
	{MinScore: 75, Rating: domain.RatingGood},
	{MinScore: 60, Rating: domain.RatingFair},
	{MinScore: 40, Rating: domain.RatingPoor},
}

// internetImpact is fixed until peering telemetry is modelled.
const internetImpact = 85.0

// DomainWeights returns a copy of the composite score weights.
func DomainWeights() []DomainWeight {
	out := make([]DomainWeight, len(domainWeights))
	copy(out, domainWeights)
	return out
}

// RatingThresholds returns a copy of the rating bands, highest first.
func RatingThresholds() []RatingThreshold {
	out := make([]RatingThreshold, len(ratingThresholds))
	copy(out, ratingThresholds)
	return out
}

// RatingFor converts a composite score to its qualitative rating. Band lower
// bounds are inclusive.
func RatingFor(score float64) domain.QualityRating {
	for _, t := range ratingThresholds {
		if score >= t.MinScore {
			return t.Rating
		}
	}
	return domain.RatingVeryPoor
}

// CalculateImpacts evaluates every domain against validated parameters.
func CalculateImpacts(p domain.Parameters) domain.DomainImpacts {
	return domain.DomainImpacts{
		RAN:       ranImpact(p),
		Transport: transportImpact(p),
		Core:      coreImpact(p),
		Internet:  internetImpact,
	}
}

// CompositeScore is the weighted sum of the domain impacts.
func CompositeScore(impacts domain.DomainImpacts) float64 {
	var score float64
	for _, w := range domainWeights {
		score += impacts.Get(w.Domain) * w.Weight
	}
	return score
}

func ranImpact(p domain.Parameters) float64 {
	sinr := 50 + 50*math.Tanh((p[domain.ParamSINR]-10)/10)
	prb := 100 - 0.5*p[domain.ParamPRBUtilization]
	users := 100 / (1 + math.Exp((p[domain.ParamConnectedUsers]-250)/50))
	bler := 100 - 3*p[domain.ParamBLER]

	return clampScore(0.4*sinr + 0.3*prb + 0.2*users + 0.1*bler)
}

func transportImpact(p domain.Parameters) float64 {
	mpls := 100 - 0.8*p[domain.ParamMPLSUtilization]
	flap := 100 - 10*p[domain.ParamLSPFlapping]

	return clampScore(0.7*mpls + 0.3*flap)
}

func coreImpact(p domain.Parameters) float64 {
	gtp := p[domain.ParamGTPEfficiency]
	rate := math.Min(100, 20*math.Log10(p[domain.ParamBearerRate]))

	return clampScore(0.6*gtp + 0.4*rate)
}

func clampScore(v float64) float64 {
	return clamp(v, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
