package services

import (
	"math"

	"netqoe/internal/core/domain"
)

// parameterTable is ordered the way parameters are presented to users.
// connected_users and bearer_rate feed logarithms, so their lower bounds must
// stay strictly positive.
var parameterTable = []domain.ParameterSpec{
	{
		Name: domain.ParamSINR, Min: -5, Max: 30, Default: 15, Unit: "dB",
		Description: "Signal to interference plus noise ratio",
	},
	{
		Name: domain.ParamPRBUtilization, Min: 0, Max: 100, Default: 50, Unit: "%",
		Description: "Physical resource block utilization",
	},
	{
		Name: domain.ParamConnectedUsers, Min: 10, Max: 500, Default: 100, Unit: "users",
		Description: "Users connected to the serving cell",
	},
	{
		Name: domain.ParamBLER, Min: 0, Max: 30, Default: 5, Unit: "%",
		Description: "Block error rate",
	},
	{
		Name: domain.ParamMPLSUtilization, Min: 0, Max: 100, Default: 60, Unit: "%",
		Description: "MPLS tunnel utilization",
	},
	{
		Name: domain.ParamLSPFlapping, Min: 0, Max: 10, Default: 0, Unit: "events/hr",
		Description: "Label switched path state transitions",
	},
	{
		Name: domain.ParamGTPEfficiency, Min: 70, Max: 100, Default: 90, Unit: "%",
		Description: "GTP-U tunnel efficiency",
	},
	{
		Name: domain.ParamBearerRate, Min: 10, Max: 500, Default: 100, Unit: "Mbps",
		Description: "Bearer QoS maximum bit rate",
	},
}

// ParameterTable returns a copy of the accepted parameter ranges and defaults.
func ParameterTable() []domain.ParameterSpec {
	out := make([]domain.ParameterSpec, len(parameterTable))
	copy(out, parameterTable)
	return out
}

// LookupParameter returns the ParameterSpec for name, if it is a recognized parameter.
func LookupParameter(name domain.ParameterName) (domain.ParameterSpec, bool) {
	for _, spec := range parameterTable {
		if spec.Name == name {
			return spec, true
		}
	}
	return domain.ParameterSpec{}, false
}

// DefaultParameters returns the full default parameter set.
func DefaultParameters() domain.Parameters {
	out := make(domain.Parameters, len(parameterTable))
	for _, spec := range parameterTable {
		out[spec.Name] = spec.Default
	}
	return out
}

// ValidateParameters returns a complete parameter set: missing (or NaN) values
// take their default, present values are clamped to their range and
// unrecognized names are dropped. It never fails.
func ValidateParameters(params domain.Parameters) domain.Parameters {
	out := make(domain.Parameters, len(parameterTable))
	for _, spec := range parameterTable {
		v, ok := params[spec.Name]
		if !ok || math.IsNaN(v) {
			out[spec.Name] = spec.Default
			continue
		}
		out[spec.Name] = spec.Clamp(v)
	}
	return out
}

// ParameterCatalog describes everything a client needs to drive the engine.
type ParameterCatalog struct {
	Parameters []domain.ParameterSpec `json:"parameters"`
	Defaults   domain.Parameters      `json:"defaults"`
	Weights    []DomainWeight         `json:"weights"`
	Thresholds []RatingThreshold      `json:"thresholds"`
}

// Catalog snapshots the parameter table, weights and rating bands.
func Catalog() ParameterCatalog {
	return ParameterCatalog{
		Parameters: ParameterTable(),
		Defaults:   DefaultParameters(),
		Weights:    DomainWeights(),
		Thresholds: RatingThresholds(),
	}
}
