package domain

// ParameterName identifies one of the synthetic network parameters the QoE
// engine accepts.
type ParameterName string

const (
	ParamSINR            ParameterName = "sinr"
	ParamPRBUtilization  ParameterName = "prb_utilization"
	ParamConnectedUsers  ParameterName = "connected_users"
	ParamBLER            ParameterName = "bler"
	ParamMPLSUtilization ParameterName = "mpls_utilization"
	ParamLSPFlapping     ParameterName = "lsp_flapping"
	ParamGTPEfficiency   ParameterName = "gtp_efficiency"
	ParamBearerRate      ParameterName = "bearer_rate"
)

// Parameters maps parameter names to values. Any subset of names may be present.
type Parameters map[ParameterName]float64

// Clone returns a shallow copy of p. A nil map clones to an empty one.
func (p Parameters) Clone() Parameters {
	out := make(Parameters, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ParameterSpec describes the accepted range and default of a parameter.
type ParameterSpec struct {
	Name        ParameterName `json:"name"`
	Min         float64       `json:"min"`
	Max         float64       `json:"max"`
	Default     float64       `json:"default"`
	Unit        string        `json:"unit"`
	Description string        `json:"description"`
}

// Clamp forces v into [Min, Max].
func (s ParameterSpec) Clamp(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// NetworkDomain is a segment of the end-to-end path that contributes to QoE.
type NetworkDomain string

const (
	DomainRAN       NetworkDomain = "ran"
	DomainTransport NetworkDomain = "transport"
	DomainCore      NetworkDomain = "core"
	DomainInternet  NetworkDomain = "internet"
)

// NetworkDomains lists every domain in end-to-end path order.
func NetworkDomains() []NetworkDomain {
	return []NetworkDomain{DomainRAN, DomainTransport, DomainCore, DomainInternet}
}

// DomainImpacts holds the per-domain impact scores, each in [0, 100].
type DomainImpacts struct {
	RAN       float64 `json:"ran"`
	Transport float64 `json:"transport"`
	Core      float64 `json:"core"`
	Internet  float64 `json:"internet"`
}

// Get returns the impact of a single domain.
func (d DomainImpacts) Get(nd NetworkDomain) float64 {
	switch nd {
	case DomainRAN:
		return d.RAN
	case DomainTransport:
		return d.Transport
	case DomainCore:
		return d.Core
	case DomainInternet:
		return d.Internet
	default:
		return 0
	}
}

// ByName keys the impacts by domain name.
func (d DomainImpacts) ByName() map[string]float64 {
	out := make(map[string]float64, 4)
	for _, nd := range NetworkDomains() {
		out[string(nd)] = d.Get(nd)
	}
	return out
}

// PerformanceMetrics are the user-facing figures derived from the parameters.
type PerformanceMetrics struct {
	DownloadSpeed float64 `json:"download_speed"` // Mbps
	UploadSpeed   float64 `json:"upload_speed"`   // Mbps
	Latency       float64 `json:"latency"`        // ms
	Jitter        float64 `json:"jitter"`         // ms
	PacketLoss    float64 `json:"packet_loss"`    // percent
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Recommendation is an optimization advisory produced for one calculation.
type Recommendation struct {
	Domain         NetworkDomain `json:"domain"`
	Severity       Severity      `json:"severity"`
	Message        string        `json:"recommendation"`
	ImpactEstimate float64       `json:"impact_estimate"`
}

type QualityRating string

const (
	RatingExcellent QualityRating = "Excellent"
	RatingGood      QualityRating = "Good"
	RatingFair      QualityRating = "Fair"
	RatingPoor      QualityRating = "Poor"
	RatingVeryPoor  QualityRating = "Very Poor"
)

// QoEResult is the full output of a QoE calculation.
type QoEResult struct {
	Score           float64            `json:"qoe_score"`
	Rating          QualityRating      `json:"quality_rating"`
	Metrics         PerformanceMetrics `json:"performance_metrics"`
	Impacts         DomainImpacts      `json:"domain_impacts"`
	Recommendations []Recommendation   `json:"recommendations"`
	Parameters      Parameters         `json:"parameters"`
}
