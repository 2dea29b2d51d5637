package services

import (
	"math"
	"sync"
	"testing"

	"netqoe/internal/core/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func TestValidateParameters_DefaultsWhenEmpty(t *testing.T) {
	for _, in := range []domain.Parameters{nil, {}} {
		got := ValidateParameters(in)
		if diff := cmp.Diff(DefaultParameters(), got); diff != "" {
			t.Errorf("ValidateParameters(%v) mismatch (-want +got):\n%s", in, diff)
		}
	}
}

func TestValidateParameters_Clamps(t *testing.T) {
	tests := []struct {
		name  string
		param domain.ParameterName
		in    float64
		want  float64
	}{
		{"sinr far below", domain.ParamSINR, -1000, -5},
		{"sinr far above", domain.ParamSINR, 1000, 30},
		{"prb negative", domain.ParamPRBUtilization, -1, 0},
		{"users too few", domain.ParamConnectedUsers, 0, 10},
		{"users too many", domain.ParamConnectedUsers, 10000, 500},
		{"bler above", domain.ParamBLER, 31, 30},
		{"mpls above", domain.ParamMPLSUtilization, 150, 100},
		{"flap above", domain.ParamLSPFlapping, 11, 10},
		{"gtp below", domain.ParamGTPEfficiency, 10, 70},
		{"bearer zero", domain.ParamBearerRate, 0, 10},
		{"bearer negative inf", domain.ParamBearerRate, math.Inf(-1), 10},
		{"bearer positive inf", domain.ParamBearerRate, math.Inf(1), 500},
		{"in range untouched", domain.ParamSINR, 12.5, 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateParameters(domain.Parameters{tt.param: tt.in})
			assert.Equal(t, tt.want, got[tt.param])
		})
	}
}

func TestValidateParameters_NaNUsesDefault(t *testing.T) {
	got := ValidateParameters(domain.Parameters{domain.ParamSINR: math.NaN()})
	assert.Equal(t, 15.0, got[domain.ParamSINR])
}

func TestValidateParameters_IgnoresUnknownKeys(t *testing.T) {
	got := ValidateParameters(domain.Parameters{"temperature": 42, domain.ParamBLER: 7})
	assert.Len(t, got, len(parameterTable))
	assert.NotContains(t, got, domain.ParameterName("temperature"))
	assert.Equal(t, 7.0, got[domain.ParamBLER])
}

func TestValidateParameters_EveryValueWithinRange(t *testing.T) {
	extremes := []float64{-1e9, -1, 0, 1e9, math.Inf(1), math.Inf(-1)}
	for _, v := range extremes {
		in := domain.Parameters{}
		for _, spec := range parameterTable {
			in[spec.Name] = v
		}
		for _, spec := range parameterTable {
			got := ValidateParameters(in)[spec.Name]
			assert.GreaterOrEqual(t, got, spec.Min, "%s for input %v", spec.Name, v)
			assert.LessOrEqual(t, got, spec.Max, "%s for input %v", spec.Name, v)
		}
	}
}

func TestParameterTable_LogInputsHavePositiveLowerBound(t *testing.T) {
	for _, name := range []domain.ParameterName{domain.ParamConnectedUsers, domain.ParamBearerRate} {
		spec, ok := LookupParameter(name)
		require.True(t, ok, name)
		assert.Greater(t, spec.Min, 0.0, name)
	}
}

func TestParameterTable_DefaultsWithinRange(t *testing.T) {
	require.Len(t, ParameterTable(), 8)
	for _, spec := range ParameterTable() {
		assert.True(t, spec.Min < spec.Max, spec.Name)
		assert.GreaterOrEqual(t, spec.Default, spec.Min, spec.Name)
		assert.LessOrEqual(t, spec.Default, spec.Max, spec.Name)
	}
}

func TestDomainWeights_SumToOne(t *testing.T) {
	var sum float64
	for _, w := range DomainWeights() {
		sum += w.Weight
	}
	assert.InDelta(t, 1.0, sum, tolerance)
}

func TestRatingFor_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  domain.QualityRating
	}{
		{100, domain.RatingExcellent},
		{90, domain.RatingExcellent},
		{89.999, domain.RatingGood},
		{75, domain.RatingGood},
		{60, domain.RatingFair},
		{40, domain.RatingPoor},
		{39.999, domain.RatingVeryPoor},
		{0, domain.RatingVeryPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RatingFor(tt.score), "score %v", tt.score)
	}
}

// manualScore applies the impact formulas directly, without the helpers.
func manualScore(p domain.Parameters) float64 {
	sinr, prb, users, bler := p[domain.ParamSINR], p[domain.ParamPRBUtilization], p[domain.ParamConnectedUsers], p[domain.ParamBLER]
	mpls, flap, gtp, rate := p[domain.ParamMPLSUtilization], p[domain.ParamLSPFlapping], p[domain.ParamGTPEfficiency], p[domain.ParamBearerRate]

	ran := 0.4*(50+50*math.Tanh((sinr-10)/10)) + 0.3*(100-0.5*prb) +
		0.2*(100/(1+math.Exp((users-250)/50))) + 0.1*(100-3*bler)
	transport := 0.7*(100-0.8*mpls) + 0.3*(100-10*flap)
	core := 0.6*gtp + 0.4*math.Min(100, 20*math.Log10(rate))

	return 0.4*ran + 0.3*transport + 0.2*core + 0.1*85
}

func TestCompute_Defaults(t *testing.T) {
	engine := NewQoEEngine()
	result := engine.Compute(nil)

	assert.InDelta(t, manualScore(DefaultParameters()), result.Score, tolerance)
	assert.InDelta(t, 74.13753027265955, result.Score, 1e-6)
	assert.Equal(t, domain.RatingFair, result.Rating)

	assert.InDelta(t, 79.29382568164885, result.Impacts.RAN, 1e-6)
	assert.InDelta(t, 66.4, result.Impacts.Transport, 1e-9)
	assert.InDelta(t, 70.0, result.Impacts.Core, 1e-9)
	assert.Equal(t, 85.0, result.Impacts.Internet)

	assert.InDelta(t, 25.3125, result.Metrics.DownloadSpeed, 1e-9)
	assert.InDelta(t, 5.0625, result.Metrics.UploadSpeed, 1e-9)
	assert.InDelta(t, 49.333333333, result.Metrics.Latency, 1e-6)
	assert.InDelta(t, 2.0, result.Metrics.Jitter, 1e-9)
	assert.InDelta(t, 0.6, result.Metrics.PacketLoss, 1e-9)

	assert.NotNil(t, result.Recommendations)
	assert.Empty(t, result.Recommendations)

	if diff := cmp.Diff(result, engine.Compute(domain.Parameters{})); diff != "" {
		t.Errorf("nil and empty parameters differ (-nil +empty):\n%s", diff)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	engine := NewQoEEngine()
	params := domain.Parameters{
		domain.ParamSINR:            3.7,
		domain.ParamPRBUtilization:  91,
		domain.ParamConnectedUsers:  333,
		domain.ParamBLER:            12.25,
		domain.ParamMPLSUtilization: 88,
		domain.ParamLSPFlapping:     4,
		domain.ParamGTPEfficiency:   80,
		domain.ParamBearerRate:      42,
	}

	first := engine.Compute(params)
	for i := 0; i < 50; i++ {
		next := engine.Compute(params)
		if diff := cmp.Diff(first, next); diff != "" {
			t.Fatalf("run %d differs (-first +next):\n%s", i, diff)
		}
		assert.Equal(t, math.Float64bits(first.Score), math.Float64bits(next.Score))
	}
}

func TestCompute_ConcurrentCallers(t *testing.T) {
	engine := NewQoEEngine()
	want := engine.Compute(nil)

	var wg sync.WaitGroup
	results := make([]domain.QoEResult, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = engine.Compute(nil)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want.Score, got.Score)
	}
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	in := domain.Parameters{domain.ParamSINR: -1000, "unknown": 1}
	NewQoEEngine().Compute(in)
	assert.Equal(t, domain.Parameters{domain.ParamSINR: -1000, "unknown": 1}, in)
}

func TestCompute_ClampsBeforeScoring(t *testing.T) {
	engine := NewQoEEngine()
	got := engine.Compute(domain.Parameters{domain.ParamSINR: -1000})
	want := engine.Compute(domain.Parameters{domain.ParamSINR: -5})

	assert.Equal(t, -5.0, got.Parameters[domain.ParamSINR])
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("clamped result mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_RecommendationMonotonicity(t *testing.T) {
	engine := NewQoEEngine()
	before := engine.Compute(domain.Parameters{domain.ParamBLER: 5})
	after := engine.Compute(domain.Parameters{domain.ParamBLER: 15})

	for _, rec := range before.Recommendations {
		assert.Contains(t, after.Recommendations, rec)
	}

	var found bool
	for _, rec := range after.Recommendations {
		if rec.Domain == domain.DomainRAN && rec.Severity == domain.SeverityHigh && rec.ImpactEstimate == 0.18 {
			found = true
		}
	}
	assert.True(t, found, "bler > 10 recommendation missing: %+v", after.Recommendations)
	assert.Len(t, after.Recommendations, len(before.Recommendations)+1)
}

func TestCompute_GoodNetworkScenario(t *testing.T) {
	result := NewQoEEngine().Compute(domain.Parameters{
		domain.ParamSINR:            20,
		domain.ParamPRBUtilization:  30,
		domain.ParamConnectedUsers:  50,
		domain.ParamBLER:            1,
		domain.ParamMPLSUtilization: 40,
		domain.ParamLSPFlapping:     0,
		domain.ParamGTPEfficiency:   98,
		domain.ParamBearerRate:      200,
	})

	assert.Empty(t, result.Recommendations)
	assert.Contains(t, []domain.QualityRating{domain.RatingExcellent, domain.RatingGood}, result.Rating)
	assert.Greater(t, result.Metrics.DownloadSpeed, 0.0)
	assert.LessOrEqual(t, result.Metrics.DownloadSpeed, 200.0)
	assert.InDelta(t, 83.25051156101176, result.Score, 1e-6)
}

func TestCompute_TransportBoundaryScenario(t *testing.T) {
	result := NewQoEEngine().Compute(domain.Parameters{
		domain.ParamMPLSUtilization: 100,
		domain.ParamLSPFlapping:     10,
	})

	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, domain.DomainTransport, result.Recommendations[0].Domain)
	assert.Equal(t, 0.25, result.Recommendations[0].ImpactEstimate)
	assert.Equal(t, domain.DomainTransport, result.Recommendations[1].Domain)
	assert.Equal(t, 0.30, result.Recommendations[1].ImpactEstimate)
	assert.InDelta(t, 14.0, result.Impacts.Transport, 1e-9)
}

func TestGenerateRecommendations_AllRulesInOrder(t *testing.T) {
	recs := GenerateRecommendations(ValidateParameters(domain.Parameters{
		domain.ParamSINR:            0,
		domain.ParamPRBUtilization:  95,
		domain.ParamBLER:            20,
		domain.ParamMPLSUtilization: 90,
		domain.ParamLSPFlapping:     3,
		domain.ParamGTPEfficiency:   75,
		domain.ParamBearerRate:      20,
	}))

	require.Len(t, recs, len(recommendationRules))
	for i, rule := range recommendationRules {
		assert.Equal(t, rule.Domain, recs[i].Domain, "rule %d", i)
		assert.Equal(t, rule.Severity, recs[i].Severity, "rule %d", i)
		assert.Equal(t, rule.ImpactEstimate, recs[i].ImpactEstimate, "rule %d", i)
		assert.NotEmpty(t, recs[i].Message)
	}
}

func TestGenerateRecommendations_GuardsAreStrict(t *testing.T) {
	// Every guard sits exactly on its threshold, so none may fire.
	recs := GenerateRecommendations(ValidateParameters(domain.Parameters{
		domain.ParamSINR:            10,
		domain.ParamPRBUtilization:  80,
		domain.ParamBLER:            10,
		domain.ParamMPLSUtilization: 85,
		domain.ParamLSPFlapping:     2,
		domain.ParamGTPEfficiency:   85,
		domain.ParamBearerRate:      50,
	}))
	assert.Empty(t, recs)
}

func TestCompute_ExtremeCorners(t *testing.T) {
	engine := NewQoEEngine()
	worst := engine.Compute(domain.Parameters{
		domain.ParamSINR:            -5,
		domain.ParamPRBUtilization:  100,
		domain.ParamConnectedUsers:  500,
		domain.ParamBLER:            30,
		domain.ParamMPLSUtilization: 100,
		domain.ParamLSPFlapping:     10,
		domain.ParamGTPEfficiency:   70,
		domain.ParamBearerRate:      10,
	})
	best := engine.Compute(domain.Parameters{
		domain.ParamSINR:            30,
		domain.ParamPRBUtilization:  0,
		domain.ParamConnectedUsers:  10,
		domain.ParamBLER:            0,
		domain.ParamMPLSUtilization: 0,
		domain.ParamLSPFlapping:     0,
		domain.ParamGTPEfficiency:   100,
		domain.ParamBearerRate:      500,
	})

	assert.Equal(t, domain.RatingVeryPoor, worst.Rating)
	assert.Equal(t, domain.RatingExcellent, best.Rating)
	assert.InDelta(t, 400.0, best.Metrics.DownloadSpeed, 1e-9)
	assert.InDelta(t, 40.0, best.Metrics.Latency, 1e-9)
	assert.InDelta(t, 150.0, worst.Metrics.Latency, 1e-9)

	for _, r := range []domain.QoEResult{worst, best} {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 100.0)
		for _, d := range []domain.NetworkDomain{domain.DomainRAN, domain.DomainTransport, domain.DomainCore, domain.DomainInternet} {
			assert.GreaterOrEqual(t, r.Impacts.Get(d), 0.0, d)
			assert.LessOrEqual(t, r.Impacts.Get(d), 100.0, d)
		}
		// jitter and packet loss are left unclamped; they must still stay
		// non-negative at the edges of the validated domain.
		assert.GreaterOrEqual(t, r.Metrics.Jitter, 0.0)
		assert.GreaterOrEqual(t, r.Metrics.PacketLoss, 0.0)
		assert.GreaterOrEqual(t, r.Metrics.Latency, 0.0)
		assert.GreaterOrEqual(t, r.Metrics.DownloadSpeed, 0.1)
		assert.LessOrEqual(t, r.Metrics.DownloadSpeed, r.Parameters[domain.ParamBearerRate])
		assert.InDelta(t, r.Metrics.DownloadSpeed*0.2, r.Metrics.UploadSpeed, 1e-12)
	}
}

func TestCalculatePerformance_PenaltyBranches(t *testing.T) {
	p := ValidateParameters(domain.Parameters{
		domain.ParamSINR:            5,
		domain.ParamMPLSUtilization: 90,
		domain.ParamLSPFlapping:     2,
		domain.ParamBLER:            10,
		domain.ParamGTPEfficiency:   80,
	})
	m := CalculatePerformance(p)

	// 2 + (10-5)*0.3 + (90-70)*0.2 + 2*1.5
	assert.InDelta(t, 10.5, m.Jitter, 1e-9)
	// 10*0.1 + (90-80)*0.1 + (100-80)*0.01
	assert.InDelta(t, 2.2, m.PacketLoss, 1e-9)
	// air 5+20, transport 10+9+10, core 5+20/3, internet 20
	assert.InDelta(t, 25+29+5+20.0/3+20, m.Latency, 1e-9)
}
