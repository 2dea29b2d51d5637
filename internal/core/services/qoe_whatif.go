package services

import (
	"fmt"
	"math"

	"netqoe/internal/core/domain"
)

// Knob ranges of the what-if estimator. Inputs are clamped into them.
const (
	minTxPower      = 30.0 // dBm
	maxTxPower      = 50.0
	minLinkCapacity = 100.0 // Mbps
	maxLinkCapacity = 10000.0
	maxMMECapacity  = 100000.0

	// applicationImpact is fixed until application telemetry is modelled.
	applicationImpact = 75.0
)

// qciMultipliers scales the packet core score by bearer class.
var qciMultipliers = map[string]float64{
	"QCI 1": 1.2,
	"QCI 5": 1.1,
	"QCI 9": 1.0,
}

var whatIfWeights = domain.WhatIfDomainScores{
	Radio:      0.4,
	Transport:  0.3,
	Core:       0.2,
	PacketCore: 0.1,
}

// DefaultWhatIfInput is the mid-range starting point of the planner.
func DefaultWhatIfInput() domain.WhatIfInput {
	return domain.WhatIfInput{
		TxPower:      40,
		LinkCapacity: 1000,
		MMECapacity:  50000,
		QCIClass:     "QCI 9",
	}
}

// QCIClasses lists the accepted QCI labels.
func QCIClasses() []string {
	return []string{"QCI 1", "QCI 5", "QCI 9"}
}

// EstimateWhatIf derives segment scores, a composite score and the KPIs a
// subscriber would see for the given planning knobs.
func EstimateWhatIf(in domain.WhatIfInput) (domain.WhatIfResult, error) {
	qci, ok := qciMultipliers[in.QCIClass]
	if !ok {
		return domain.WhatIfResult{}, fmt.Errorf("%w: %q", domain.ErrUnknownQCIClass, in.QCIClass)
	}
	for name, v := range map[string]float64{
		"tx_power":      in.TxPower,
		"link_capacity": in.LinkCapacity,
		"mme_capacity":  in.MMECapacity,
	} {
		if math.IsNaN(v) {
			return domain.WhatIfResult{}, fmt.Errorf("%s must be a number", name)
		}
	}

	in.TxPower = clamp(in.TxPower, minTxPower, maxTxPower)
	in.LinkCapacity = clamp(in.LinkCapacity, minLinkCapacity, maxLinkCapacity)
	in.MMECapacity = clamp(in.MMECapacity, 0, maxMMECapacity)

	radio := (in.TxPower - minTxPower) / (maxTxPower - minTxPower) * 100
	if in.HighInterference {
		radio *= 0.6
	}
	transport := math.Log(in.LinkCapacity/minLinkCapacity) / math.Log(maxLinkCapacity/minLinkCapacity) * 100
	if in.HighJitter {
		transport *= 0.7
	}
	core := in.MMECapacity / maxMMECapacity * 100
	if in.CoreCongestion {
		core *= 0.5
	}
	packetCore := 80 * qci
	if in.StrictPolicyControl {
		packetCore += 10
	}

	s := domain.WhatIfDomainScores{
		Radio:      clamp(radio, 0, 100),
		Transport:  clamp(transport, 0, 100),
		Core:       clamp(core, 0, 100),
		PacketCore: clamp(packetCore, 0, 100),
	}
	score := s.Radio*whatIfWeights.Radio +
		s.Transport*whatIfWeights.Transport +
		s.Core*whatIfWeights.Core +
		s.PacketCore*whatIfWeights.PacketCore

	kpis := domain.PerformanceMetrics{
		DownloadSpeed: clamp((s.Radio*0.6+s.Transport*0.4)*1.5, 1, 150),
		UploadSpeed:   clamp((s.Radio*0.7+s.Transport*0.3)*0.5, 1, 50),
		Latency:       clamp(150-(s.Transport*0.5+s.Core*0.5), 10, 500),
		Jitter:        clamp(80-(s.Transport*0.8+s.Radio*0.2), 5, 100),
		PacketLoss:    clamp(5-(s.Radio*0.5+s.Core*0.5)/20, 0, 10),
	}

	return domain.WhatIfResult{
		Input:  in,
		Score:  round(score, 1),
		Rating: RatingFor(score),
		DomainScores: domain.WhatIfDomainScores{
			Radio:      round(s.Radio, 2),
			Transport:  round(s.Transport, 2),
			Core:       round(s.Core, 2),
			PacketCore: round(s.PacketCore, 2),
		},
		KPIs: domain.PerformanceMetrics{
			DownloadSpeed: round(kpis.DownloadSpeed, 2),
			UploadSpeed:   round(kpis.UploadSpeed, 2),
			Latency:       round(kpis.Latency, 2),
			Jitter:        round(kpis.Jitter, 2),
			PacketLoss:    round(kpis.PacketLoss, 2),
		},
		Radar: domain.WhatIfRadar{
			Throughput:  round(kpis.DownloadSpeed/150*100, 2),
			Reliability: round(100-kpis.PacketLoss*10, 2),
			Latency:     round(100-kpis.Latency/500*100, 2),
			Jitter:      round(100-kpis.Jitter, 2),
			Integrity:   round(s.Core, 2),
		},
		DomainImpact: []domain.WhatIfBar{
			{Name: "Radio Access", Score: round(s.Radio, 2)},
			{Name: "Transport", Score: round(s.Transport, 2)},
			{Name: "Core", Score: round(s.Core, 2)},
			{Name: "Packet Core", Score: round(s.PacketCore, 2)},
			{Name: "Application", Score: applicationImpact},
		},
	}, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
