package services

import (
	"math"

	"netqoe/internal/core/domain"
)

const (
	internetLatencyMs = 20.0
	baseJitterMs      = 2.0
	uploadRatio       = 0.2
	minDownloadMbps   = 0.1
)

// CalculatePerformance derives the expected user-facing metrics from
// validated parameters. Only download speed is bounded; the remaining formulas
// are non-negative over the validated parameter ranges.
func CalculatePerformance(p domain.Parameters) domain.PerformanceMetrics {
	download := downloadSpeed(p)
	return domain.PerformanceMetrics{
		DownloadSpeed: download,
		UploadSpeed:   download * uploadRatio,
		Latency:       latency(p),
		Jitter:        jitter(p),
		PacketLoss:    packetLoss(p),
	}
}

func downloadSpeed(p domain.Parameters) float64 {
	bearer := p[domain.ParamBearerRate]

	sinrFactor := 1 - (30-p[domain.ParamSINR])/40
	prbFactor := 1 - p[domain.ParamPRBUtilization]/200
	userFactor := 1 - math.Log10(p[domain.ParamConnectedUsers])/5
	gtpFactor := p[domain.ParamGTPEfficiency] / 100

	speed := bearer * sinrFactor * prbFactor * userFactor * gtpFactor
	return clamp(speed, minDownloadMbps, bearer)
}

func latency(p domain.Parameters) float64 {
	air := 5 + math.Max(0, (15-p[domain.ParamSINR])*2)
	transport := 10 + p[domain.ParamMPLSUtilization]/10 + p[domain.ParamLSPFlapping]*5
	core := 5 + (100-p[domain.ParamGTPEfficiency])/3

	return air + transport + core + internetLatencyMs
}

func jitter(p domain.Parameters) float64 {
	j := baseJitterMs

	if sinr := p[domain.ParamSINR]; sinr < 10 {
		j += (10 - sinr) * 0.3
	}
	if mpls := p[domain.ParamMPLSUtilization]; mpls > 70 {
		j += (mpls - 70) * 0.2
	}
	if flap := p[domain.ParamLSPFlapping]; flap > 0 {
		j += flap * 1.5
	}
	return j
}

func packetLoss(p domain.Parameters) float64 {
	ran := p[domain.ParamBLER] * 0.1

	var transport float64
	if mpls := p[domain.ParamMPLSUtilization]; mpls > 80 {
		transport = (mpls - 80) * 0.1
	}

	core := (100 - p[domain.ParamGTPEfficiency]) * 0.01

	return ran + transport + core
}
