package domain

// WhatIfInput is the set of planning knobs fed to the what-if estimator.
type WhatIfInput struct {
	TxPower          float64 `json:"tx_power"` // dBm
	HighInterference bool    `json:"high_interference"`

	LinkCapacity float64 `json:"link_capacity"` // Mbps
	HighJitter   bool    `json:"high_jitter"`

	MMECapacity    float64 `json:"mme_capacity"` // attached subscribers
	CoreCongestion bool    `json:"core_congestion"`

	QCIClass            string `json:"qci_class"`
	StrictPolicyControl bool   `json:"strict_policy_control"`
}

// WhatIfDomainScores holds the 0-100 health of each network segment.
type WhatIfDomainScores struct {
	Radio      float64 `json:"radio"`
	Transport  float64 `json:"transport"`
	Core       float64 `json:"core"`
	PacketCore float64 `json:"packet_core"`
}

// WhatIfRadar is the KPI profile normalized so that higher is better.
type WhatIfRadar struct {
	Throughput  float64 `json:"throughput"`
	Reliability float64 `json:"reliability"`
	Latency     float64 `json:"latency"`
	Jitter      float64 `json:"jitter"`
	Integrity   float64 `json:"integrity"`
}

// WhatIfBar is one bar of the domain impact chart.
type WhatIfBar struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// WhatIfResult is the estimator output. Input echoes the knobs after clamping.
type WhatIfResult struct {
	Input        WhatIfInput        `json:"input"`
	Score        float64            `json:"qoe_score"`
	Rating       QualityRating      `json:"quality_rating"`
	DomainScores WhatIfDomainScores `json:"domain_scores"`
	KPIs         PerformanceMetrics `json:"kpis"`
	Radar        WhatIfRadar        `json:"radar"`
	DomainImpact []WhatIfBar        `json:"domain_impact"`
}
