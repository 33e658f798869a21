package analysis

import "math"

// Drift indicator vocabulary. Each name links a metric delta to a narrative
// category understood by the stabilization catalogs.
const (
	IndicatorMetaphorDecay        = "metaphor_decay"
	IndicatorModalCompression     = "modal_compression"
	IndicatorCoherenceBreakdown   = "coherence_breakdown"
	IndicatorEmotionalInstability = "emotional_instability"
	IndicatorPronounFragmentation = "pronoun_fragmentation"
	IndicatorMissionDrift         = "mission_drift"
	IndicatorSemanticDistance     = "semantic_distance"
)

// BaselineMetrics is the stored reference shape the drift detector compares
// against, maintained by an external baseline process.
type BaselineMetrics struct {
	MetaphorDensity float64 `json:"metaphorDensity"`
	ModalDensity    float64 `json:"modalDensity"`
	CoherenceScore  float64 `json:"coherenceScore"`
	Entropy         float64 `json:"entropy"`
}

// DriftDetail breaks the drift score down per tracked metric.
type DriftDetail struct {
	MetaphorDrift  float64 `json:"metaphorDrift"`
	ModalDrift     float64 `json:"modalDrift"`
	CoherenceDrift float64 `json:"coherenceDrift"`
	EntropyDrift   float64 `json:"entropyDrift"`
}

// DriftResult is the outcome of comparing current features to the baseline.
type DriftResult struct {
	Score      float64      `json:"driftScore"`
	Indicators []string     `json:"driftIndicators"`
	Confidence float64      `json:"confidence"`
	Detail     *DriftDetail `json:"detailedDrift,omitempty"`
}

// Indicator-firing thresholds per tracked metric.
const (
	metaphorIndicatorThreshold  = 0.1
	modalIndicatorThreshold     = 0.1
	coherenceIndicatorThreshold = 0.1
	entropyIndicatorThreshold   = 0.5
)

// DetectDrift compares the current feature set against the baseline. A nil
// baseline means drift is unknown, not absent: score 0, no indicators,
// confidence 0.1. The comparison uses absolute deltas, so swapping current
// and baseline yields the same result.
func DetectDrift(current FeatureSet, baseline *BaselineMetrics) DriftResult {
	if baseline == nil {
		return DriftResult{
			Score:      0,
			Indicators: []string{},
			Confidence: 0.1,
		}
	}

	detail := DriftDetail{
		MetaphorDrift:  math.Abs(current.Coherence.MetaphorDensity - baseline.MetaphorDensity),
		ModalDrift:     math.Abs(current.Coherence.ModalDensity - baseline.ModalDensity),
		CoherenceDrift: math.Abs(current.Coherence.CoherenceScore - baseline.CoherenceScore),
		EntropyDrift:   math.Abs(current.Entropy.Entropy - baseline.Entropy),
	}

	score := (detail.MetaphorDrift + detail.ModalDrift + detail.CoherenceDrift + detail.EntropyDrift) / 4

	indicators := []string{}
	if detail.MetaphorDrift > metaphorIndicatorThreshold {
		indicators = append(indicators, IndicatorMetaphorDecay)
	}
	if detail.ModalDrift > modalIndicatorThreshold {
		indicators = append(indicators, IndicatorModalCompression)
	}
	if detail.CoherenceDrift > coherenceIndicatorThreshold {
		indicators = append(indicators, IndicatorCoherenceBreakdown)
	}
	if detail.EntropyDrift > entropyIndicatorThreshold {
		indicators = append(indicators, IndicatorEmotionalInstability)
	}

	return DriftResult{
		Score:      score,
		Indicators: indicators,
		Confidence: math.Min(1, score*2),
		Detail:     &detail,
	}
}

// MetricCategory keys the per-metric severity threshold families.
type MetricCategory string

const (
	CategoryMetaphor  MetricCategory = "metaphor"
	CategoryPronoun   MetricCategory = "pronoun"
	CategoryEmotional MetricCategory = "emotional"
	CategoryNarrative MetricCategory = "narrative"
	CategoryModal     MetricCategory = "modal"
)

// SeverityThresholds are the display cut points for one metric category.
type SeverityThresholds struct {
	Medium   float64
	High     float64
	Critical float64
}

var severityFamilies = map[MetricCategory]SeverityThresholds{
	CategoryMetaphor:  {Medium: 0.1, High: 0.2, Critical: 0.35},
	CategoryPronoun:   {Medium: 0.15, High: 0.3, Critical: 0.5},
	CategoryEmotional: {Medium: 0.1, High: 0.25, Critical: 0.4},
	CategoryNarrative: {Medium: 0.1, High: 0.2, Critical: 0.35},
	CategoryModal:     {Medium: 0.05, High: 0.15, Critical: 0.25},
}

// DriftSeverity classifies a metric delta against its category's threshold
// family. Unknown categories fall back to the metaphor family.
func DriftSeverity(delta float64, category MetricCategory) Severity {
	t, ok := severityFamilies[category]
	if !ok {
		t = severityFamilies[CategoryMetaphor]
	}
	switch {
	case delta >= t.Critical:
		return SeverityCritical
	case delta >= t.High:
		return SeverityHigh
	case delta >= t.Medium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
