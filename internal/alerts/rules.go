// Package alerts converts drift and resonance scores into alerts via fixed
// threshold rules, with templated interpretive narratives and a two-tier
// recommended action list per alert type.
package alerts

import (
	"fmt"
	"strings"

	"github.com/topherchris420/signal-forge-pulse/internal/analysis"
)

// Alert types.
const (
	TypeDrift     = "drift"
	TypeResonance = "resonance"
)

// Alert lifecycle states.
const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
)

// Firing thresholds. Both rules evaluate independently; one sample may open
// both a drift and a resonance alert.
const (
	driftAlertThreshold        = 0.7
	driftCriticalThreshold     = 0.9
	resonanceAlertThreshold    = 0.3
	resonanceCriticalThreshold = 0.15
)

// RecommendedActions is the fixed two-tier action list keyed by alert type.
// DriftIndicators carries the triggering indicator set so the stabilization
// advisor can trace interventions back to it.
type RecommendedActions struct {
	Immediate       []string `json:"immediate"`
	Stabilization   []string `json:"stabilization"`
	DriftIndicators []string `json:"drift_indicators,omitempty"`
}

// Alert is a threshold breach with narrative context. Resolution happens
// through the store, outside the rule engine.
type Alert struct {
	Type                 string             `json:"alert_type"`
	Severity             analysis.Severity  `json:"severity"`
	Title                string             `json:"title"`
	Description          string             `json:"description"`
	InterpretiveAnalysis string             `json:"interpretive_analysis"`
	RecommendedActions   RecommendedActions `json:"recommended_actions"`
}

// RuleEngine evaluates the fixed alert rules.
type RuleEngine struct{}

func NewRuleEngine() *RuleEngine {
	return &RuleEngine{}
}

// Evaluate applies both firing rules to whichever results were computed and
// returns zero or more alerts.
func (e *RuleEngine) Evaluate(drift *analysis.DriftResult, resonance *analysis.ResonanceResult) []Alert {
	var fired []Alert

	if drift != nil && drift.Score > driftAlertThreshold {
		severity := analysis.SeverityHigh
		if drift.Score > driftCriticalThreshold {
			severity = analysis.SeverityCritical
		}
		fired = append(fired, Alert{
			Type:        TypeDrift,
			Severity:    severity,
			Title:       "Symbolic Drift Detected",
			Description: "Significant linguistic drift detected in organizational unit",
			InterpretiveAnalysis: fmt.Sprintf(
				"The symbolic patterns show %s with a drift magnitude of %.1f%%. This suggests the team's linguistic coherence is diverging from established baselines, potentially indicating cultural or operational misalignment.",
				strings.Join(drift.Indicators, ", "), drift.Score*100,
			),
			RecommendedActions: RecommendedActions{
				Immediate:       []string{"Review recent communication patterns", "Schedule team alignment session"},
				Stabilization:   []string{"Implement narrative reset protocol", "Conduct symbolic coherence workshop"},
				DriftIndicators: drift.Indicators,
			},
		})
	}

	if resonance != nil && resonance.Score < resonanceAlertThreshold {
		severity := analysis.SeverityMedium
		if resonance.Score < resonanceCriticalThreshold {
			severity = analysis.SeverityCritical
		}
		fired = append(fired, Alert{
			Type:        TypeResonance,
			Severity:    severity,
			Title:       "Mission Resonance Decline",
			Description: "Team language showing drift from organizational mission",
			InterpretiveAnalysis: fmt.Sprintf(
				"Current communication patterns show only %.1f%% alignment with the organizational mission. This linguistic distance suggests potential mission drift or unclear strategic messaging.",
				resonance.Score*100,
			),
			RecommendedActions: RecommendedActions{
				Immediate:       []string{"Review mission statement clarity", "Analyze recent strategic communications"},
				Stabilization:   []string{"Mission realignment workshop", "Narrative coherence training"},
				DriftIndicators: resonance.Indicators,
			},
		})
	}

	return fired
}
