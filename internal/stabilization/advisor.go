// Package stabilization maps alert indicator sets to a catalog of corrective
// interventions and scores intervention effectiveness from before/after
// feature snapshots. The catalogs are immutable data loaded at process start.
package stabilization

import "github.com/topherchris420/signal-forge-pulse/internal/analysis"

// Intervention types and implementation statuses.
const (
	TypePrompt    = "prompt"
	TypeRitual    = "ritual"
	TypeReframing = "reframing"

	StatusSuggested   = "suggested"
	StatusImplemented = "implemented"
	StatusCompleted   = "completed"
)

// Effectiveness recommendations.
const (
	RecommendContinue    = "continue"
	RecommendModify      = "modify"
	RecommendDiscontinue = "discontinue"
)

const significantChange = 0.05

// ImplementationPlan sequences a generated intervention package.
type ImplementationPlan struct {
	Immediate  string `json:"immediate"`
	ShortTerm  string `json:"shortTerm"`
	LongTerm   string `json:"longTerm"`
	Evaluation string `json:"evaluation"`
}

// Package is the full intervention bundle generated for one alert.
type Package struct {
	RepairPrompts       []RepairPrompt      `json:"repairPrompts"`
	AlignmentRituals    []Ritual            `json:"alignmentRituals"`
	ReframingStrategies []ReframingStrategy `json:"reframingStrategies"`
	ImplementationPlan  ImplementationPlan  `json:"implementationPlan"`
}

// RepairPrompts looks up the catalog entry for each indicator, preserving
// input order. Unknown indicators are dropped, not errors.
func RepairPrompts(indicators []string) []RepairPrompt {
	prompts := make([]RepairPrompt, 0, len(indicators))
	for _, indicator := range indicators {
		if prompt, ok := repairPromptCatalog[indicator]; ok {
			prompts = append(prompts, prompt)
		}
	}
	return prompts
}

// AlignmentRituals selects rituals by alert severity. Critical alerts get the
// emergency reset, high or critical get the naming ceremony, and every alert
// gets the reflective query practice.
func AlignmentRituals(severity analysis.Severity) []Ritual {
	var rituals []Ritual
	if severity == analysis.SeverityCritical {
		rituals = append(rituals, emergencyResetRitual)
	}
	if severity == analysis.SeverityHigh || severity == analysis.SeverityCritical {
		rituals = append(rituals, namingCeremonyRitual)
	}
	rituals = append(rituals, reflectiveQueryRitual)
	return rituals
}

// ReframingStrategies returns the full four-category catalog; it is not keyed
// on the alert.
func ReframingStrategies() []ReframingStrategy {
	strategies := make([]ReframingStrategy, len(reframingCatalog))
	copy(strategies, reframingCatalog)
	return strategies
}

// GeneratePackage assembles the complete intervention bundle for an alert.
func GeneratePackage(indicators []string, severity analysis.Severity) Package {
	return Package{
		RepairPrompts:       RepairPrompts(indicators),
		AlignmentRituals:    AlignmentRituals(severity),
		ReframingStrategies: ReframingStrategies(),
		ImplementationPlan: ImplementationPlan{
			Immediate:  "Choose 1-2 repair prompts to implement this week",
			ShortTerm:  "Begin one alignment ritual within 2 weeks",
			LongTerm:   "Integrate reframing strategies into daily communication",
			Evaluation: "Assess effectiveness after 4-6 weeks of consistent practice",
		},
	}
}

// MetricSnapshot holds the five metrics compared by effectiveness assessment.
type MetricSnapshot struct {
	CoherenceScore     float64 `json:"coherenceScore"`
	MetaphorDensity    float64 `json:"metaphorDensity"`
	ModalDensity       float64 `json:"modalDensity"`
	EmotionalStability float64 `json:"emotionalStability"`
	ResonanceScore     float64 `json:"resonanceScore"`
}

// Assessment is the outcome of a before/after comparison.
type Assessment struct {
	EffectivenessScore float64            `json:"effectivenessScore"`
	Improvements       map[string]float64 `json:"improvements"`
	Degradations       map[string]float64 `json:"degradations"`
	Recommendation     string             `json:"recommendation"`
}

// AssessEffectiveness classifies each metric whose signed change exceeds the
// significance threshold as an improvement or degradation, then maps the net
// ratio into [0,1]. Identical snapshots score exactly 0.5 with
// recommendation "modify".
func AssessEffectiveness(before, after MetricSnapshot) Assessment {
	changes := map[string]float64{
		"coherenceScore":     after.CoherenceScore - before.CoherenceScore,
		"metaphorDensity":    after.MetaphorDensity - before.MetaphorDensity,
		"modalDensity":       after.ModalDensity - before.ModalDensity,
		"emotionalStability": after.EmotionalStability - before.EmotionalStability,
		"resonanceScore":     after.ResonanceScore - before.ResonanceScore,
	}

	improvements := make(map[string]float64)
	degradations := make(map[string]float64)
	for metric, change := range changes {
		switch {
		case change > significantChange:
			improvements[metric] = change
		case change < -significantChange:
			degradations[metric] = -change
		}
	}

	net := float64(len(improvements)-len(degradations)) / float64(len(changes))

	score := (net + 1) / 2
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	recommendation := RecommendModify
	if net > 0.2 {
		recommendation = RecommendContinue
	} else if net < -0.2 {
		recommendation = RecommendDiscontinue
	}

	return Assessment{
		EffectivenessScore: score,
		Improvements:       improvements,
		Degradations:       degradations,
		Recommendation:     recommendation,
	}
}
