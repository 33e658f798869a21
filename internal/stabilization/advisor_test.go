package stabilization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topherchris420/signal-forge-pulse/internal/analysis"
)

func TestRepairPromptsDropsUnknownIndicators(t *testing.T) {
	prompts := RepairPrompts([]string{
		analysis.IndicatorMetaphorDecay,
		"not_a_real_indicator",
		analysis.IndicatorCoherenceBreakdown,
	})

	require.Len(t, prompts, 2)
	assert.Equal(t, repairPromptCatalog[analysis.IndicatorMetaphorDecay].Title, prompts[0].Title)
	assert.Equal(t, repairPromptCatalog[analysis.IndicatorCoherenceBreakdown].Title, prompts[1].Title)
}

func TestRepairPromptsEmptyInput(t *testing.T) {
	assert.Empty(t, RepairPrompts(nil))
}

func TestAlignmentRitualsBySeverity(t *testing.T) {
	critical := AlignmentRituals(analysis.SeverityCritical)
	require.Len(t, critical, 3)
	assert.Equal(t, emergencyResetRitual.Name, critical[0].Name)
	assert.Equal(t, namingCeremonyRitual.Name, critical[1].Name)
	assert.Equal(t, reflectiveQueryRitual.Name, critical[2].Name)

	high := AlignmentRituals(analysis.SeverityHigh)
	require.Len(t, high, 2)
	assert.Equal(t, namingCeremonyRitual.Name, high[0].Name)

	medium := AlignmentRituals(analysis.SeverityMedium)
	require.Len(t, medium, 1)
	assert.Equal(t, reflectiveQueryRitual.Name, medium[0].Name)
}

func TestGeneratePackage(t *testing.T) {
	pkg := GeneratePackage([]string{analysis.IndicatorEmotionalInstability}, analysis.SeverityHigh)

	assert.Len(t, pkg.RepairPrompts, 1)
	assert.Len(t, pkg.AlignmentRituals, 2)
	assert.Len(t, pkg.ReframingStrategies, 4)
	assert.NotEmpty(t, pkg.ImplementationPlan.Immediate)
	assert.NotEmpty(t, pkg.ImplementationPlan.Evaluation)
}

func TestAssessEffectivenessIdenticalSnapshots(t *testing.T) {
	snapshot := MetricSnapshot{
		CoherenceScore:     0.7,
		MetaphorDensity:    0.1,
		ModalDensity:       0.2,
		EmotionalStability: 0.8,
		ResonanceScore:     0.6,
	}

	assessment := AssessEffectiveness(snapshot, snapshot)

	assert.Equal(t, 0.5, assessment.EffectivenessScore)
	assert.Empty(t, assessment.Improvements)
	assert.Empty(t, assessment.Degradations)
	assert.Equal(t, RecommendModify, assessment.Recommendation)
}

func TestAssessEffectivenessAllImproved(t *testing.T) {
	before := MetricSnapshot{CoherenceScore: 0.4, MetaphorDensity: 0.1, ModalDensity: 0.1, EmotionalStability: 0.5, ResonanceScore: 0.3}
	after := MetricSnapshot{CoherenceScore: 0.6, MetaphorDensity: 0.3, ModalDensity: 0.3, EmotionalStability: 0.7, ResonanceScore: 0.5}

	assessment := AssessEffectiveness(before, after)

	assert.Equal(t, 1.0, assessment.EffectivenessScore)
	assert.Len(t, assessment.Improvements, 5)
	assert.Equal(t, RecommendContinue, assessment.Recommendation)
}

func TestAssessEffectivenessAllDegraded(t *testing.T) {
	before := MetricSnapshot{CoherenceScore: 0.8, MetaphorDensity: 0.4, ModalDensity: 0.4, EmotionalStability: 0.9, ResonanceScore: 0.7}
	after := MetricSnapshot{CoherenceScore: 0.5, MetaphorDensity: 0.1, ModalDensity: 0.1, EmotionalStability: 0.6, ResonanceScore: 0.4}

	assessment := AssessEffectiveness(before, after)

	assert.Equal(t, 0.0, assessment.EffectivenessScore)
	assert.Len(t, assessment.Degradations, 5)
	assert.Equal(t, RecommendDiscontinue, assessment.Recommendation)
}

func TestAssessEffectivenessSmallChangeNotSignificant(t *testing.T) {
	before := MetricSnapshot{CoherenceScore: 0.5}
	after := MetricSnapshot{CoherenceScore: 0.53125}

	assessment := AssessEffectiveness(before, after)

	assert.Empty(t, assessment.Improvements)
	assert.Equal(t, RecommendModify, assessment.Recommendation)
}

func TestAssessEffectivenessMixedChanges(t *testing.T) {
	before := MetricSnapshot{CoherenceScore: 0.4, ResonanceScore: 0.7}
	after := MetricSnapshot{CoherenceScore: 0.6, ResonanceScore: 0.5}

	assessment := AssessEffectiveness(before, after)

	assert.Equal(t, 0.5, assessment.EffectivenessScore)
	assert.Len(t, assessment.Improvements, 1)
	assert.Len(t, assessment.Degradations, 1)
	assert.Equal(t, RecommendModify, assessment.Recommendation)
}
