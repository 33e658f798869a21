package analysis

import (
	"math"
	"regexp"
	"sort"

	"github.com/topherchris420/signal-forge-pulse/internal/lexicon"
)

const (
	resonanceIndicatorCutoff = 0.3
	confidenceSaturationLen  = 50
	topConceptCount          = 10
)

// ResonanceResult measures lexical and conceptual alignment between a sample
// and the organizational mission statement.
type ResonanceResult struct {
	Score             float64  `json:"resonanceScore"`
	SemanticAlignment float64  `json:"semanticAlignment"`
	ConceptAlignment  float64  `json:"conceptAlignment"`
	Confidence        float64  `json:"confidence"`
	Indicators        []string `json:"driftIndicators"`
}

var alphabetic = regexp.MustCompile(`^[a-zA-Z]+$`)

// ScoreResonance compares the sample text to the mission statement. An empty
// mission is a neutral default, not a failure: score 0.5, confidence 0.
// Confidence scales linearly with sample length and saturates at 50 tokens.
func ScoreResonance(text, mission string) ResonanceResult {
	if mission == "" {
		return ResonanceResult{
			Score:      0.5,
			Confidence: 0,
			Indicators: []string{},
		}
	}

	textWords := Tokenize(text)
	missionWords := Tokenize(mission)

	missionSet := make(map[string]struct{}, len(missionWords))
	for _, w := range missionWords {
		missionSet[w] = struct{}{}
	}
	overlap := 0
	for _, w := range textWords {
		if _, ok := missionSet[w]; ok {
			overlap++
		}
	}

	semantic := 0.0
	if denom := maxInt(len(textWords), len(missionWords)); denom > 0 {
		semantic = float64(overlap) / float64(denom)
	}

	missionConcepts := ExtractKeyConcepts(mission)
	textConcepts := ExtractKeyConcepts(text)

	textConceptSet := make(map[string]struct{}, len(textConcepts))
	for _, c := range textConcepts {
		textConceptSet[c] = struct{}{}
	}
	conceptOverlap := 0
	for _, c := range missionConcepts {
		if _, ok := textConceptSet[c]; ok {
			conceptOverlap++
		}
	}
	concept := float64(conceptOverlap) / float64(maxInt(len(missionConcepts), 1))

	score := (semantic + concept) / 2

	indicators := []string{}
	if score < resonanceIndicatorCutoff {
		indicators = append(indicators, IndicatorMissionDrift, IndicatorSemanticDistance)
	}

	return ResonanceResult{
		Score:             score,
		SemanticAlignment: semantic,
		ConceptAlignment:  concept,
		Confidence:        math.Min(1, float64(len(textWords))/confidenceSaturationLen),
		Indicators:        indicators,
	}
}

// ExtractKeyConcepts returns up to the ten most frequent content words:
// longer than three characters, alphabetic, not a stop word, and appearing
// more than once. Ties break alphabetically for determinism.
func ExtractKeyConcepts(text string) []string {
	frequency := make(map[string]int)
	for _, w := range Tokenize(text) {
		if len(w) > 3 && alphabetic.MatchString(w) && !lexicon.StopWords.Contains(w) {
			frequency[w]++
		}
	}

	concepts := make([]string, 0, len(frequency))
	for w, n := range frequency {
		if n > 1 {
			concepts = append(concepts, w)
		}
	}
	sort.Slice(concepts, func(i, j int) bool {
		if frequency[concepts[i]] != frequency[concepts[j]] {
			return frequency[concepts[i]] > frequency[concepts[j]]
		}
		return concepts[i] < concepts[j]
	})

	if len(concepts) > topConceptCount {
		concepts = concepts[:topConceptCount]
	}
	return concepts
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
