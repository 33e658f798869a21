// Package analysis implements the linguistic drift and resonance engine:
// feature extraction over anonymized text, drift detection against a rolling
// baseline, and mission resonance scoring. Every function here is a pure
// computation over its inputs.
package analysis

import (
	"regexp"
	"strings"
)

// Severity buckets shared by drift display and alerting.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// CoherenceFeatures are the structural metrics of one text sample.
// Ratio metrics are bounded in [0,1].
type CoherenceFeatures struct {
	MetaphorDensity     float64            `json:"metaphorDensity"`
	PronounDistribution map[string]float64 `json:"pronounDistribution"`
	ModalDensity        float64            `json:"modalDensity"`
	AvgSentenceLength   float64            `json:"avgSentenceLength"`
	CoherenceScore      float64            `json:"coherenceScore"`
	WordCount           int                `json:"wordCount"`
	SentenceCount       int                `json:"sentenceCount"`
}

// SentimentCounts holds raw sentiment cue hits per class.
type SentimentCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// EntropyFeatures are the emotional metrics of one text sample. Entropy is
// bounded by log2(3) for the three-class distribution, so EmotionalStability
// (1 - entropy/2) bottoms out near 0.2 rather than 0; it is deliberately not
// renormalized.
type EntropyFeatures struct {
	Entropy               float64         `json:"entropy"`
	SentimentDistribution SentimentCounts `json:"sentimentDistribution"`
	FragmentationScore    float64         `json:"fragmentationScore"`
	EmotionalStability    float64         `json:"emotionalStability"`
}

// FeatureSet bundles both sub-analyses for drift comparison.
type FeatureSet struct {
	Coherence CoherenceFeatures `json:"coherence"`
	Entropy   EntropyFeatures   `json:"entropy"`
}

var sentenceTerminators = regexp.MustCompile(`[.!?]+`)

// Tokenize lowercases the text and splits on whitespace. This is the only
// tokenizer in the engine; feature values are defined by its exact output.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// SplitSentences splits on sentence-terminator punctuation and drops blanks.
func SplitSentences(text string) []string {
	parts := sentenceTerminators.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}
