package analysis

import (
	"github.com/topherchris420/signal-forge-pulse/internal/lexicon"
)

// AnalyzeCoherence computes the structural feature block for one sample.
// Empty input yields all-zero ratios and a coherence score of 1.0.
func AnalyzeCoherence(text string) CoherenceFeatures {
	words := Tokenize(text)
	sentences := SplitSentences(text)

	features := CoherenceFeatures{
		PronounDistribution: make(map[string]float64, len(lexicon.Pronouns)),
		CoherenceScore:      1.0,
		WordCount:           len(words),
		SentenceCount:       len(sentences),
	}
	for _, p := range lexicon.Pronouns {
		features.PronounDistribution[p] = 0
	}
	if len(words) == 0 {
		return features
	}

	total := float64(len(words))
	metaphorHits := 0
	modalHits := 0
	for _, w := range words {
		if lexicon.MetaphorCues.Contains(w) {
			metaphorHits++
		}
		if lexicon.ModalVerbs.Contains(w) {
			modalHits++
		}
		if containsString(lexicon.Pronouns, w) {
			features.PronounDistribution[w] += 1 / total
		}
	}
	features.MetaphorDensity = float64(metaphorHits) / total
	features.ModalDensity = float64(modalHits) / total

	if len(sentences) > 0 {
		features.AvgSentenceLength = total / float64(len(sentences))
	}
	features.CoherenceScore = coherenceScore(sentences)

	return features
}

// coherenceScore is the mean, over consecutive sentence pairs, of
// token-overlap divided by token-union. Defined as 1.0 below two sentences.
func coherenceScore(sentences []string) float64 {
	if len(sentences) < 2 {
		return 1.0
	}

	sum := 0.0
	for i := 1; i < len(sentences); i++ {
		prev := Tokenize(sentences[i-1])
		curr := Tokenize(sentences[i])

		currSet := make(map[string]struct{}, len(curr))
		for _, w := range curr {
			currSet[w] = struct{}{}
		}

		overlap := 0
		union := make(map[string]struct{}, len(prev)+len(curr))
		for _, w := range prev {
			if _, ok := currSet[w]; ok {
				overlap++
			}
			union[w] = struct{}{}
		}
		for _, w := range curr {
			union[w] = struct{}{}
		}
		if len(union) > 0 {
			sum += float64(overlap) / float64(len(union))
		}
	}

	return sum / float64(len(sentences)-1)
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
