package analysis

import (
	"math"

	"github.com/topherchris420/signal-forge-pulse/internal/lexicon"
)

// AnalyzeEntropy computes the emotional feature block for one sample:
// Shannon entropy over the three sentiment-class proportions, fragmentation
// from contrast conjunctions, and the derived stability score.
func AnalyzeEntropy(text string) EntropyFeatures {
	words := Tokenize(text)

	counts := SentimentCounts{}
	contrastHits := 0
	for _, w := range words {
		switch {
		case lexicon.PositiveCues.Contains(w):
			counts.Positive++
		case lexicon.NegativeCues.Contains(w):
			counts.Negative++
		case lexicon.NeutralCues.Contains(w):
			counts.Neutral++
		}
		if lexicon.ContrastConjunctions.Contains(w) {
			contrastHits++
		}
	}

	total := counts.Positive + counts.Negative + counts.Neutral
	if total == 0 {
		total = 1
	}

	entropy := 0.0
	for _, n := range []int{counts.Positive, counts.Negative, counts.Neutral} {
		ratio := float64(n) / float64(total)
		if ratio > 0 {
			entropy -= ratio * math.Log2(ratio)
		}
	}

	fragmentation := 0.0
	if len(words) > 0 {
		fragmentation = float64(contrastHits) / float64(len(words))
	}

	return EntropyFeatures{
		Entropy:               entropy,
		SentimentDistribution: counts,
		FragmentationScore:    fragmentation,
		EmotionalStability:    1 - entropy/2,
	}
}
