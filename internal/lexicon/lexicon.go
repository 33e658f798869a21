// Package lexicon holds the fixed vocabulary tables the feature extractors
// score against. The tables are versioned so threshold tuning and future
// localization stay isolated from the scoring code.
package lexicon

// Version identifies the current vocabulary revision.
const Version = "en-v1"

// MetaphorCues are tokens treated as metaphor indicators.
var MetaphorCues = newSet(
	"like", "as", "metaphor", "symbolically", "represents", "embodies",
)

// Pronouns is the tracked pronoun vocabulary, in reporting order.
var Pronouns = []string{"i", "we", "you", "they", "us", "them", "our", "their"}

// ModalVerbs are certainty indicators used for modal density.
var ModalVerbs = newSet(
	"will", "would", "should", "could", "might", "may", "must", "shall",
)

// Sentiment cue classes for entropy analysis.
var (
	PositiveCues = newSet(
		"good", "great", "excellent", "positive", "success", "achieve", "progress", "improve",
	)
	NegativeCues = newSet(
		"bad", "terrible", "negative", "fail", "problem", "issue", "concern", "difficult",
	)
	NeutralCues = newSet(
		"maybe", "perhaps", "possibly", "uncertain", "unclear", "ambiguous",
	)
)

// ContrastConjunctions are fragmentation indicators.
var ContrastConjunctions = newSet(
	"but", "however", "although", "despite", "nevertheless", "nonetheless",
)

// StopWords are excluded from key concept extraction.
var StopWords = newSet(
	"the", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with",
	"by", "is", "are", "was", "were", "be", "been", "being", "have", "has",
	"had", "do", "does", "did", "will", "would", "could", "should", "may",
	"might", "must", "shall", "can", "a", "an", "this", "that", "these", "those",
)

// Set is a constant membership table.
type Set map[string]struct{}

// Contains reports whether the word is in the set.
func (s Set) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

func newSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}
