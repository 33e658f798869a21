package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeReplacesIdentifiers(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"person", "Talked with John Smith yesterday", "Talked with [PERSON] yesterday"},
		{"email", "reach me at jane.doe@example.com please", "reach me at [EMAIL] please"},
		{"phone", "call 555-123-4567 now", "call [PHONE] now"},
		{"date", "due 2026-03-15 at latest", "due [DATE] at latest"},
		{"time", "standup at 9:30 sharp", "standup at [TIME] sharp"},
		{"amount", "budget is $1,250.00 total", "budget is [AMOUNT] total"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Anonymize(tc.input))
		})
	}
}

func TestAnonymizeIsIdempotent(t *testing.T) {
	input := "John Smith emailed jane@example.com on 2026-01-02 at 14:05 about $400"
	once := Anonymize(input)
	assert.Equal(t, once, Anonymize(once))
}

func TestAnonymizePreservesStructure(t *testing.T) {
	input := "John Smith said the plan works. We agree."
	out := Anonymize(input)

	assert.Equal(t, len(SplitSentences(input)), len(SplitSentences(out)))
	assert.False(t, strings.Contains(out, "John"))
}

func TestAnonymizeEmptyInput(t *testing.T) {
	assert.Equal(t, "", Anonymize(""))
}
