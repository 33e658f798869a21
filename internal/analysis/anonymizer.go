package analysis

import "regexp"

// Rules run in order; the person pattern runs first and may claim
// two-capitalized-word forms before the team/department/project patterns.
var anonymizerRules = []struct {
	pattern     *regexp.Regexp
	placeholder string
}{
	{regexp.MustCompile(`\b[A-Z][a-z]+\s[A-Z][a-z]+\b`), "[PERSON]"},
	{regexp.MustCompile(`\b[A-Z][a-z]+\sTeam\b`), "[TEAM]"},
	{regexp.MustCompile(`\b[A-Z][a-z]+\sDepartment\b`), "[DEPARTMENT]"},
	{regexp.MustCompile(`\b[A-Z][a-z]+\sProject\b`), "[PROJECT]"},
	{regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`), "[EMAIL]"},
	{regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b`), "[PHONE]"},
	{regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`), "[DATE]"},
	{regexp.MustCompile(`\b\d{1,2}:\d{2}\b`), "[TIME]"},
	{regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d{2})?\b`), "[AMOUNT]"},
}

// Anonymize replaces identifiable substrings with category placeholders while
// preserving sentence structure and word count so downstream linguistic
// features stay meaningful. It is deterministic, total over any input, and
// idempotent: no placeholder matches any rule pattern again.
func Anonymize(text string) string {
	for _, rule := range anonymizerRules {
		text = rule.pattern.ReplaceAllString(text, rule.placeholder)
	}
	return text
}
