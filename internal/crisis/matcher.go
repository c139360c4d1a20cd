package crisis

import (
	"regexp"

	"mentivio-widget/internal/domain/model"
)

// Matcher decides whether a normalized (lowercased, space-collapsed)
// message hits one lexical pattern. Kept behind an interface so the
// detection state machine does not care whether a pattern is a regexp,
// a token set, or something smarter.
type Matcher interface {
	Match(normalized string) bool
}

type regexMatcher struct {
	re *regexp.Regexp
}

func (m regexMatcher) Match(normalized string) bool {
	return m.re.MatchString(normalized)
}

// Regex builds a Matcher from a regular expression. Patterns are matched
// against already-lowercased text, so expressions stay case-sensitive.
func Regex(expr string) Matcher {
	return regexMatcher{re: regexp.MustCompile(expr)}
}

// Pattern is one (tier, id, matcher) record. Within a tier, declaration
// order is match priority.
type Pattern struct {
	Tier    model.Tier
	ID      string
	Matcher Matcher
}
