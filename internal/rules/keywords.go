package rules

import (
	"regexp"
)

// KeywordMatcher reports whether text contains any of a configured list of
// harmful terms. Matching is case-insensitive and word-bounded: a keyword
// never matches as a substring of a larger word.
type KeywordMatcher struct {
	res []*regexp.Regexp
}

func NewKeywordMatcher(keywords []string) *KeywordMatcher {
	m := &KeywordMatcher{res: make([]*regexp.Regexp, 0, len(keywords))}
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		m.res = append(m.res, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return m
}

// Matches reports whether any configured keyword occurs in text. One match
// is sufficient; the matched keyword itself is not reported.
func (m *KeywordMatcher) Matches(text string) bool {
	if text == "" {
		return false
	}
	for _, re := range m.res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
