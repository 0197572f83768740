package todo

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoKeywords is returned when a Matcher is built without any keyword.
var ErrNoKeywords = errors.New("at least one annotation keyword is required")

// Notation maps an annotation keyword to a priority code. An empty Priority
// means entries for this keyword carry no priority.
type Notation struct {
	Keyword  string
	Priority string
}

// Matcher finds annotations using a single pattern composed from all
// configured keywords, so a line yields at most one annotation.
type Matcher struct {
	re        *regexp.Regexp
	message   int
	notations []Notation
}

// NewMatcher composes the keyword alternation. Keywords are used verbatim
// as regular expression alternatives and may contain groups of their own.
func NewMatcher(notations []Notation) (*Matcher, error) {
	if len(notations) == 0 {
		return nil, ErrNoKeywords
	}

	keywords := make([]string, 0, len(notations))
	for _, n := range notations {
		if n.Keyword == "" {
			return nil, fmt.Errorf("empty annotation keyword")
		}
		keywords = append(keywords, n.Keyword)
	}

	expr := `(?i)(` + strings.Join(keywords, "|") + `):\s+(?P<message>.*?)$`
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid annotation keywords %q: %w", keywords, err)
	}

	return &Matcher{re: re, message: re.SubexpIndex("message"), notations: notations}, nil
}

// Match returns the keyword as written in line and the message following it.
func (m *Matcher) Match(line string) (keyword, message string, ok bool) {
	sub := m.re.FindStringSubmatch(line)
	if sub == nil {
		return "", "", false
	}
	return sub[1], sub[m.message], true
}

// Priority returns the priority configured for keyword. An exact match is
// preferred; otherwise keywords are compared case-insensitively, since the
// pattern itself ignores case.
func (m *Matcher) Priority(keyword string) string {
	for _, n := range m.notations {
		if n.Keyword == keyword {
			return n.Priority
		}
	}
	for _, n := range m.notations {
		if strings.EqualFold(n.Keyword, keyword) {
			return n.Priority
		}
	}
	return ""
}
