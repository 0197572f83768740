package todo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LineMacro is replaced by the line number in a location template.
const LineMacro = "$line"

// LocationRule rewrites a file path and line number into the location shown
// at the end of an entry.
//
// The template is expanded in two stages. Macros are first substituted as
// literal text. The result is then used as the replacement for every match
// of the pattern, where \0 to \9 refer to capture groups, \\ is a single
// backslash and every other character, including $, is literal.
type LocationRule struct {
	pattern  *regexp.Regexp
	template string
}

// NewLocationRule compiles pattern.
func NewLocationRule(pattern, template string) (*LocationRule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid location pattern %q: %w", pattern, err)
	}
	return &LocationRule{pattern: re, template: template}, nil
}

// Apply rewrites location. A location the pattern does not match is
// returned unchanged.
func (r *LocationRule) Apply(location string, line int) string {
	expanded := strings.ReplaceAll(r.template, LineMacro, strconv.Itoa(line))
	return r.pattern.ReplaceAllString(location, replacementTemplate(expanded))
}

// replacementTemplate converts backslash group references into the syntax
// understood by regexp.Expand and escapes every other dollar sign.
func replacementTemplate(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '$':
			b.WriteString("$$")
		case c == '\\' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9':
			b.WriteString("${")
			b.WriteByte(s[i+1])
			b.WriteByte('}')
			i++
		case c == '\\' && i+1 < len(s) && s[i+1] == '\\':
			b.WriteByte('\\')
			i++
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}
