package fileutil

import (
	"errors"
	"fmt"
	"regexp"
)

// RuleSet is an ordered list of compiled patterns.
type RuleSet []*regexp.Regexp

// NewRuleSet compiles every pattern. All compile errors are reported together.
func NewRuleSet(patterns []string) (RuleSet, error) {
	rs := make(RuleSet, 0, len(patterns))
	var errs []error
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid pattern %q: %w", p, err))
			continue
		}
		rs = append(rs, re)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return rs, nil
}

// MatchAny reports whether at least one pattern matches anywhere in candidate.
// An empty RuleSet never matches.
func (rs RuleSet) MatchAny(candidate string) bool {
	for _, re := range rs {
		if re.MatchString(candidate) {
			return true
		}
	}
	return false
}

// Empty reports whether the set has no patterns.
func (rs RuleSet) Empty() bool {
	return len(rs) == 0
}

// RuleSpec is the uncompiled form of one include or exclude group.
type RuleSpec struct {
	// Files matches file base names
	Files []string `yaml:"files"`
	// Dirs matches directory base names
	Dirs []string `yaml:"dirs"`
	// Paths matches full paths of files and directories
	Paths []string `yaml:"paths"`
}

// Rules is a compiled RuleSpec.
type Rules struct {
	Files RuleSet
	Dirs  RuleSet
	Paths RuleSet
}

// CompileRules compiles the three axes of spec.
func CompileRules(spec RuleSpec) (Rules, error) {
	var (
		rules Rules
		errs  []error
		err   error
	)

	if rules.Files, err = NewRuleSet(spec.Files); err != nil {
		errs = append(errs, fmt.Errorf("files: %w", err))
	}
	if rules.Dirs, err = NewRuleSet(spec.Dirs); err != nil {
		errs = append(errs, fmt.Errorf("dirs: %w", err))
	}
	if rules.Paths, err = NewRuleSet(spec.Paths); err != nil {
		errs = append(errs, fmt.Errorf("paths: %w", err))
	}

	if len(errs) > 0 {
		return Rules{}, errors.Join(errs...)
	}
	return rules, nil
}
