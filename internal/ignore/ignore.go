// Package ignore compiles ignore pattern lists into reusable matchers.
//
// Patterns are unanchored regular expressions: a candidate is ignored when any
// pattern finds a match anywhere in it. A pattern written as "glob:<pattern>"
// is instead matched against the whole candidate with doublestar semantics.
package ignore

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobPrefix marks a pattern as a doublestar glob instead of a regular expression.
const GlobPrefix = "glob:"

var (
	// DefaultFilePatterns are tested against file basenames.
	DefaultFilePatterns = []string{`^.gitignore`, `^.DS_Store`}

	// DefaultDirPatterns are tested against directory entry keys.
	DefaultDirPatterns = []string{`/\.git$`}
)

type pattern struct {
	source string
	re     *regexp.Regexp
	glob   string
}

func (p pattern) match(candidate string) bool {
	if p.re != nil {
		return p.re.MatchString(candidate)
	}
	// The glob was validated at compile time.
	matched, _ := doublestar.Match(p.glob, candidate)
	return matched
}

// Matcher answers whether a string matches any of its patterns.
// The zero value and nil matchers match nothing.
type Matcher struct {
	patterns []pattern
}

// New deduplicates patterns, keeping first-occurrence order, and compiles them.
func New(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	seen := make(map[string]struct{}, len(patterns))
	for _, src := range patterns {
		if _, dup := seen[src]; dup {
			continue
		}
		seen[src] = struct{}{}

		p, err := compile(src)
		if err != nil {
			return nil, err
		}
		m.patterns = append(m.patterns, p)
	}
	return m, nil
}

// MustNew is like New but panics on an invalid pattern.
// Use it only for constant pattern lists.
func MustNew(patterns []string) *Matcher {
	m, err := New(patterns)
	if err != nil {
		panic(err)
	}
	return m
}

func compile(src string) (pattern, error) {
	if glob, ok := strings.CutPrefix(src, GlobPrefix); ok {
		if !doublestar.ValidatePattern(glob) {
			return pattern{}, fmt.Errorf("invalid glob pattern %q", glob)
		}
		return pattern{source: src, glob: glob}, nil
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return pattern{}, fmt.Errorf("invalid regex pattern %q: %w", src, err)
	}
	return pattern{source: src, re: re}, nil
}

// Test reports whether candidate matches any pattern.
func (m *Matcher) Test(candidate string) bool {
	if m == nil {
		return false
	}
	for _, p := range m.patterns {
		if p.match(candidate) {
			return true
		}
	}
	return false
}

// Patterns returns the deduplicated source patterns in compile order.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.patterns))
	for i, p := range m.patterns {
		out[i] = p.source
	}
	return out
}

// Len returns the number of compiled patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.patterns)
}
