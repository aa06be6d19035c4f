// Package matchers selects module and source names with shell-style globs.
//
// Globs follow doublestar syntax: * and ? never cross a "/", ** does,
// and {a,b} and [...] classes are supported. Two flavours exist. A strict
// matcher with no patterns matches nothing and is used where an operation
// must name its targets (enable, disable, update). A permissive matcher
// with no patterns matches everything and is used by read-only queries.
package matchers

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/arthur-debert/dotmod/pkg/errors"
)

// Matcher is a compiled set of glob patterns. The zero value is a strict
// matcher with no patterns.
type Matcher struct {
	patterns   []string
	permissive bool
}

// Strict compiles patterns into a matcher that matches nothing when empty
func Strict(patterns []string) (*Matcher, error) {
	return compile(patterns, false)
}

// Permissive compiles patterns into a matcher that matches everything
// when empty
func Permissive(patterns []string) (*Matcher, error) {
	return compile(patterns, true)
}

func compile(patterns []string, permissive bool) (*Matcher, error) {
	m := &Matcher{permissive: permissive}
	for _, p := range patterns {
		if p == "" || !doublestar.ValidatePattern(p) {
			return nil, errors.Newf(errors.ErrInvalidPattern, "invalid pattern %q", p).
				WithDetail("pattern", p)
		}
		m.patterns = append(m.patterns, p)
	}
	return m, nil
}

// Patterns returns the compiled patterns in the order given
func (m *Matcher) Patterns() []string {
	return append([]string(nil), m.patterns...)
}

// Empty reports whether the matcher was built without patterns
func (m *Matcher) Empty() bool {
	return len(m.patterns) == 0
}

// Match reports whether candidate matches any pattern
func (m *Matcher) Match(candidate string) bool {
	if len(m.patterns) == 0 {
		return m.permissive
	}
	for _, p := range m.patterns {
		// Patterns were validated at construction so Match cannot fail.
		if ok, _ := doublestar.Match(p, candidate); ok {
			return true
		}
	}
	return false
}

// Filter returns the names that match, preserving input order
func (m *Matcher) Filter(names []string) []string {
	var matched []string
	for _, name := range names {
		if m.Match(name) {
			matched = append(matched, name)
		}
	}
	return matched
}

// Unmatched returns the literal patterns (no glob syntax) that matched
// none of names. Callers use it to report unknown names; a glob that
// matches nothing is not an error.
func (m *Matcher) Unmatched(names []string) []string {
	var missing []string
	for _, p := range m.patterns {
		if !IsLiteral(p) {
			continue
		}
		found := false
		for _, name := range names {
			if name == p {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, p)
		}
	}
	return missing
}

// IsLiteral reports whether a pattern contains no glob syntax
func IsLiteral(pattern string) bool {
	return !strings.ContainsAny(pattern, `*?[]{}\`)
}
