// Package filter provides compiled glob predicates used to select event
// targets by action and object. Matching semantics live here, apart from
// routing, so they can be tested in isolation.
package filter

import "github.com/tidwall/match"

// Predicate is a glob pattern ('*' and '?' wildcards) compiled at
// registration time and evaluated once per request. Matching is
// case-sensitive and anchored to the whole string. The empty pattern
// matches everything.
type Predicate struct {
	pattern  string
	matchAll bool
}

// Compile builds a Predicate from a glob pattern.
func Compile(pattern string) Predicate {
	return Predicate{
		pattern:  pattern,
		matchAll: pattern == "" || pattern == "*",
	}
}

// Match reports whether s satisfies the predicate.
func (p Predicate) Match(s string) bool {
	if p.matchAll {
		return true
	}
	return match.Match(s, p.pattern)
}

// String returns the source pattern, with the match-all forms collapsed
// to "*".
func (p Predicate) String() string {
	if p.matchAll {
		return "*"
	}
	return p.pattern
}
