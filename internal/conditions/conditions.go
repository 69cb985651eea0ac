// Package conditions evaluates the visibility predicates attached to use cases
// and to individual lines of use case markup.
//
// A condition token is one of:
//   - a plain name ("beta"), satisfied when present in the active set
//   - a negated name ("!beta"), satisfied when absent from the active set
//   - an OR-group ("foo or !bar"), satisfied when any branch is satisfied
//   - a regex token ("regex:.*urgent.*"), a plain name for set matching that
//     callers add to the active set when its pattern matches the user input
//
// A declared set matches when every token is satisfied. The empty set always
// matches.
package conditions

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

const (
	// Else is the token that marks a fallback block.
	Else = "else"

	// RegexPrefix marks a token whose remainder is a regular expression.
	RegexPrefix = "regex:"

	orSeparator = " or "
	negation    = "!"
	stepPrefix  = "step_"

	regexTimeout = 100 * time.Millisecond
)

// Matches reports whether the declared condition tokens are satisfied by the
// active condition set.
func Matches(declared []string, active []string) bool {
	if len(declared) == 0 {
		return true
	}
	set := toSet(active)
	for _, token := range declared {
		if !tokenMatches(token, set) {
			return false
		}
	}
	return true
}

func tokenMatches(token string, active map[string]struct{}) bool {
	if strings.Contains(token, orSeparator) {
		for _, branch := range strings.Split(token, orSeparator) {
			if branchMatches(strings.TrimSpace(branch), active) {
				return true
			}
		}
		return false
	}
	return branchMatches(token, active)
}

func branchMatches(token string, active map[string]struct{}) bool {
	if name, negated := strings.CutPrefix(token, negation); negated {
		_, present := active[name]
		return !present
	}
	_, present := active[token]
	return present
}

// WithElse returns active extended with the Else token when none of the given
// condition groups is satisfied by active. Groups that are empty or consist
// only of the Else token are not considered.
func WithElse(groups [][]string, active []string) []string {
	for _, group := range groups {
		explicit := withoutElse(group)
		if len(explicit) == 0 {
			continue
		}
		if Matches(explicit, active) {
			return active
		}
	}
	return Union(active, []string{Else})
}

func withoutElse(group []string) []string {
	out := make([]string, 0, len(group))
	for _, token := range group {
		if token != Else {
			out = append(out, token)
		}
	}
	return out
}

// IsRegex reports whether the token is a regex condition.
func IsRegex(token string) bool {
	return strings.HasPrefix(token, RegexPrefix)
}

// RegexMatches returns the regex tokens among declared whose pattern matches
// somewhere in input. Patterns are case-insensitive. An empty input, or a
// pattern that fails to compile, matches nothing.
func RegexMatches(declared []string, input string) []string {
	if input == "" {
		return nil
	}
	var matched []string
	for _, token := range declared {
		if !IsRegex(token) || slices.Contains(matched, token) {
			continue
		}
		re, err := regexp2.Compile(strings.TrimPrefix(token, RegexPrefix), regexp2.IgnoreCase)
		if err != nil {
			continue
		}
		re.MatchTimeout = regexTimeout
		if ok, err := re.MatchString(input); err == nil && ok {
			matched = append(matched, token)
		}
	}
	return matched
}

// Step returns the step counter condition for a use case that has already
// been used the given number of times.
func Step(timesUsed int) string {
	return stepPrefix + strconv.Itoa(timesUsed+1)
}

// Union returns the ordered, de-duplicated union of the given sets.
func Union(sets ...[]string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, set := range sets {
		for _, v := range set {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

