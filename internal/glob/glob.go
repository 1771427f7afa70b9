// Package glob matches changed paths against category patterns.
//
// Matching follows doublestar semantics: ** crosses path separators, * and ?
// stay within one segment, and [...] / {a,b} classes are supported. Segments
// that start with a dot are matched like any other segment, so ** matches
// .github/workflows/ci.yml. Matching is rune-based and case-sensitive.
package glob

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrBadPattern is returned for malformed patterns.
var ErrBadPattern = doublestar.ErrBadPattern

// Check reports whether pattern is a well-formed glob.
func Check(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}
	return nil
}

// CheckAll validates every pattern and returns the first failure.
func CheckAll(patterns []string) error {
	for _, p := range patterns {
		if err := Check(p); err != nil {
			return err
		}
	}
	return nil
}

// MatchesAny reports whether any pattern matches any path. It stops at the
// first match.
func MatchesAny(paths, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		if err := Check(pattern); err != nil {
			return false, err
		}
		for _, p := range paths {
			if doublestar.MatchUnvalidated(pattern, p) {
				return true, nil
			}
		}
	}
	return false, nil
}

// Filter returns the paths matched by at least one pattern, in input order.
func Filter(paths, patterns []string) ([]string, error) {
	if err := CheckAll(patterns); err != nil {
		return nil, err
	}
	out := make([]string, 0)
	for _, p := range paths {
		for _, pattern := range patterns {
			if doublestar.MatchUnvalidated(pattern, p) {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}
