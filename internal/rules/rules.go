// Package rules parses the category rule language.
//
// A rule text is a list of glob patterns, one per line, grouped into named
// categories by header lines of the form [Name]:
//
//	src/**/*.ts
//	[Docs]
//	docs/**
//	*.md
//
// Lines before the first header belong to the default category.
package rules

import (
	"regexp"
	"strings"
)

// DefaultCategory is the category name used when the caller supplies none.
const DefaultCategory = "FilesChanged"

// DefaultRules matches every path.
const DefaultRules = "**"

var (
	headerPattern = regexp.MustCompile(`^\[([^\]]+)\]$`)
	lineSplitter  = regexp.MustCompile(`\r?\n`)
)

// Category is a named, ordered list of glob patterns.
type Category struct {
	Name     string
	Patterns []string
}

// RuleSet maps category names to patterns, preserving declaration order.
// A RuleSet is immutable once returned by Parse.
type RuleSet struct {
	categories []Category
	index      map[string]int
}

// Parse builds a RuleSet from rule text. The default category always exists,
// even when it ends up with no patterns.
//
// A header that repeats an earlier category name resets that category's
// pattern list; the category keeps its original declaration position.
func Parse(text, defaultCategory string) *RuleSet {
	rs := &RuleSet{index: make(map[string]int)}
	current := rs.declare(defaultCategory)

	for _, raw := range lineSplitter.Split(text, -1) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if name, ok := header(line); ok {
			current = rs.declare(name)
			continue
		}

		rs.categories[current].Patterns = append(rs.categories[current].Patterns, line)
	}

	return rs
}

// declare creates or resets a category and returns its index.
func (rs *RuleSet) declare(name string) int {
	if i, ok := rs.index[name]; ok {
		rs.categories[i].Patterns = nil
		return i
	}
	rs.index[name] = len(rs.categories)
	rs.categories = append(rs.categories, Category{Name: name})
	return len(rs.categories) - 1
}

func header(line string) (string, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Categories returns all categories in declaration order, including empty ones.
func (rs *RuleSet) Categories() []Category {
	out := make([]Category, len(rs.categories))
	for i, c := range rs.categories {
		out[i] = Category{Name: c.Name, Patterns: append([]string(nil), c.Patterns...)}
	}
	return out
}

// NonEmpty returns the categories that have at least one pattern.
func (rs *RuleSet) NonEmpty() []Category {
	out := make([]Category, 0, len(rs.categories))
	for _, c := range rs.Categories() {
		if len(c.Patterns) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Patterns returns the patterns of the named category.
func (rs *RuleSet) Patterns(name string) ([]string, bool) {
	i, ok := rs.index[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), rs.categories[i].Patterns...), true
}

// Len returns the number of declared categories.
func (rs *RuleSet) Len() int {
	return len(rs.categories)
}
