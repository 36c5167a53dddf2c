package rules

import (
	"fmt"
	"regexp"

	"github.com/secureproxy/validation-gateway/internal/config"
)

// Engine scans text against ordered category pattern tables and reports
// issue tags in detection order. Scanning never fails: no match is a valid
// outcome and empty input yields no issues.
type Engine struct {
	categories []category
}

type category struct {
	name     string
	issue    string
	matchAll bool
	patterns []pattern
}

type pattern struct {
	label string
	re    *regexp.Regexp
}

// NewEngine compiles the configured category tables. Categories are matched
// case-insensitively unless the category is marked case-sensitive (template
// injection tokens would false-positive in prose if lowercased).
func NewEngine(categories []config.CategoryRule) (*Engine, error) {
	engine := &Engine{categories: make([]category, 0, len(categories))}

	for _, cat := range categories {
		compiled := category{
			name:     cat.Name,
			issue:    cat.Issue,
			matchAll: cat.MatchAll,
			patterns: make([]pattern, 0, len(cat.Patterns)),
		}

		for _, p := range cat.Patterns {
			expr := p.Expr
			if !cat.CaseSensitive {
				expr = "(?i)" + expr
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("category %q pattern %q: %w", cat.Name, p.Label, err)
			}
			compiled.patterns = append(compiled.patterns, pattern{label: p.Label, re: re})
		}

		engine.categories = append(engine.categories, compiled)
	}

	return engine, nil
}

// Scan returns the detected issue tags in detection order. First-match
// categories stop at the first matching pattern and emit the bare category
// tag once; match-all categories emit "<issue>:<label>" for every matching
// pattern so distinct dangerous calls in one payload stay visible.
func (e *Engine) Scan(text string) []string {
	if text == "" {
		return nil
	}

	var issues []string
	seen := make(map[string]bool)

	for _, cat := range e.categories {
		for _, p := range cat.patterns {
			if !p.re.MatchString(text) {
				continue
			}

			tag := cat.issue
			if cat.matchAll {
				tag = cat.issue + ":" + p.label
			}
			if !seen[tag] {
				seen[tag] = true
				issues = append(issues, tag)
			}

			if !cat.matchAll {
				break
			}
		}
	}

	return issues
}

// Categories reports each category's name and whether it scans match-all,
// so the per-category policy is inspectable without reading the tables.
func (e *Engine) Categories() map[string]bool {
	policies := make(map[string]bool, len(e.categories))
	for _, cat := range e.categories {
		policies[cat.name] = cat.matchAll
	}
	return policies
}
