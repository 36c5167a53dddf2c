package config

// RulesConfig is the complete pattern-rule configuration loaded from YAML.
type RulesConfig struct {
	Categories      []CategoryRule `yaml:"categories"`
	HarmfulKeywords []string       `yaml:"harmful_keywords"`
}

// CategoryRule describes one detection category. MatchAll controls whether
// scanning stops at the first matching pattern (one issue per category) or
// emits an issue per matching pattern; it is configuration, not code, so the
// behavior stays auditable per category.
type CategoryRule struct {
	Name          string        `yaml:"name"`
	Issue         string        `yaml:"issue"`
	MatchAll      bool          `yaml:"match_all"`
	CaseSensitive bool          `yaml:"case_sensitive"`
	Patterns      []PatternRule `yaml:"patterns"`
}

// PatternRule is a single regular expression within a category. Label names
// the pattern in issues emitted by match-all categories.
type PatternRule struct {
	Label string `yaml:"label"`
	Expr  string `yaml:"expr"`
}
