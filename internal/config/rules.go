package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRulesConfig reads the pattern-rule configuration. A missing file is
// not an error: the built-in tables apply and the keyword list stays empty,
// matching an operator who never tuned anything.
func LoadRulesConfig() (*RulesConfig, error) {
	path := os.Getenv("RULES_CONFIG_PATH")
	if path == "" {
		path = "configs/rules.yaml"
	}

	var cfg RulesConfig

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyDefaults(&cfg)
			return &cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *RulesConfig) {
	if len(cfg.Categories) == 0 {
		cfg.Categories = defaultCategories()
	}
}

func (c *RulesConfig) Validate() error {
	for _, cat := range c.Categories {
		if cat.Issue == "" {
			return fmt.Errorf("category %q has no issue tag", cat.Name)
		}
		if len(cat.Patterns) == 0 {
			return fmt.Errorf("category %q has no patterns", cat.Name)
		}
		for _, p := range cat.Patterns {
			if p.Expr == "" {
				return fmt.Errorf("category %q has a pattern with empty expr", cat.Name)
			}
		}
	}
	return nil
}
