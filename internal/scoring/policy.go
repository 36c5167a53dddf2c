package scoring

import (
	"strings"

	"github.com/secureproxy/validation-gateway/internal/models"
)

// ruleIncrement is added to the rule score for every matched category.
const ruleIncrement = 0.3

// LevelConfig carries the per-level combination weights, the safety
// threshold, and whether the external classifier is consulted at all.
type LevelConfig struct {
	RuleWeight       float64
	ClassifierWeight float64
	Threshold        float64
	DeepAnalysis     bool
}

var levels = map[models.SecurityLevel]LevelConfig{
	models.LevelHigh:   {RuleWeight: 0.4, ClassifierWeight: 0.6, Threshold: 0.9, DeepAnalysis: true},
	models.LevelMedium: {RuleWeight: 0.6, ClassifierWeight: 0.4, Threshold: 0.7, DeepAnalysis: true},
	models.LevelLow:    {RuleWeight: 1.0, ClassifierWeight: 0.0, Threshold: 0.5, DeepAnalysis: false},
}

// LevelFor returns the configuration for a security level. Unknown levels
// fall back to high, the strictest tier.
func LevelFor(level models.SecurityLevel) LevelConfig {
	if cfg, ok := levels[level]; ok {
		return cfg
	}
	return levels[models.LevelHigh]
}

// Policy combines rule and classifier signals into one verdict per level.
type Policy struct{}

func NewPolicy() *Policy {
	return &Policy{}
}

// RuleScore derives the rule score from the number of matched issues: 0.0
// plus a fixed increment per issue, clamped to [0,1]. Higher means more
// rule-level evidence of danger.
func (p *Policy) RuleScore(issueCount int) float64 {
	return clamp01(ruleIncrement * float64(issueCount))
}

// Combine computes the overall safety confidence and the safety decision.
//
// The rule score accumulates danger, so its safety contribution is its
// complement. The classifier score is already a safety confidence; when the
// level skips deep analysis or no score is available it contributes the
// neutral 1.0 (no evidence of danger). Any detected issue is a hard veto:
// scoring then only ranks severity, it cannot rescue the input.
func (p *Policy) Combine(issues []string, ruleScore float64, classifierScore *float64, level models.SecurityLevel) (float64, bool) {
	cfg := LevelFor(level)

	ruleSafety := clamp01(1.0 - ruleScore)

	classifierSafety := 1.0
	if cfg.DeepAnalysis && classifierScore != nil {
		classifierSafety = clamp01(*classifierScore)
	}

	overall := clamp01(cfg.RuleWeight*ruleSafety + cfg.ClassifierWeight*classifierSafety)

	isSafe := len(issues) == 0 && overall >= cfg.Threshold
	return overall, isSafe
}

// Reason renders the verdict reason: the comma-joined issue tags when any
// were detected, the literal "safe" otherwise.
func (p *Policy) Reason(issues []string, isSafe bool) string {
	if len(issues) > 0 {
		return strings.Join(issues, ", ")
	}
	if isSafe {
		return models.ReasonSafe
	}
	return "potentially_unsafe_content"
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
