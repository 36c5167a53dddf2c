package models

import (
	"strings"
	"time"
)

type Status string

const (
	StatusSafe   Status = "safe"
	StatusUnsafe Status = "unsafe"
	StatusError  Status = "error"
)

type ContentKind string

const (
	KindText ContentKind = "text"
	KindFile ContentKind = "file"
)

type SecurityLevel string

const (
	LevelHigh   SecurityLevel = "high"
	LevelMedium SecurityLevel = "medium"
	LevelLow    SecurityLevel = "low"
)

// ParseSecurityLevel normalizes a level string. Unknown values are rejected
// rather than defaulted so the API can answer 400 instead of silently
// validating at the wrong tier.
func ParseSecurityLevel(s string) (SecurityLevel, bool) {
	switch SecurityLevel(strings.ToLower(s)) {
	case LevelHigh:
		return LevelHigh, true
	case LevelMedium:
		return LevelMedium, true
	case LevelLow:
		return LevelLow, true
	default:
		return "", false
	}
}

// Issue tags and reasons emitted outside the rule tables.
const (
	IssueHarmfulKeyword    = "harmful_keyword_detected"
	IssueClassifierFlagged = "llm_flagged_unsafe"
	ReasonEmptyInput       = "empty_input"
	ReasonInvalidBase64    = "invalid_base64"
	ReasonSafe             = "safe"
)

// Classification is the external classifier's answer for one piece of
// content. Score is a safety confidence in [0,1]; higher is safer.
type Classification struct {
	Flagged bool    `json:"flagged"`
	Score   float64 `json:"score"`
}

// AnalysisOutcome is the pre-scoring result of one analysis pass: detected
// issue tags in detection order, the accumulated rule score, and the
// classifier score when deep analysis ran.
type AnalysisOutcome struct {
	Issues          []string `json:"issues"`
	RuleScore       float64  `json:"rule_score"`
	ClassifierScore *float64 `json:"classifier_score,omitempty"`
	Summary         string   `json:"summary"`
}

// VerdictResult is the externally visible, cacheable validation result.
type VerdictResult struct {
	Status          Status        `json:"status"`
	Reason          string        `json:"reason"`
	DetectedIssues  []string      `json:"detected_issues,omitempty"`
	RuleScore       float64       `json:"rule_score"`
	ClassifierScore *float64      `json:"classifier_score,omitempty"`
	OverallScore    float64       `json:"overall_score"`
	SecurityLevel   SecurityLevel `json:"security_level"`
	Kind            ContentKind   `json:"analysis_kind,omitempty"`
	CacheHit        bool          `json:"cache_hit"`
	CachedAt        int64         `json:"cached_at,omitempty"`
	ProcessingTime  time.Duration `json:"processing_time_ns,omitempty"`
}

// ValidationRequest is the message consumed from the validation stream.
type ValidationRequest struct {
	RequestID     string      `json:"request_id"`
	Content       string      `json:"content"`
	Kind          ContentKind `json:"kind"`
	SecurityLevel string      `json:"security_level"`
}
