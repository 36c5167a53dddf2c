package scoring

import (
	"math"
	"testing"

	"github.com/secureproxy/validation-gateway/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestPolicy_RuleScore(t *testing.T) {
	policy := NewPolicy()

	tests := []struct {
		issues int
		want   float64
	}{
		{0, 0.0},
		{1, 0.3},
		{2, 0.6},
		{3, 0.9},
		{4, 1.0}, // clamped
		{10, 1.0},
	}

	for _, test := range tests {
		if got := policy.RuleScore(test.issues); math.Abs(got-test.want) > 1e-9 {
			t.Errorf("RuleScore(%d) = %f, want %f", test.issues, got, test.want)
		}
	}
}

func TestPolicy_Combine(t *testing.T) {
	policy := NewPolicy()

	tests := []struct {
		name       string
		issues     []string
		ruleScore  float64
		classifier *float64
		level      models.SecurityLevel
		wantScore  float64
		wantSafe   bool
	}{
		{
			name:       "clean input high level",
			ruleScore:  0.0,
			classifier: floatPtr(1.0),
			level:      models.LevelHigh,
			wantScore:  1.0,
			wantSafe:   true,
		},
		{
			name:       "clean input medium level",
			ruleScore:  0.0,
			classifier: floatPtr(1.0),
			level:      models.LevelMedium,
			wantScore:  1.0,
			wantSafe:   true,
		},
		{
			name:      "clean input low level skips classifier",
			ruleScore: 0.0,
			level:     models.LevelLow,
			wantScore: 1.0,
			wantSafe:  true,
		},
		{
			name:       "classifier absent is neutral",
			ruleScore:  0.0,
			classifier: nil,
			level:      models.LevelHigh,
			wantScore:  1.0,
			wantSafe:   true,
		},
		{
			name:       "issue veto beats perfect classifier",
			issues:     []string{"sql_injection_attempt"},
			ruleScore:  0.3,
			classifier: floatPtr(1.0),
			level:      models.LevelHigh,
			wantScore:  0.4*0.7 + 0.6*1.0,
			wantSafe:   false,
		},
		{
			name:       "low classifier confidence fails high threshold",
			ruleScore:  0.0,
			classifier: floatPtr(0.5),
			level:      models.LevelHigh,
			wantScore:  0.4*1.0 + 0.6*0.5,
			wantSafe:   false,
		},
		{
			name:       "classifier score ignored at low level",
			ruleScore:  0.0,
			classifier: floatPtr(0.0),
			level:      models.LevelLow,
			wantScore:  1.0,
			wantSafe:   true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			score, safe := policy.Combine(test.issues, test.ruleScore, test.classifier, test.level)
			if math.Abs(score-test.wantScore) > 1e-9 {
				t.Errorf("overall = %f, want %f", score, test.wantScore)
			}
			if safe != test.wantSafe {
				t.Errorf("isSafe = %v, want %v", safe, test.wantSafe)
			}
		})
	}
}

func TestPolicy_ThresholdBoundaryIsSafe(t *testing.T) {
	policy := NewPolicy()

	// Medium threshold is 0.7; construct exactly 0.7:
	// 0.6*ruleSafety + 0.4*classifier = 0.7 with ruleSafety=0.5, classifier=1.0.
	score, safe := policy.Combine(nil, 0.5, floatPtr(1.0), models.LevelMedium)
	if math.Abs(score-0.7) > 1e-9 {
		t.Fatalf("overall = %f, want 0.7", score)
	}
	if !safe {
		t.Error("score exactly at threshold must classify as safe")
	}
}

// Classifier failure is fail-open: a missing classifier score can never turn
// a rule-safe verdict unsafe, only an unsafe-leaning classifier can.
func TestPolicy_FailOpenNeverAddsUnsafeSignal(t *testing.T) {
	policy := NewPolicy()

	levels := []models.SecurityLevel{models.LevelHigh, models.LevelMedium, models.LevelLow}
	ruleScores := []float64{0.0, 0.3, 0.6, 0.9, 1.0}

	for _, level := range levels {
		for _, ruleScore := range ruleScores {
			var issues []string
			if ruleScore > 0 {
				issues = []string{"some_issue"}
			}

			_, safeWithout := policy.Combine(issues, ruleScore, nil, level)
			_, safeRuleOnly := policy.Combine(issues, ruleScore, floatPtr(1.0), level)

			if safeWithout != safeRuleOnly {
				t.Errorf("level=%s ruleScore=%f: absent classifier flipped verdict (%v vs %v)",
					level, ruleScore, safeWithout, safeRuleOnly)
			}
		}
	}
}

func TestPolicy_Reason(t *testing.T) {
	policy := NewPolicy()

	if got := policy.Reason([]string{"a", "b"}, false); got != "a, b" {
		t.Errorf("Reason = %q, want %q", got, "a, b")
	}
	if got := policy.Reason(nil, true); got != "safe" {
		t.Errorf("Reason = %q, want %q", got, "safe")
	}
	if got := policy.Reason(nil, false); got != "potentially_unsafe_content" {
		t.Errorf("Reason = %q, want %q", got, "potentially_unsafe_content")
	}
}

func TestLevelFor_UnknownFallsBackToHigh(t *testing.T) {
	cfg := LevelFor(models.SecurityLevel("paranoid"))
	if cfg.Threshold != 0.9 {
		t.Errorf("unknown level should use the high tier, got threshold %f", cfg.Threshold)
	}
}
