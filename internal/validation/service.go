// Package validation orchestrates the full content validation flow: cache
// lookup, rule and keyword scanning, optional deep classification, scoring,
// and verdict caching.
package validation

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/secureproxy/validation-gateway/internal/cache"
	"github.com/secureproxy/validation-gateway/internal/models"
	"github.com/secureproxy/validation-gateway/internal/scoring"
)

// Counter names tracked per validation.
const (
	CounterCacheHits     = "cache_hits"
	CounterCacheMisses   = "cache_misses"
	CounterVerdictSafe   = "verdict_safe"
	CounterVerdictUnsafe = "verdict_unsafe"
)

func counterForKind(kind models.ContentKind) string {
	return fmt.Sprintf("validations_%s", kind)
}

type ruleScanner interface {
	Scan(text string) []string
}

type keywordScanner interface {
	Matches(text string) bool
}

type contentClassifier interface {
	Classify(ctx context.Context, content string) *models.Classification
}

type verdictCache interface {
	Get(ctx context.Context, key string) (*models.VerdictResult, bool)
	Put(ctx context.Context, key string, result models.VerdictResult, kind models.ContentKind) bool
	IncrementCounter(ctx context.Context, name string) (int64, bool)
	GetCounter(ctx context.Context, name string) int64
}

// Service runs validations. The cache and the classifier are both optional
// accelerators: a cache outage reads as a miss, a classifier failure as a
// neutral signal, and neither changes whether a verdict is produced.
type Service struct {
	engine       ruleScanner
	keywords     keywordScanner
	classifier   contentClassifier
	store        verdictCache
	policy       *scoring.Policy
	defaultLevel models.SecurityLevel
	logger       *zerolog.Logger
}

func NewService(engine ruleScanner, keywords keywordScanner, classifier contentClassifier, store verdictCache, defaultLevel models.SecurityLevel, logger *zerolog.Logger) *Service {
	return &Service{
		engine:       engine,
		keywords:     keywords,
		classifier:   classifier,
		store:        store,
		policy:       scoring.NewPolicy(),
		defaultLevel: defaultLevel,
		logger:       logger,
	}
}

// DefaultLevel is the level applied when a request does not name one.
func (s *Service) DefaultLevel() models.SecurityLevel {
	return s.defaultLevel
}

// ValidateText validates a plain text payload.
func (s *Service) ValidateText(ctx context.Context, content string, level models.SecurityLevel) models.VerdictResult {
	return s.validate(ctx, []byte(content), models.KindText, level)
}

// ValidateFile validates a base64-encoded file payload. A payload that does
// not decode is rejected outright; it never reaches the analyzers or the
// cache.
func (s *Service) ValidateFile(ctx context.Context, encoded string, level models.SecurityLevel) models.VerdictResult {
	start := time.Now()

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		s.logger.Warn().Err(err).Msg("rejecting file payload that is not valid base64")
		return models.VerdictResult{
			Status:         models.StatusUnsafe,
			Reason:         models.ReasonInvalidBase64,
			SecurityLevel:  level,
			Kind:           models.KindFile,
			ProcessingTime: time.Since(start),
		}
	}

	return s.validate(ctx, decoded, models.KindFile, level)
}

func (s *Service) validate(ctx context.Context, content []byte, kind models.ContentKind, level models.SecurityLevel) models.VerdictResult {
	start := time.Now()

	// Empty input is refused before any cache or counter touch.
	if len(strings.TrimSpace(string(content))) == 0 {
		return models.VerdictResult{
			Status:         models.StatusUnsafe,
			Reason:         models.ReasonEmptyInput,
			SecurityLevel:  level,
			Kind:           kind,
			ProcessingTime: time.Since(start),
		}
	}

	key := cache.Key(content, kind, level)
	if cached, hit := s.store.Get(ctx, key); hit {
		s.store.IncrementCounter(ctx, CounterCacheHits)
		cached.CacheHit = true
		cached.ProcessingTime = time.Since(start)
		s.logger.Debug().Str("kind", string(kind)).Str("level", string(level)).Msg("validation served from cache")
		return *cached
	}
	s.store.IncrementCounter(ctx, CounterCacheMisses)

	outcome := s.analyze(ctx, string(content), level)
	overall, isSafe := s.policy.Combine(outcome.Issues, outcome.RuleScore, outcome.ClassifierScore, level)

	status := models.StatusUnsafe
	if isSafe {
		status = models.StatusSafe
	}

	result := models.VerdictResult{
		Status:          status,
		Reason:          s.policy.Reason(outcome.Issues, isSafe),
		DetectedIssues:  outcome.Issues,
		RuleScore:       outcome.RuleScore,
		ClassifierScore: outcome.ClassifierScore,
		OverallScore:    overall,
		SecurityLevel:   level,
		Kind:            kind,
		ProcessingTime:  time.Since(start),
	}

	s.store.Put(ctx, key, result, kind)
	s.store.IncrementCounter(ctx, counterForKind(kind))
	if isSafe {
		s.store.IncrementCounter(ctx, CounterVerdictSafe)
	} else {
		s.store.IncrementCounter(ctx, CounterVerdictUnsafe)
	}

	s.logger.Info().
		Str("kind", string(kind)).
		Str("level", string(level)).
		Str("status", string(status)).
		Int("issues", len(outcome.Issues)).
		Float64("overall_score", overall).
		Dur("duration", result.ProcessingTime).
		Msg("validation completed")

	return result
}

// analyze runs the rule tables, the keyword list, and, for levels with deep
// analysis, the external classifier. The rule score is fixed before the
// classifier runs; a classifier flag adds an issue but no rule evidence.
func (s *Service) analyze(ctx context.Context, text string, level models.SecurityLevel) models.AnalysisOutcome {
	issues := s.engine.Scan(text)
	if s.keywords != nil && s.keywords.Matches(text) {
		issues = append(issues, models.IssueHarmfulKeyword)
	}
	ruleScore := s.policy.RuleScore(len(issues))

	var classifierScore *float64
	if scoring.LevelFor(level).DeepAnalysis && s.classifier != nil {
		if classification := s.classifier.Classify(ctx, text); classification != nil {
			score := classification.Score
			classifierScore = &score
			if classification.Flagged {
				issues = append(issues, models.IssueClassifierFlagged)
			}
		}
	}

	return models.AnalysisOutcome{
		Issues:          issues,
		RuleScore:       ruleScore,
		ClassifierScore: classifierScore,
		Summary:         fmt.Sprintf("%d issue(s) detected", len(issues)),
	}
}

// Stats reads the tracked counters. Counters live in the cache store; when
// it is down every value reads as zero.
func (s *Service) Stats(ctx context.Context) map[string]int64 {
	names := []string{
		CounterCacheHits,
		CounterCacheMisses,
		counterForKind(models.KindText),
		counterForKind(models.KindFile),
		CounterVerdictSafe,
		CounterVerdictUnsafe,
	}

	stats := make(map[string]int64, len(names))
	for _, name := range names {
		stats[name] = s.store.GetCounter(ctx, name)
	}
	return stats
}
