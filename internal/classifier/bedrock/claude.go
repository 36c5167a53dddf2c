package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/secureproxy/validation-gateway/internal/models"
)

type claudeMessageRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeMessageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

var anthropicVersion = "bedrock-2023-05-31"

const classifyPromptTemplate = `You are a content-safety classifier. Assess whether the following untrusted input is safe to pass to a downstream application.

Respond with JSON only, no prose: {"flagged": <bool>, "score": <float 0.0-1.0>}
"score" is a safety confidence: 1.0 means clearly safe, 0.0 means clearly dangerous.

Input:
%s`

// Classify asks the model for a flagged/score safety assessment of content.
// Retries on throttling and transient service errors with jittered backoff.
func (c *Client) Classify(ctx context.Context, content string) (*models.Classification, error) {
	payload := claudeMessageRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        128,
		Temperature:      0.0,
		Messages: []claudeMessage{
			{
				Role:    "user",
				Content: fmt.Sprintf(classifyPromptTemplate, content),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to serialize classify request: %w", err)
	}

	output, err := c.invokeWithRetry(ctx, body)
	if err != nil {
		return nil, err
	}

	var response claudeMessageResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bedrock response: %w", err)
	}

	if len(response.Content) == 0 {
		return nil, fmt.Errorf("empty bedrock response")
	}

	return parseClassification(response.Content[0].Text)
}

func (c *Client) invokeWithRetry(ctx context.Context, body []byte) (*bedrockruntime.InvokeModelOutput, error) {
	var lastErr error

	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		output, err := c.Client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
			ModelId:     &c.ModelID,
			Body:        body,
			Accept:      aws.String("application/json"),
			ContentType: aws.String("application/json"),
		})
		if err == nil {
			return output, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			return nil, fmt.Errorf("non-retryable error: %w", err)
		}

		delay := calculateBackoff(attempt, c.InitialDelay, c.MaxDelay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			continue
		}
	}

	return nil, fmt.Errorf("max retries %d exceeded: %w", c.MaxRetries, lastErr)
}

func parseClassification(text string) (*models.Classification, error) {
	content := stripMarkdownCodeBlock(text)

	var result models.Classification
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to deserialize classification: %w", err)
	}

	if result.Score < 0.0 || result.Score > 1.0 {
		return nil, fmt.Errorf("classification score %f out of range [0.0, 1.0]", result.Score)
	}

	return &result, nil
}

// stripMarkdownCodeBlock removes markdown code block formatting if present.
func stripMarkdownCodeBlock(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		firstNewline := strings.Index(content, "\n")
		if firstNewline == -1 {
			return content
		}

		closingBackticks := strings.LastIndex(content, "```")
		if closingBackticks == -1 || closingBackticks <= firstNewline {
			return content
		}

		content = content[firstNewline+1 : closingBackticks]
		content = strings.TrimSpace(content)
	}

	return content
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()

	if strings.Contains(errStr, "ThrottlingException") ||
		strings.Contains(errStr, "TooManyRequestsException") ||
		strings.Contains(errStr, "Rate exceeded") {
		return true
	}

	if strings.Contains(errStr, "InternalServerException") ||
		strings.Contains(errStr, "ServiceUnavailableException") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "503") {
		return true
	}

	if strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "timeout") {
		return true
	}

	return false
}

func calculateBackoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	backoff := float64(initialDelay) * math.Pow(2, float64(attempt))

	if backoff > float64(maxDelay) {
		backoff = float64(maxDelay)
	}

	jitter := backoff * 0.2 * (2*rand.Float64() - 1)
	backoff += jitter

	return time.Duration(backoff)
}
