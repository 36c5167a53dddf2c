package api

import (
	"github.com/secureproxy/validation-gateway/internal/models"
)

// ValidateRequest is the body of POST /api/v1/validate. Exactly one of Text
// or File is expected; File carries base64-encoded bytes.
type ValidateRequest struct {
	Text          string `json:"text,omitempty"`
	File          string `json:"file,omitempty"`
	SecurityLevel string `json:"security_level,omitempty"`
}

// ValidateResponse is a verdict tagged with the server-assigned request id.
type ValidateResponse struct {
	RequestID string `json:"request_id"`
	models.VerdictResult
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

type StatsResponse struct {
	Counters map[string]int64 `json:"counters"`
}

type ClearCacheResponse struct {
	Cleared bool   `json:"cleared"`
	Pattern string `json:"pattern"`
}
