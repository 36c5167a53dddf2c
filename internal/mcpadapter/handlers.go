// Package mcpadapter exposes content validation as MCP tools.
package mcpadapter

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/secureproxy/validation-gateway/internal/cache"
	"github.com/secureproxy/validation-gateway/internal/models"
	"github.com/secureproxy/validation-gateway/internal/validation"
)

// ValidateInput is the MCP tool input schema (matches HTTP API field names).
type ValidateInput struct {
	Content       string `json:"content" jsonschema:"content to validate; base64-encoded when kind is file"`
	Kind          string `json:"kind,omitempty" jsonschema:"content kind: text or file (default: text)"`
	SecurityLevel string `json:"security_level,omitempty" jsonschema:"security level: high, medium, or low (default: server default)"`
}

// StatsOutput bundles the validation counters with cache connectivity.
type StatsOutput struct {
	Counters map[string]int64 `json:"counters"`
	Cache    cache.Info       `json:"cache"`
}

// NewValidateHandler returns a tool handler that runs the validation
// pipeline. Pass the returned function to mcp.AddTool.
func NewValidateHandler(service *validation.Service) func(context.Context, *mcp.CallToolRequest, ValidateInput) (*mcp.CallToolResult, models.VerdictResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ValidateInput) (*mcp.CallToolResult, models.VerdictResult, error) {
		return ValidateContent(ctx, service, req, input)
	}
}

// ValidateContent validates one payload and returns the verdict.
func ValidateContent(
	ctx context.Context,
	service *validation.Service,
	req *mcp.CallToolRequest,
	input ValidateInput,
) (*mcp.CallToolResult, models.VerdictResult, error) {
	level, ok := models.ParseSecurityLevel(input.SecurityLevel)
	if !ok {
		level = service.DefaultLevel()
	}

	var result models.VerdictResult
	if models.ContentKind(input.Kind) == models.KindFile {
		result = service.ValidateFile(ctx, input.Content, level)
	} else {
		result = service.ValidateText(ctx, input.Content, level)
	}

	return nil, result, nil
}

// NewCacheStatsHandler returns a tool handler reporting counters and cache
// state. Pass the returned function to mcp.AddTool.
func NewCacheStatsHandler(service *validation.Service, store *cache.Store) func(context.Context, *mcp.CallToolRequest, struct{}) (*mcp.CallToolResult, StatsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, StatsOutput, error) {
		return nil, StatsOutput{
			Counters: service.Stats(ctx),
			Cache:    store.GetInfo(ctx),
		}, nil
	}
}
