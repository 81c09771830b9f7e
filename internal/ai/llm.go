package ai

import "context"

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// GroundingSource is one web citation attached to a grounded generation.
type GroundingSource struct {
	Title string `json:"title,omitempty"`
	URI   string `json:"uri"`
}

type GenerateRequest struct {
	Prompt string
	// UseSearchGrounding enables the provider's web search tool so the
	// model can cite live sources.
	UseSearchGrounding bool
}

type GenerateResponse struct {
	Text    string
	Sources []GroundingSource
	Usage   TokenUsage
}

// LLMClient is a single-operation generative client bound to one
// credential. Callers own the Close.
type LLMClient interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	Close() error
}

// ClientFactory builds an LLMClient for a per-request credential. Each
// user brings their own API key, so clients are constructed per call
// rather than held for the process lifetime.
type ClientFactory interface {
	NewClient(ctx context.Context, creds Credentials) (LLMClient, error)
}
