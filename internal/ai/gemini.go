package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient implements LLMClient against Google's Gemini API.
type GeminiClient struct {
	client  *genai.Client
	modelID string
}

func NewGeminiClient(ctx context.Context, apiKey, modelID string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		modelID: modelID,
	}, nil
}

// Generate sends a single-prompt request to Gemini and returns the
// response text plus any web citations when grounding was requested.
func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return GenerateResponse{}, errors.New("ai: gemini requires a non-empty prompt")
	}

	var config *genai.GenerateContentConfig
	if req.UseSearchGrounding {
		config = &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.modelID, genai.Text(req.Prompt), config)
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("ai: gemini generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return GenerateResponse{}, errors.New("ai: gemini returned no candidates")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return GenerateResponse{}, errors.New("ai: gemini returned empty content")
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Text == "" {
			continue
		}
		text.WriteString(part.Text)
	}

	result := GenerateResponse{Text: strings.TrimSpace(text.String())}

	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil || strings.TrimSpace(chunk.Web.URI) == "" {
				continue
			}
			result.Sources = append(result.Sources, GroundingSource{
				Title: chunk.Web.Title,
				URI:   chunk.Web.URI,
			})
		}
	}

	if resp.UsageMetadata != nil {
		result.Usage = TokenUsage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  resp.UsageMetadata.TotalTokenCount,
		}
	}

	return result, nil
}

// Close satisfies LLMClient. The SDK client is plain HTTP and holds no
// connection to release.
func (c *GeminiClient) Close() error {
	return nil
}

// GeminiFactory builds a GeminiClient per credential. Clients are
// short-lived because every user brings their own API key.
type GeminiFactory struct {
	ModelID string
}

func (f GeminiFactory) NewClient(ctx context.Context, creds Credentials) (LLMClient, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return NewGeminiClient(ctx, creds.APIKey, f.ModelID)
}
