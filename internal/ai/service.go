package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prospecta/prospecta-platform/internal/observability/metrics"
	"github.com/prospecta/prospecta-platform/pkg/logging"
)

// Service runs the four generative operations: prospect discovery,
// outreach drafting, next-action coaching, and conversation analysis.
// Clients are built per call because credentials are per user.
type Service struct {
	factory ClientFactory
	logger  *logging.Logger
	metrics *metrics.AIMetrics
}

func NewService(factory ClientFactory, logger *logging.Logger, m *metrics.AIMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		factory: factory,
		logger:  logger.Named("ai"),
		metrics: m,
	}
}

// Discover searches for business leads matching the query and returns
// normalized candidates plus the web sources the model cited. Search
// grounding is enabled whenever at least one source channel is given.
func (s *Service) Discover(ctx context.Context, creds Credentials, query, location string, sources []string) (DiscoveryResult, error) {
	start := time.Now()
	resp, err := s.generate(ctx, creds, GenerateRequest{
		Prompt:             buildDiscoveryPrompt(query, location, sources),
		UseSearchGrounding: len(sources) > 0,
	})
	s.observe("discover", start, err)
	if err != nil {
		return DiscoveryResult{}, err
	}

	raw, err := ExtractJSON(resp.Text)
	if err != nil {
		s.logger.Warn("discovery returned unparseable output", "error", err)
		return DiscoveryResult{}, ErrInvalidProspectList
	}

	candidates, err := decodeCandidates(raw)
	if err != nil {
		return DiscoveryResult{}, err
	}

	s.logger.Info("discovery completed",
		"candidates", len(candidates),
		"sources", len(resp.Sources),
		"tokens", resp.Usage.TotalTokens,
	)
	return DiscoveryResult{Candidates: candidates, Sources: resp.Sources}, nil
}

// GenerateMessages drafts the three-part WhatsApp outreach sequence. A
// response missing any of the three parts is a hard failure.
func (s *Service) GenerateMessages(ctx context.Context, creds Credentials, p ProspectContext, userTemplate string) (OutreachMessages, error) {
	start := time.Now()
	resp, err := s.generate(ctx, creds, GenerateRequest{Prompt: buildMessagesPrompt(p, userTemplate)})
	s.observe("messages", start, err)
	if err != nil {
		return OutreachMessages{}, err
	}

	raw, err := ExtractJSON(resp.Text)
	if err != nil {
		return OutreachMessages{}, ErrIncompleteMessages
	}

	var messages OutreachMessages
	if err := json.Unmarshal(raw, &messages); err != nil {
		return OutreachMessages{}, ErrIncompleteMessages
	}
	if messages.Greeting == "" || messages.MainMessage == "" || messages.ClosingMessage == "" {
		s.logger.Warn("outreach response missing required keys")
		return OutreachMessages{}, ErrIncompleteMessages
	}
	return messages, nil
}

// SuggestNextAction asks for the next best move for the seller. This
// operation is advisory, so an empty answer degrades to a fixed
// placeholder instead of failing.
func (s *Service) SuggestNextAction(ctx context.Context, creds Credentials, p ProspectContext) (string, error) {
	start := time.Now()
	resp, err := s.generate(ctx, creds, GenerateRequest{Prompt: buildSuggestionPrompt(p)})
	s.observe("suggest", start, err)
	if err != nil {
		return "", err
	}

	suggestion := strings.TrimSpace(resp.Text)
	if suggestion == "" {
		return NoSuggestionFallback, nil
	}
	return strings.ReplaceAll(suggestion, `"`, ""), nil
}

// AnalyzeInteraction reads a pasted conversation transcript and returns
// a suggested reply plus the seller's new next action.
func (s *Service) AnalyzeInteraction(ctx context.Context, creds Credentials, p ProspectContext, transcript string) (InteractionAnalysis, error) {
	start := time.Now()
	resp, err := s.generate(ctx, creds, GenerateRequest{Prompt: buildAnalysisPrompt(p, transcript)})
	s.observe("analyze", start, err)
	if err != nil {
		return InteractionAnalysis{}, err
	}

	raw, err := ExtractJSON(resp.Text)
	if err != nil {
		return InteractionAnalysis{}, ErrIncompleteAnalysis
	}

	var analysis InteractionAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return InteractionAnalysis{}, ErrIncompleteAnalysis
	}
	if analysis.SuggestedResponse == "" || analysis.NewNextAction == "" {
		return InteractionAnalysis{}, ErrIncompleteAnalysis
	}
	return analysis, nil
}

func (s *Service) generate(ctx context.Context, creds Credentials, req GenerateRequest) (GenerateResponse, error) {
	client, err := s.factory.NewClient(ctx, creds)
	if err != nil {
		return GenerateResponse{}, err
	}
	defer client.Close()

	resp, err := client.Generate(ctx, req)
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("ai: generation failed: %w", err)
	}
	return resp, nil
}

func (s *Service) observe(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.ObserveOperation(operation, status)
	s.metrics.ObserveLatency(operation, time.Since(start).Seconds())
}
