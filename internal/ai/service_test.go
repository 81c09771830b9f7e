package ai

import (
	"context"
	"errors"
	"testing"
)

type fakeClient struct {
	response GenerateResponse
	err      error
	lastReq  GenerateRequest
	closed   bool
}

func (f *fakeClient) Generate(_ context.Context, req GenerateRequest) (GenerateResponse, error) {
	f.lastReq = req
	return f.response, f.err
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

type fakeFactory struct {
	client *fakeClient
}

func (f *fakeFactory) NewClient(_ context.Context, creds Credentials) (LLMClient, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return f.client, nil
}

func newTestService(client *fakeClient) *Service {
	return NewService(&fakeFactory{client: client}, nil, nil)
}

var testCreds = Credentials{APIKey: "key", Provider: ProviderGemini}

func TestDiscoverNormalizesCandidates(t *testing.T) {
	client := &fakeClient{response: GenerateResponse{
		Text: "```json\n[" +
			`{"name": "Padaria Pão Quente", "phone": "+55 (21) 99999-9999", "aiScore": "85", "analysisBreakdown": {"finding": "sem site", "evidence": "busca vazia"}, "improvementSuggestions": ["criar site", "ativar GMN"]},` +
			`{"name": "Sem Telefone Ltda", "phone": ""},` +
			`{"description": "sem nome", "phone": "+5521988887777"}` +
			"]\n```",
		Sources: []GroundingSource{{URI: "https://example.com"}},
	}}

	result, err := newTestService(client).Discover(context.Background(), testCreds, "padarias", "Rio de Janeiro, Brasil", []string{SourceGoogle})
	if err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	if !client.lastReq.UseSearchGrounding {
		t.Error("expected search grounding for source-based discovery")
	}
	if !client.closed {
		t.Error("expected per-call client to be closed")
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("expected 1 candidate after filtering, got %d", len(result.Candidates))
	}

	c := result.Candidates[0]
	if c.Phone != "+5521999999999" {
		t.Errorf("phone not normalized: %q", c.Phone)
	}
	if c.AIScore != 85 {
		t.Errorf("score not coerced: %d", c.AIScore)
	}
	if len(c.AnalysisBreakdown) != 1 || c.AnalysisBreakdown[0].Finding != "sem site" {
		t.Errorf("breakdown not coerced: %+v", c.AnalysisBreakdown)
	}
	if c.ImprovementSuggestions != "criar site\nativar GMN" {
		t.Errorf("suggestions not joined: %q", c.ImprovementSuggestions)
	}
	if c.NextRecommendedAction != "Iniciar contato" {
		t.Errorf("missing next action should default, got %q", c.NextRecommendedAction)
	}
	if len(result.Sources) != 1 {
		t.Errorf("expected grounding sources to pass through, got %d", len(result.Sources))
	}
}

func TestDiscoverRejectsNonListOutput(t *testing.T) {
	client := &fakeClient{response: GenerateResponse{Text: "não encontrei nada relevante"}}
	_, err := newTestService(client).Discover(context.Background(), testCreds, "q", "loc", []string{SourceGoogle})
	if !errors.Is(err, ErrInvalidProspectList) {
		t.Fatalf("expected ErrInvalidProspectList, got %v", err)
	}
}

func TestGenerateMessagesRequiresAllThreeParts(t *testing.T) {
	client := &fakeClient{response: GenerateResponse{Text: `{"greeting": "Oi"}`}}
	_, err := newTestService(client).GenerateMessages(context.Background(), testCreds, ProspectContext{Name: "Padaria"}, "")
	if !errors.Is(err, ErrIncompleteMessages) {
		t.Fatalf("expected ErrIncompleteMessages, got %v", err)
	}
}

func TestGenerateMessagesParsesFencedResponse(t *testing.T) {
	client := &fakeClient{response: GenerateResponse{
		Text: "```json\n{\"greeting\": \"Oi\", \"mainMessage\": \"Valor\", \"closingMessage\": \"CTA\"}\n```",
	}}
	messages, err := newTestService(client).GenerateMessages(context.Background(), testCreds, ProspectContext{Name: "Padaria"}, "modelo")
	if err != nil {
		t.Fatalf("generate messages failed: %v", err)
	}
	if messages.Greeting != "Oi" || messages.MainMessage != "Valor" || messages.ClosingMessage != "CTA" {
		t.Errorf("unexpected messages: %+v", messages)
	}
}

func TestSuggestNextActionFallsBackOnEmpty(t *testing.T) {
	client := &fakeClient{response: GenerateResponse{Text: "   "}}
	got, err := newTestService(client).SuggestNextAction(context.Background(), testCreds, ProspectContext{Name: "Padaria", StageLabel: "Em Negociação"})
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	if got != NoSuggestionFallback {
		t.Errorf("expected fallback placeholder, got %q", got)
	}
}

func TestSuggestNextActionStripsQuotes(t *testing.T) {
	client := &fakeClient{response: GenerateResponse{Text: `"Agendar chamada de 15 minutos."`}}
	got, err := newTestService(client).SuggestNextAction(context.Background(), testCreds, ProspectContext{Name: "Padaria"})
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	if got != "Agendar chamada de 15 minutos." {
		t.Errorf("expected quotes removed, got %q", got)
	}
}

func TestAnalyzeInteractionRequiresBothKeys(t *testing.T) {
	client := &fakeClient{response: GenerateResponse{Text: `{"suggestedResponse": "resposta"}`}}
	_, err := newTestService(client).AnalyzeInteraction(context.Background(), testCreds, ProspectContext{Name: "Padaria"}, "transcript")
	if !errors.Is(err, ErrIncompleteAnalysis) {
		t.Fatalf("expected ErrIncompleteAnalysis, got %v", err)
	}
}

func TestCredentialsValidation(t *testing.T) {
	if err := (Credentials{APIKey: "k", Provider: "openai"}).Validate(); !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("expected ErrUnsupportedProvider, got %v", err)
	}
	if err := (Credentials{Provider: ProviderGemini}).Validate(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
	if err := (Credentials{APIKey: "k"}).Validate(); err != nil {
		t.Errorf("empty provider should default to gemini, got %v", err)
	}

	creds := Credentials{}.WithFallback("server-key")
	if creds.APIKey != "server-key" || creds.Provider != ProviderGemini {
		t.Errorf("fallback not applied: %+v", creds)
	}
	kept := Credentials{APIKey: "user-key"}.WithFallback("server-key")
	if kept.APIKey != "user-key" {
		t.Errorf("explicit key should win, got %q", kept.APIKey)
	}
}

func TestOperationsSurfaceGenerationFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("quota exceeded")}
	svc := newTestService(client)

	if _, err := svc.Discover(context.Background(), testCreds, "q", "loc", nil); err == nil {
		t.Error("expected discover to fail")
	}
	if _, err := svc.GenerateMessages(context.Background(), testCreds, ProspectContext{}, ""); err == nil {
		t.Error("expected message generation to fail")
	}
	if _, err := svc.SuggestNextAction(context.Background(), testCreds, ProspectContext{}); err == nil {
		t.Error("expected suggestion to fail")
	}
}
