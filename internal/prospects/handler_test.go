package prospects

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prospecta/prospecta-platform/internal/ai"
	"github.com/prospecta/prospecta-platform/internal/identity"
)

type fakeSettings struct {
	titles   map[string]string
	template string
}

func (f *fakeSettings) KanbanColumnTitles(_ context.Context, _ string) (map[string]string, error) {
	return f.titles, nil
}

func (f *fakeSettings) MessageTemplate(_ context.Context, _ string) (string, error) {
	return f.template, nil
}

func newTestRouter(m *Manager, aiSvc *ai.Service) *chi.Mux {
	h := NewHandler(m, aiSvc, &fakeSettings{titles: map[string]string{"new": "Novos"}}, "server-key", nil)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := identity.WithUser(req.Context(), identity.UserInfo{ID: "user-1", Email: "ana@example.com"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/prospects/search", h.Search)
	r.Get("/prospects", h.List)
	r.Get("/prospects/export", h.Export)
	r.Patch("/prospects/{id}", h.Update)
	r.Delete("/prospects/{id}", h.Delete)
	r.Post("/prospects/{id}/status", h.ChangeStatus)
	r.Post("/prospects/{id}/contacted", h.MarkContacted)
	r.Post("/prospects/{id}/messages", h.GenerateMessages)
	return r
}

func newHandlerFixture(t *testing.T, client *scriptedClient) (*chi.Mux, *Manager, *InMemoryRepository) {
	t.Helper()
	repo := NewInMemoryRepository()
	aiSvc := ai.NewService(&scriptedFactory{client: client}, nil, nil)
	m := NewManager(ManagerConfig{Repo: repo, AI: aiSvc})
	return newTestRouter(m, aiSvc), m, repo
}

func TestSearchEndpoint(t *testing.T) {
	router, _, _ := newHandlerFixture(t, &scriptedClient{responses: []ai.GenerateResponse{
		{Text: "[" + candidateJSON("Padaria Central", "") + "]"},
	}})

	body := `{"query": "padarias", "location": "Rio de Janeiro", "sources": ["google"]}`
	req := httptest.NewRequest(http.MethodPost, "/prospects/search", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var outcome DiscoverOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(outcome.Added) != 1 {
		t.Errorf("expected 1 added, got %d", len(outcome.Added))
	}
	if outcome.Message != "1 novo(s) prospect(s) adicionado(s) à sua base." {
		t.Errorf("unexpected message %q", outcome.Message)
	}
}

func TestSearchEndpointPreconditionIs400(t *testing.T) {
	router, _, _ := newHandlerFixture(t, &scriptedClient{})

	req := httptest.NewRequest(http.MethodPost, "/prospects/search", strings.NewReader(`{"location": "Rio", "sources": ["google"]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "critério de busca") {
		t.Errorf("expected product copy in error, got %q", rec.Body.String())
	}
}

func TestUpdateEndpointNotFound(t *testing.T) {
	router, _, _ := newHandlerFixture(t, &scriptedClient{})

	req := httptest.NewRequest(http.MethodPatch, "/prospects/missing", strings.NewReader(`{"name": "Novo"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGenerateMessagesEndpointIncompleteResponse(t *testing.T) {
	client := &scriptedClient{responses: []ai.GenerateResponse{
		{Text: `{"greeting": "Oi"}`},
	}}
	router, m, repo := newHandlerFixture(t, client)
	seedProspects(t, m, repo, "user-1", candidateJSON("Padaria Central", ""))

	list, _ := m.List(context.Background(), "user-1", "")
	req := httptest.NewRequest(http.MethodPost, "/prospects/"+list[0].ID+"/messages", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "incompleta") {
		t.Errorf("expected incomplete-response copy, got %q", rec.Body.String())
	}
}

func TestMarkContactedEndpoint(t *testing.T) {
	router, m, repo := newHandlerFixture(t, &scriptedClient{})
	added := seedProspects(t, m, repo, "user-1", candidateJSON("Padaria Central", ""))

	req := httptest.NewRequest(http.MethodPost, "/prospects/"+added[0].ID+"/contacted", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Prospect Prospect `json:"prospect"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Prospect.Status != StatusContacted {
		t.Errorf("expected contacted, got %s", resp.Prospect.Status)
	}
}

func TestExportEndpoint(t *testing.T) {
	router, m, repo := newHandlerFixture(t, &scriptedClient{})
	seedProspects(t, m, repo, "user-1", candidateJSON("Padaria Central", ""))

	req := httptest.NewRequest(http.MethodGet, "/prospects/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Errorf("unexpected content type %q", got)
	}
	if !strings.Contains(rec.Body.String(), "Padaria Central") {
		t.Error("exported csv missing prospect row")
	}
	if !strings.Contains(rec.Body.String(), "Novos") {
		t.Error("exported csv should use the custom column title")
	}
}
