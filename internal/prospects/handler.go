package prospects

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prospecta/prospecta-platform/internal/ai"
	"github.com/prospecta/prospecta-platform/internal/identity"
	"github.com/prospecta/prospecta-platform/pkg/logging"
)

// Header names for the caller's own AI credential.
const (
	HeaderAIKey      = "X-AI-Key"
	HeaderAIProvider = "X-AI-Provider"
)

// SettingsSource provides the per-user settings the prospect surface
// needs: column titles for exports and the outreach message template.
type SettingsSource interface {
	KanbanColumnTitles(ctx context.Context, userID string) (map[string]string, error)
	MessageTemplate(ctx context.Context, userID string) (string, error)
}

// Handler handles HTTP requests for the prospect funnel.
type Handler struct {
	manager      *Manager
	ai           *ai.Service
	settings     SettingsSource
	serverAPIKey string
	logger       *logging.Logger
}

func NewHandler(manager *Manager, aiSvc *ai.Service, settings SettingsSource, serverAPIKey string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		manager:      manager,
		ai:           aiSvc,
		settings:     settings,
		serverAPIKey: serverAPIKey,
		logger:       logger.Named("prospects"),
	}
}

func (h *Handler) credentials(r *http.Request) ai.Credentials {
	return ai.Credentials{
		APIKey:   r.Header.Get(HeaderAIKey),
		Provider: r.Header.Get(HeaderAIProvider),
	}.WithFallback(h.serverAPIKey)
}

// Search handles POST /prospects/search requests.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := h.manager.Discover(r.Context(), user.ID, h.credentials(r), req)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			// Aborted by the caller; nothing was mutated and nobody is
			// listening for the response.
			return
		case errors.Is(err, ErrDiscoveryInFlight):
			http.Error(w, err.Error(), http.StatusConflict)
		case isPrecondition(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("discovery failed", "error", err, "user_id", user.ID)
			http.Error(w, "Falha ao buscar prospects: "+err.Error(), http.StatusBadGateway)
		}
		return
	}

	h.logger.Info("discovery finished",
		"user_id", user.ID,
		"found", outcome.TotalFound,
		"added", len(outcome.Added),
	)
	writeJSON(w, http.StatusOK, outcome)
}

// List handles GET /prospects requests. ?view=board groups the
// collection into the four funnel columns; ?name= filters by name.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	nameFilter := r.URL.Query().Get("name")
	if r.URL.Query().Get("view") == "board" {
		board, err := h.manager.Board(r.Context(), user.ID, nameFilter)
		if err != nil {
			h.logger.Error("failed to build board", "error", err, "user_id", user.ID)
			http.Error(w, "failed to list prospects", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, board)
		return
	}

	list, err := h.manager.List(r.Context(), user.ID, nameFilter)
	if err != nil {
		h.logger.Error("failed to list prospects", "error", err, "user_id", user.ID)
		http.Error(w, "failed to list prospects", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prospects": list, "count": len(list)})
}

// LastFound handles GET /prospects/last-found requests.
func (h *Handler) LastFound(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	list, err := h.manager.LastFound(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "failed to list prospects", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prospects": list, "count": len(list)})
}

// Update handles PATCH /prospects/{id} requests. A remote sync failure
// still returns the optimistic value, with a warning for the user.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	prospect, err := h.manager.Update(r.Context(), user.ID, id, update)
	if prospect == nil {
		h.respondMutationError(w, err)
		return
	}

	response := map[string]any{"prospect": prospect}
	if err != nil {
		response["warning"] = "Não foi possível salvar as alterações. Elas podem ser perdidas."
	}
	writeJSON(w, http.StatusOK, response)
}

// Delete handles DELETE /prospects/{id} requests.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.manager.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "prospect not found", http.StatusNotFound)
			return
		}
		h.logger.Error("delete failed", "error", err, "prospect_id", id)
		http.Error(w, "Falha ao descartar o prospect.", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Prospect descartado com sucesso."})
}

// ClearAll handles DELETE /prospects requests.
func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	if err := h.manager.ClearAll(r.Context(), user.ID); err != nil {
		h.logger.Error("clear all failed", "error", err, "user_id", user.ID)
		http.Error(w, "failed to clear prospects", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Base de prospectados limpa com sucesso!"})
}

// ChangeStatus handles POST /prospects/{id}/status requests. The
// follow-up AI re-suggestion runs in the background.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	var req struct {
		Status Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	prospect, err := h.manager.ChangeStatus(r.Context(), user.ID, id, req.Status, h.credentials(r))
	if prospect == nil {
		h.respondMutationError(w, err)
		return
	}

	response := map[string]any{"prospect": prospect}
	if err != nil {
		response["warning"] = "Não foi possível salvar as alterações. Elas podem ser perdidas."
	}
	writeJSON(w, http.StatusOK, response)
}

// MarkContacted handles POST /prospects/{id}/contacted requests, fired
// when the user opens an outreach channel.
func (h *Handler) MarkContacted(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	prospect, err := h.manager.MarkContacted(r.Context(), user.ID, id)
	if prospect == nil {
		h.respondMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prospect": prospect})
}

// Export handles GET /prospects/export requests, streaming the base as
// a CSV download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	list, err := h.manager.List(r.Context(), user.ID, "")
	if err != nil {
		http.Error(w, "failed to list prospects", http.StatusInternalServerError)
		return
	}

	titles, err := h.settings.KanbanColumnTitles(r.Context(), user.ID)
	if err != nil {
		h.logger.Warn("falling back to raw status labels in export", "error", err)
		titles = map[string]string{}
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="prospects_export.csv"`)
	if err := WriteCSV(w, list, titles); err != nil {
		h.logger.Error("export failed", "error", err, "user_id", user.ID)
	}
}

// GenerateMessages handles POST /prospects/{id}/messages requests. The
// user's saved message template seeds the prompt unless the request
// carries its own.
func (h *Handler) GenerateMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	var req struct {
		MessageTemplate *string `json:"messageTemplate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	prospect, err := h.prospect(r.Context(), user.ID, id)
	if err != nil {
		h.respondMutationError(w, err)
		return
	}

	template := ""
	if req.MessageTemplate != nil {
		template = *req.MessageTemplate
	} else if saved, err := h.settings.MessageTemplate(r.Context(), user.ID); err == nil {
		template = saved
	}

	messages, err := h.ai.GenerateMessages(r.Context(), h.credentials(r), prospect.Context(), template)
	if err != nil {
		h.respondAIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// AnalyzeInteraction handles POST /prospects/{id}/interaction-analysis
// requests. A successful analysis also rewrites the prospect's next
// recommended action.
func (h *Handler) AnalyzeInteraction(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	var req struct {
		Conversation string `json:"conversation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Conversation == "" {
		http.Error(w, "conversation transcript is required", http.StatusBadRequest)
		return
	}

	prospect, err := h.prospect(r.Context(), user.ID, id)
	if err != nil {
		h.respondMutationError(w, err)
		return
	}

	analysis, err := h.ai.AnalyzeInteraction(r.Context(), h.credentials(r), prospect.Context(), req.Conversation)
	if err != nil {
		h.respondAIError(w, err)
		return
	}

	if _, err := h.manager.Update(r.Context(), user.ID, id, Update{NextRecommendedAction: &analysis.NewNextAction}); err != nil {
		h.logger.Warn("next action from analysis kept locally only", "prospect_id", id, "error", err)
	}
	writeJSON(w, http.StatusOK, analysis)
}

// SuggestAction handles POST /prospects/{id}/suggest-action requests.
func (h *Handler) SuggestAction(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	suggestion, err := h.manager.SuggestNextAction(r.Context(), user.ID, id, h.credentials(r))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "prospect not found", http.StatusNotFound)
			return
		}
		h.respondAIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"nextRecommendedAction": suggestion})
}

func (h *Handler) prospect(ctx context.Context, userID, id string) (*Prospect, error) {
	list, err := h.manager.List(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, ErrNotFound
}

func (h *Handler) respondMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "prospect not found", http.StatusNotFound)
	case errors.Is(err, ErrEmptyUpdate),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrInvalidScore):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "failed to update prospect", http.StatusInternalServerError)
	}
}

func (h *Handler) respondAIError(w http.ResponseWriter, err error) {
	if isPrecondition(err) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.logger.Error("ai operation failed", "error", err)
	http.Error(w, err.Error(), http.StatusBadGateway)
}

// isPrecondition reports whether an error should have been caught
// before any collaborator call.
func isPrecondition(err error) bool {
	return errors.Is(err, ErrMissingQuery) ||
		errors.Is(err, ErrMissingLocation) ||
		errors.Is(err, ErrNoSources) ||
		errors.Is(err, ErrUnknownSource) ||
		errors.Is(err, ai.ErrMissingAPIKey) ||
		errors.Is(err, ai.ErrUnsupportedProvider)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
