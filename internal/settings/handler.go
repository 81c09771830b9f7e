package settings

import (
	"encoding/json"
	"net/http"

	"github.com/prospecta/prospecta-platform/internal/identity"
	"github.com/prospecta/prospecta-platform/pkg/logging"
)

// Handler handles HTTP requests for user settings.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger.Named("settings")}
}

// Get handles GET /settings requests.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	settings, err := h.store.Get(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to load settings", "error", err, "user_id", user.ID)
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Update handles PATCH /settings requests.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if update.Empty() {
		http.Error(w, "no fields to update", http.StatusBadRequest)
		return
	}

	settings, err := h.store.Update(r.Context(), user.ID, update)
	if err != nil {
		h.logger.Error("failed to update settings", "error", err, "user_id", user.ID)
		http.Error(w, "failed to update settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// FeedbackPrompt handles GET /settings/feedback-prompt requests.
func (h *Handler) FeedbackPrompt(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	show, err := h.store.ShouldPromptFeedback(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to check feedback prompt", "error", err, "user_id", user.ID)
		http.Error(w, "failed to check feedback prompt", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"shouldPrompt": show})
}

// MarkFeedbackPrompted handles POST /settings/feedback-prompt requests.
func (h *Handler) MarkFeedbackPrompted(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	if err := h.store.MarkFeedbackPrompted(r.Context(), user.ID); err != nil {
		h.logger.Error("failed to mark feedback prompted", "error", err, "user_id", user.ID)
		http.Error(w, "failed to mark feedback prompted", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
