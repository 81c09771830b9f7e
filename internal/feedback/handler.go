package feedback

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prospecta/prospecta-platform/internal/identity"
	"github.com/prospecta/prospecta-platform/pkg/logging"
)

// Handler exposes the feedback submission endpoint.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger.Named("feedback")}
}

// Submit handles POST /feedback requests.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	var sub Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	stored, err := h.service.Submit(r.Context(), user, sub)
	switch {
	case errors.Is(err, ErrEmptySubmission) || errors.Is(err, ErrInvalidRating):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case IsThrottled(err):
		http.Error(w, rateLimitedMessage, http.StatusTooManyRequests)
	case err != nil:
		h.logger.Error("feedback submission failed", "error", err, "user_id", user.ID)
		http.Error(w, genericFailureMessage, http.StatusBadGateway)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(stored); err != nil {
			h.logger.Error("failed to encode response", "error", err)
		}
	}
}
