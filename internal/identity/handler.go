package identity

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/prospecta/prospecta-platform/pkg/logging"
)

// Handler exposes the identity-service operations over HTTP for the SPA.
type Handler struct {
	client *Client
	logger *logging.Logger
}

// NewHandler creates a new identity handler.
func NewHandler(client *Client, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{client: client, logger: logger}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Whatsapp string `json:"whatsapp"`
}

// SignUp handles POST /auth/signup.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		http.Error(w, "email e senha são obrigatórios", http.StatusBadRequest)
		return
	}

	metadata := map[string]any{}
	if req.Name != "" {
		metadata["name"] = req.Name
	}
	if req.Whatsapp != "" {
		metadata["whatsapp"] = req.Whatsapp
	}

	user, err := h.client.SignUp(r.Context(), req.Email, req.Password, metadata)
	if err != nil {
		h.logger.Error("sign up failed", "error", err)
		http.Error(w, "Falha ao criar conta. Tente novamente.", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login. Accounts that have not been approved by an
// administrator receive 403 and no session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.client.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrPendingApproval):
			http.Error(w, ErrPendingApproval.Error(), http.StatusForbidden)
		case errors.Is(err, ErrInvalidCredentials):
			http.Error(w, "Email ou senha inválidos.", http.StatusUnauthorized)
		default:
			h.logger.Error("login failed", "error", err)
			http.Error(w, "Falha ao entrar. Tente novamente.", http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}
	if err := h.client.Logout(r.Context(), token); err != nil {
		h.logger.Error("logout failed", "error", err)
		http.Error(w, "Falha ao sair.", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type recoverRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset handles POST /auth/password-reset.
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		http.Error(w, "email é obrigatório", http.StatusBadRequest)
		return
	}
	if err := h.client.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error("password reset request failed", "error", err)
		http.Error(w, "Falha ao solicitar redefinição de senha.", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "sent"})
}

// UpdateProfile handles PATCH /api/v1/profile. Only the metadata fields the
// application owns can be changed through this endpoint.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name     *string `json:"name"`
		Whatsapp *string `json:"whatsapp"`
		Plan     *string `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	metadata := map[string]any{}
	if req.Name != nil {
		metadata["name"] = *req.Name
	}
	if req.Whatsapp != nil {
		metadata["whatsapp"] = *req.Whatsapp
	}
	if req.Plan != nil {
		metadata["plan"] = *req.Plan
	}
	if len(metadata) == 0 {
		http.Error(w, "nenhum campo para atualizar", http.StatusBadRequest)
		return
	}

	user, err := h.client.UpdateProfile(r.Context(), token, metadata)
	if err != nil {
		h.logger.Error("profile update failed", "error", err)
		http.Error(w, "Falha ao atualizar o perfil.", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles POST /auth/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.client.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Error("session refresh failed", "error", err)
		http.Error(w, "Sessão expirada. Entre novamente.", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}
