package rest

import (
	"net/http"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/port"
)

// Токены хранятся на стороне сервиса в сессии, наружу отдается только пользователь и сообщение.
type authResponse struct {
	User    *domain.User `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
}

func toAuthResponse(tokens domain.AuthTokens) authResponse {
	return authResponse{User: tokens.User, Message: tokens.Message}
}

// Login обрабатывает POST /api/v1/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var creds domain.LoginCredentials
	if err := decodeJSONBody(r, &creds); err != nil {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, err.Error()))
		return
	}
	tokens, err := h.deps.Auth.Login(r.Context(), creds)
	if err != nil {
		contextkeys.LoggerFromContext(r.Context()).Warn("Login failed", port.Fields{"error": err.Error()})
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toAuthResponse(tokens))
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var data domain.RegisterData
	if err := decodeJSONBody(r, &data); err != nil {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, err.Error()))
		return
	}
	tokens, err := h.deps.Auth.Register(r.Context(), data)
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, toAuthResponse(tokens))
}

func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.deps.Auth.Refresh(r.Context())
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toAuthResponse(tokens))
}

// Logout всегда очищает токены сессии. Ошибка бэкенда только логируется.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Auth.Logout(r.Context()); err != nil {
		contextkeys.LoggerFromContext(r.Context()).Warn("Backend logout failed, local tokens cleared", port.Fields{"error": err.Error()})
	}
	w.WriteHeader(http.StatusNoContent)
}
