package rest

import (
	"net"
	"net/http"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/port"
)

// GetViewport обрабатывает GET /api/v1/map/viewport
func (h *Handlers) GetViewport(w http.ResponseWriter, r *http.Request) {
	state, saved := h.deps.MapView.Load(r.Context())
	RespondWithJSON(w, http.StatusOK, ViewportResponse{State: state, Saved: saved})
}

// SaveViewport обрабатывает PUT /api/v1/map/viewport
func (h *Handlers) SaveViewport(w http.ResponseWriter, r *http.Request) {
	var state domain.MapViewState
	if err := decodeJSONBody(r, &state); err != nil {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, err.Error()))
		return
	}
	if err := h.deps.MapView.Save(r.Context(), state); err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, ViewportResponse{State: state, Saved: true})
}

// LocateViewport обрабатывает POST /api/v1/map/viewport/locate.
// Неудача не ошибка: отдается вид по умолчанию и сообщение.
func (h *Handlers) LocateViewport(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	contextkeys.LoggerFromContext(r.Context()).Debug("Locating client", port.Fields{"ip": ip})
	RespondWithJSON(w, http.StatusOK, h.deps.MapView.Locate(r.Context(), ip))
}

// clientIP - адрес клиента. middleware.RealIP уже подставил X-Forwarded-For, если он был.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
