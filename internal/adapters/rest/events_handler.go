package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/port"
	"time"
)

// SubscribeToEvents обрабатывает GET /api/v1/explorer/events (SSE).
// Сразу после подключения отправляются connected и текущее состояние.
func (h *Handlers) SubscribeToEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := contextkeys.SessionIDFromContext(r.Context())
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SubscribeToEvents"})

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteJSONError(w, http.StatusInternalServerError, "Streaming is not supported")
		return
	}

	handlerLogger.Info("New client subscribing to SSE events", nil)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := h.deps.Events.AddClient(sessionID)
	defer h.deps.Events.RemoveClient(sessionID, clientChan)

	e := h.deps.Explorers.Get(sessionID)

	fmt.Fprintf(w, "event: connected\ndata: {\"session_id\":%q}\n\n", sessionID)
	if snapshot, err := json.Marshal(e.State()); err == nil {
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", domain.EventState, snapshot)
	}
	flusher.Flush()

	// комментарии SSE (строки с ":") держат соединение, браузер их игнорирует
	ticker := time.NewTicker(h.deps.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case data := <-clientChan:
			if _, err := w.Write(data); err != nil {
				handlerLogger.Error("Error writing to client, closing SSE connection", err, nil)
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			handlerLogger.Info("SSE client disconnected", nil)
			return
		}
	}
}
