package rest

import (
	"net/http"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/errnorm"
	"property-explorer/internal/core/port"
	"property-explorer/internal/core/usecase"
	"strconv"
)

func (h *Handlers) explorer(r *http.Request) *usecase.Explorer {
	return h.deps.Explorers.Get(contextkeys.SessionIDFromContext(r.Context()))
}

// GetFilters обрабатывает GET /api/v1/explorer/filters
func (h *Handlers) GetFilters(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, h.explorer(r).Filters.Filters())
}

// SetFilters обрабатывает PUT /api/v1/explorer/filters. Фильтр заменяется целиком.
func (h *Handlers) SetFilters(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SetFilters"})

	var filters domain.FilterCriteria
	if err := decodeJSONBody(r, &filters); err != nil {
		logger.Warn("Invalid filters payload", port.Fields{"error": err.Error()})
		writeAPIError(w, h.deps.Normalizer, invalidFilter(h.deps.Normalizer, err))
		return
	}

	e := h.explorer(r)
	version := e.Filters.SetFilters(filters)
	logger.Info("Filters replaced", port.Fields{"version": version})

	RespondWithJSON(w, http.StatusOK, e.State())
}

// ResetFilters обрабатывает DELETE /api/v1/explorer/filters
func (h *Handlers) ResetFilters(w http.ResponseWriter, r *http.Request) {
	e := h.explorer(r)
	e.Filters.Reset()
	RespondWithJSON(w, http.StatusOK, e.State())
}

// GetState обрабатывает GET /api/v1/explorer/state
func (h *Handlers) GetState(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, h.explorer(r).State())
}

// LoadMore обрабатывает POST /api/v1/explorer/load-more. Подгрузка идет в фоне,
// результат приходит событием state.
func (h *Handlers) LoadMore(w http.ResponseWriter, r *http.Request) {
	e := h.explorer(r)
	started, err := e.Orchestrator.LoadMore(r.Context())
	if err != nil {
		contextkeys.LoggerFromContext(r.Context()).Error("Load more failed to start", err, nil)
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}

	status := http.StatusOK
	if started {
		status = http.StatusAccepted
	}
	RespondWithJSON(w, status, ActionResponse{Started: started, State: e.State()})
}

func (h *Handlers) NextPage(w http.ResponseWriter, r *http.Request) {
	e := h.explorer(r)
	started := e.Orchestrator.NextPage()
	RespondWithJSON(w, http.StatusOK, ActionResponse{Started: started, State: e.State()})
}

func (h *Handlers) PreviousPage(w http.ResponseWriter, r *http.Request) {
	e := h.explorer(r)
	started := e.Orchestrator.PreviousPage()
	RespondWithJSON(w, http.StatusOK, ActionResponse{Started: started, State: e.State()})
}

func (h *Handlers) GetSelection(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, h.explorer(r).Selection.Pointer())
}

// SetSelection обрабатывает PUT /api/v1/explorer/selection
func (h *Handlers) SetSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, err.Error()))
		return
	}

	fields := map[string]string{}
	if req.PropertyID <= 0 {
		fields["property_id"] = h.deps.Normalizer.Text(errnorm.MsgFieldInvalid, "property_id")
	}
	if !req.Origin.IsValid() {
		fields["origin"] = h.deps.Normalizer.Text(errnorm.MsgFieldInvalid, "origin")
	}
	if len(fields) > 0 {
		writeAPIError(w, h.deps.Normalizer, h.deps.Normalizer.Validation(fields))
		return
	}

	e := h.explorer(r)
	e.Selection.Select(req.PropertyID, req.Origin)
	RespondWithJSON(w, http.StatusOK, e.Selection.Pointer())
}

func (h *Handlers) ClearSelection(w http.ResponseWriter, r *http.Request) {
	e := h.explorer(r)
	e.Selection.Clear()
	RespondWithJSON(w, http.StatusOK, e.Selection.Pointer())
}

// GetClusters обрабатывает GET /api/v1/explorer/clusters?zoom=
func (h *Handlers) GetClusters(w http.ResponseWriter, r *http.Request) {
	zoom, err := strconv.Atoi(r.URL.Query().Get("zoom"))
	if err != nil || zoom < 0 || zoom > 22 {
		writeAPIError(w, h.deps.Normalizer, h.deps.Normalizer.Validation(map[string]string{
			"zoom": h.deps.Normalizer.Text(errnorm.MsgFieldInvalid, "zoom"),
		}))
		return
	}

	var items []domain.Property
	if result := h.explorer(r).State().Result; result != nil {
		items = result.Items
	}

	RespondWithJSON(w, http.StatusOK, ClustersResponse{
		Zoom:      zoom,
		Precision: usecase.ClusterPrecision(zoom),
		Clusters:  usecase.ClusterProperties(items, zoom),
	})
}

// CloseSession обрабатывает DELETE /api/v1/session
func (h *Handlers) CloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID := contextkeys.SessionIDFromContext(r.Context())
	if h.deps.Explorers.Close(sessionID) {
		contextkeys.LoggerFromContext(r.Context()).Info("Explorer session closed by client", nil)
	}
	w.WriteHeader(http.StatusNoContent)
}
