package rest

import (
	"net/http"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/port"
	"strings"
)

// GetProperty обрабатывает GET /api/v1/properties/{propertyID}
func (h *Handlers) GetProperty(w http.ResponseWriter, r *http.Request) {
	id, err := int64URLParam(r, "propertyID")
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, err.Error()))
		return
	}

	property, err := h.deps.Properties.Get(r.Context(), id)
	if err != nil {
		contextkeys.LoggerFromContext(r.Context()).Warn("Get property failed", port.Fields{"property_id": id, "error": err.Error()})
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, property)
}

func (h *Handlers) GetFeaturedProperties(w http.ResponseWriter, r *http.Request) {
	items, err := h.deps.Properties.Featured(r.Context())
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	if items == nil {
		items = []domain.Property{}
	}
	RespondWithJSON(w, http.StatusOK, items)
}

// SearchProperties обрабатывает GET /api/v1/properties/search?q=...&<фильтры>
func (h *Handlers) SearchProperties(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	query := strings.TrimSpace(values.Get("q"))
	values.Del("q")

	filters, err := domain.FilterCriteriaFromValues(values)
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, invalidFilter(h.deps.Normalizer, err))
		return
	}

	result, err := h.deps.Properties.Search(r.Context(), query, filters)
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handlers) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	items, err := h.deps.Bookmarks.List(r.Context())
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	if items == nil {
		items = []domain.Bookmark{}
	}
	RespondWithJSON(w, http.StatusOK, items)
}

// AddBookmark обрабатывает POST /api/v1/bookmarks
func (h *Handlers) AddBookmark(w http.ResponseWriter, r *http.Request) {
	var req AddBookmarkRequest
	if err := decodeJSONBody(r, &req); err != nil || req.PropertyID <= 0 {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, "property_id is required"))
		return
	}

	bookmark, err := h.deps.Bookmarks.Add(r.Context(), req.PropertyID)
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, bookmark)
}

// RemoveBookmark обрабатывает DELETE /api/v1/bookmarks/{propertyID}
func (h *Handlers) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := int64URLParam(r, "propertyID")
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, err.Error()))
		return
	}
	if err := h.deps.Bookmarks.Remove(r.Context(), id); err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := int64URLParam(r, "propertyID")
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, err.Error()))
		return
	}
	result, err := h.deps.Bookmarks.Toggle(r.Context(), id)
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handlers) ListLikes(w http.ResponseWriter, r *http.Request) {
	items, err := h.deps.Likes.List(r.Context())
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	if items == nil {
		items = []domain.Like{}
	}
	RespondWithJSON(w, http.StatusOK, items)
}

// CheckLike никогда не отдает ошибку: при сбое объект считается не лайкнутым.
func (h *Handlers) CheckLike(w http.ResponseWriter, r *http.Request) {
	id, err := int64URLParam(r, "propertyID")
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, err.Error()))
		return
	}
	RespondWithJSON(w, http.StatusOK, h.deps.Likes.Check(r.Context(), id))
}

func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := int64URLParam(r, "propertyID")
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, err.Error()))
		return
	}
	result, err := h.deps.Likes.Toggle(r.Context(), id)
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	page, err := h.deps.Categories.List(r.Context(), r.URL.Query())
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, page)
}

func (h *Handlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := int64URLParam(r, "id")
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, err.Error()))
		return
	}
	category, err := h.deps.Categories.Get(r.Context(), id)
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, category)
}

func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	page, err := h.deps.Messages.List(r.Context(), r.URL.Query())
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, page)
}

func (h *Handlers) GetMessage(w http.ResponseWriter, r *http.Request) {
	id, err := int64URLParam(r, "id")
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, err.Error()))
		return
	}
	msg, err := h.deps.Messages.Get(r.Context(), id)
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, msg)
}

// SendMessage обрабатывает POST /api/v1/messages
func (h *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	var data domain.SendMessageData
	if err := decodeJSONBody(r, &data); err != nil {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, err.Error()))
		return
	}
	msg, err := h.deps.Messages.Send(r.Context(), data)
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, msg)
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.deps.Users.List(r.Context(), r.URL.Query())
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, page)
}

func (h *Handlers) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.deps.Users.Me(r.Context())
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, user)
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := int64URLParam(r, "id")
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, err.Error()))
		return
	}
	user, err := h.deps.Users.Get(r.Context(), id)
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, user)
}

// UpdateUser обрабатывает PATCH /api/v1/users/{id}
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := int64URLParam(r, "id")
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, err.Error()))
		return
	}
	var data domain.UpdateUserData
	if err := decodeJSONBody(r, &data); err != nil {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, err.Error()))
		return
	}
	user, err := h.deps.Users.Update(r.Context(), id, data)
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, user)
}

// SubmitContact обрабатывает POST /api/v1/contact
func (h *Handlers) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var form domain.ContactForm
	if err := decodeJSONBody(r, &form); err != nil {
		writeAPIError(w, h.deps.Normalizer, badRequest(h.deps.Normalizer, err.Error()))
		return
	}
	resp, err := h.deps.Contact.Execute(r.Context(), form)
	if err != nil {
		writeAPIError(w, h.deps.Normalizer, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, resp)
}
