package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/errnorm"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ErrorResponse - единый конверт ошибки для UI.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// WriteJSONError отправляет конверт ошибки с заданным HTTP-статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, ErrorResponse{Status: statusCode, Message: message})
}

// RespondWithJSON отправляет JSON-ответ
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// HTTPStatusFor выбирает HTTP-статус для нормализованной ошибки.
func HTTPStatusFor(apiErr *domain.APIError) int {
	switch {
	case apiErr.Status >= 400:
		return apiErr.Status
	case apiErr.Kind == domain.KindValidation:
		return http.StatusBadRequest
	case apiErr.Kind == domain.KindTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// writeAPIError нормализует любую ошибку и отправляет ее в едином виде.
// Status в теле - статус бэкенда (0, если ответа не было).
func writeAPIError(w http.ResponseWriter, normalizer *errnorm.Normalizer, err error) {
	apiErr := normalizer.Normalize(err)
	RespondWithJSON(w, HTTPStatusFor(apiErr), ErrorResponse{
		Status:  apiErr.Status,
		Message: apiErr.Message,
		Details: apiErr.Details,
		Kind:    string(apiErr.Kind),
	})
}

func badRequest(normalizer *errnorm.Normalizer, details any) *domain.APIError {
	return &domain.APIError{
		Status:  http.StatusBadRequest,
		Message: normalizer.Text(errnorm.MsgBadRequest),
		Details: details,
		Kind:    domain.KindClient,
	}
}

// invalidFilter превращает ошибку разбора фильтра в ошибку проверки поля.
func invalidFilter(normalizer *errnorm.Normalizer, err error) error {
	var invalid *domain.InvalidFilterError
	if errors.As(err, &invalid) {
		return normalizer.Validation(map[string]string{
			invalid.Field: normalizer.Text(errnorm.MsgFieldInvalid, invalid.Field),
		})
	}
	return badRequest(normalizer, err.Error())
}

func decodeJSONBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// int64URLParam читает положительный числовой параметр пути.
func int64URLParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}
