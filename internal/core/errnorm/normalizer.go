// Package errnorm приводит любую ошибку (HTTP-ответ, сбой транспорта, строку,
// произвольное значение) к единой форме *domain.APIError с локализованным текстом.
package errnorm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"property-explorer/internal/core/domain"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const maxBodyBytes = 1 << 20

// Normalizer - локализованный нормализатор. Безопасен для конкурентного использования.
type Normalizer struct {
	tag     language.Tag
	printer *message.Printer
}

var (
	sharedCatalog = newCatalog()
	matcher       = language.NewMatcher(supported)
	defaultNorm   = New("fa")
)

// New создает нормализатор для локали (fa, en, ru). Неизвестная локаль
// сводится к ближайшей поддерживаемой.
func New(locale string) *Normalizer {
	tag := language.Persian
	if locale != "" {
		if parsed, err := language.Parse(locale); err == nil {
			_, idx, _ := matcher.Match(parsed)
			tag = supported[idx]
		}
	}
	return &Normalizer{tag: tag, printer: message.NewPrinter(tag, message.Catalog(sharedCatalog))}
}

// Locale возвращает выбранную локаль.
func (n *Normalizer) Locale() language.Tag { return n.tag }

// Text переводит ключ сообщения.
func (n *Normalizer) Text(key string, args ...any) string {
	return n.printer.Sprintf(key, args...)
}

// Normalize - то же, что (*Normalizer).Normalize с локалью по умолчанию (fa).
func Normalize(raw any) *domain.APIError {
	return defaultNorm.Normalize(raw)
}

// Normalize никогда не паникует и никогда не возвращает nil.
func (n *Normalizer) Normalize(raw any) (out *domain.APIError) {
	defer func() {
		if r := recover(); r != nil {
			out = n.unknown(raw)
		}
	}()

	switch v := raw.(type) {
	case nil:
		return n.unknown(nil)
	case *domain.APIError:
		if v == nil {
			return n.unknown(nil)
		}
		return v
	case domain.APIError:
		return &v
	case map[string]any:
		if e, ok := n.fromMap(v); ok {
			return e
		}
		return n.unknown(v)
	case *domain.ResponseError:
		if v == nil {
			return n.unknown(nil)
		}
		return n.fromResponse(v.StatusCode, v.ContentType, v.Body, v)
	case *http.Response:
		if v == nil {
			return n.unknown(nil)
		}
		return n.fromHTTPResponse(v)
	case string:
		return n.fromText(v, v)
	case error:
		return n.fromError(v)
	}
	return n.unknown(raw)
}

func (n *Normalizer) fromMap(m map[string]any) (*domain.APIError, bool) {
	msg, ok := m["message"].(string)
	if !ok {
		return nil, false
	}
	var status int
	switch s := m["status"].(type) {
	case int:
		status = s
	case float64:
		status = int(s)
	case json.Number:
		i, err := s.Int64()
		if err != nil {
			return nil, false
		}
		status = int(i)
	default:
		return nil, false
	}
	return &domain.APIError{
		Status:  status,
		Message: msg,
		Details: m["details"],
		Kind:    domain.KindForStatus(status),
		Raw:     m,
	}, true
}

func (n *Normalizer) fromHTTPResponse(resp *http.Response) *domain.APIError {
	var body []byte
	if resp.Body != nil {
		body, _ = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body = io.NopCloser(bytes.NewReader(body))
	}
	return n.fromResponse(resp.StatusCode, resp.Header.Get("Content-Type"), body, resp)
}

// fromResponse разбирает неуспешный HTTP-ответ.
// 1. Сообщение из тела: message, error, detail или errors[].
// 2. Если тела нет или в нем нет сообщения - текст по статусу.
func (n *Normalizer) fromResponse(status int, contentType string, body []byte, raw any) *domain.APIError {
	out := &domain.APIError{Status: status, Kind: domain.KindForStatus(status), Raw: raw}

	msg, details := n.parseBody(contentType, body)
	if msg != "" {
		out.Message, _ = n.mapKnown(msg)
	} else {
		out.Message = n.statusMessage(status)
	}
	out.Details = details
	return out
}

func (n *Normalizer) parseBody(contentType string, body []byte) (string, any) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", nil
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "text/plain" {
		return string(trimmed), nil
	}

	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		// HTML-страницы прокси и прочий мусор в сообщение не попадают
		return "", nil
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return "", decoded
	}

	var details any = obj
	if d, ok := obj["details"]; ok {
		details = d
	} else if e, ok := obj["errors"]; ok {
		details = e
	}

	for _, field := range []string{"message", "error", "detail"} {
		if s, ok := obj[field].(string); ok && strings.TrimSpace(s) != "" {
			return s, details
		}
	}

	if list, ok := obj["errors"].([]any); ok && len(list) > 0 {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			switch e := item.(type) {
			case string:
				parts = append(parts, e)
			case map[string]any:
				if m, ok := e["message"].(string); ok && m != "" {
					parts = append(parts, m)
				} else {
					parts = append(parts, n.Text(MsgValidation))
				}
			}
		}
		return strings.Join(parts, ", "), details
	}

	return "", details
}

func (n *Normalizer) statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return n.Text(MsgBadRequest)
	case http.StatusUnauthorized:
		return n.Text(MsgUnauthorized)
	case http.StatusForbidden:
		return n.Text(MsgForbidden)
	case http.StatusNotFound:
		return n.Text(MsgNotFound)
	case http.StatusUnprocessableEntity:
		return n.Text(MsgUnprocessable)
	case http.StatusInternalServerError:
		return n.Text(MsgServerError)
	case http.StatusBadGateway:
		return n.Text(MsgBadGateway)
	case http.StatusServiceUnavailable:
		return n.Text(MsgServiceUnavailable)
	case http.StatusGatewayTimeout:
		return n.Text(MsgGatewayTimeout)
	}
	return n.Text(MsgStatus, strconv.Itoa(status))
}

func (n *Normalizer) fromError(err error) *domain.APIError {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return n.timeout(err)
	}

	var respErr *domain.ResponseError
	if errors.As(err, &respErr) && respErr != nil {
		return n.fromResponse(respErr.StatusCode, respErr.ContentType, respErr.Body, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return n.timeout(err)
		}
		return n.network(err)
	}

	var urlErr *url.Error
	var opErr *net.OpError
	if errors.As(err, &urlErr) || errors.As(err, &opErr) {
		return n.network(err)
	}

	return n.fromText(err.Error(), err)
}

func (n *Normalizer) fromText(text string, raw any) *domain.APIError {
	if strings.TrimSpace(text) == "" {
		return n.unknown(raw)
	}
	msg, kind := n.mapKnown(text)
	return &domain.APIError{Status: 0, Message: msg, Kind: kind, Raw: raw}
}

// mapKnown подменяет известные сообщения бэкенда локализованным текстом.
func (n *Normalizer) mapKnown(msg string) (string, domain.ErrorKind) {
	lower := strings.ToLower(msg)
	for _, km := range knownMessages {
		if strings.Contains(lower, km.match) {
			kind := domain.KindUnknown
			if km.kind != "" {
				kind = domain.ErrorKind(km.kind)
			}
			return n.Text(km.key), kind
		}
	}
	return msg, domain.KindUnknown
}

func (n *Normalizer) timeout(raw any) *domain.APIError {
	return &domain.APIError{Status: 0, Message: n.Text(MsgTimeout), Kind: domain.KindTimeout, Raw: raw}
}

func (n *Normalizer) network(raw any) *domain.APIError {
	return &domain.APIError{Status: 0, Message: n.Text(MsgNetwork), Kind: domain.KindNetwork, Raw: raw}
}

func (n *Normalizer) unknown(raw any) *domain.APIError {
	return &domain.APIError{Status: 0, Message: n.Text(MsgUnknown), Details: raw, Kind: domain.KindUnknown, Raw: raw}
}

// LoadMoreTimeout - ошибка для подгрузки, не уложившейся в отведенное время.
func (n *Normalizer) LoadMoreTimeout() *domain.APIError {
	return n.timeout(context.DeadlineExceeded)
}

// Validation собирает ошибку проверки формы. fields: поле -> сообщение.
func (n *Normalizer) Validation(fields map[string]string) *domain.APIError {
	return &domain.APIError{
		Status:  0,
		Message: n.Text(MsgValidation),
		Details: fields,
		Kind:    domain.KindValidation,
	}
}

// IsNetworkError - ответа от сервера не было.
func IsNetworkError(raw any) bool {
	return Normalize(raw).Status == 0
}

func IsServerError(raw any) bool {
	return Normalize(raw).Status >= 500
}

func IsClientError(raw any) bool {
	s := Normalize(raw).Status
	return s >= 400 && s < 500
}
