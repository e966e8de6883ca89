package domain

import "fmt"

// ErrorKind - категория нормализованной ошибки.
type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"
	KindClient     ErrorKind = "client"
	KindServer     ErrorKind = "server"
	KindTimeout    ErrorKind = "timeout"
	KindValidation ErrorKind = "validation"
	KindUnknown    ErrorKind = "unknown"
)

// APIError - единая форма ошибки для всех потребителей.
// Status 0 означает, что HTTP-ответа не было.
type APIError struct {
	Status  int       `json:"status"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	Kind    ErrorKind `json:"kind"`
	Raw     any       `json:"-"`
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return e.Message
}

// Unwrap отдает исходную ошибку, если она была.
func (e *APIError) Unwrap() error {
	if err, ok := e.Raw.(error); ok {
		return err
	}
	return nil
}

// KindForStatus выводит категорию по HTTP-статусу.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == 0:
		return KindNetwork
	case status == 422:
		return KindValidation
	case status >= 500:
		return KindServer
	case status >= 400:
		return KindClient
	}
	return KindUnknown
}

// ResponseError - неуспешный HTTP-ответ бэкенда, еще не нормализованный.
type ResponseError struct {
	Method      string
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}
