package backend_client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/errnorm"
	"property-explorer/internal/core/port"
	"strings"
	"time"
)

const (
	DefaultTimeout = 30 * time.Second
	maxErrorBody   = 1 << 20
)

// Client - клиент REST API бэкенда объявлений.
// Любая ошибка, которую он возвращает, уже приведена к *domain.APIError.
type Client struct {
	baseURL    *url.URL // например, "https://api.example.com/api/"
	httpClient *http.Client
	tokens     port.TokenStorePort
	normalizer *errnorm.Normalizer
}

var (
	_ port.PropertyAPIPort = (*Client)(nil)
	_ port.BookmarkAPIPort = (*Client)(nil)
	_ port.LikeAPIPort     = (*Client)(nil)
	_ port.CategoryAPIPort = (*Client)(nil)
	_ port.MessageAPIPort  = (*Client)(nil)
	_ port.UserAPIPort     = (*Client)(nil)
	_ port.AuthAPIPort     = (*Client)(nil)
	_ port.ContactAPIPort  = (*Client)(nil)
)

// NewClient - конструктор. tokens может быть nil, тогда запросы уходят без авторизации.
func NewClient(baseURL string, timeout time.Duration, tokens port.TokenStorePort, normalizer *errnorm.Normalizer) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if normalizer == nil {
		normalizer = errnorm.New("")
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		normalizer: normalizer,
	}, nil
}

// resolve строит адрес запроса: относительные пути - от базового URL, абсолютные - как есть.
func (c *Client) resolve(endpoint string, query url.Values) string {
	var u *url.URL
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			u = c.baseURL.ResolveReference(&url.URL{Path: endpoint})
		} else {
			u = parsed
		}
	} else {
		u = c.baseURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(endpoint, "/")})
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// doRequest - внутренний хелпер для выполнения запросов
func (c *Client) doRequest(ctx context.Context, method, endpoint string, query url.Values, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(endpoint, query), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// 1. Трассировка
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	// 2. Общие заголовки
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// 3. Токен сессии
	if c.tokens != nil {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			contextkeys.LoggerFromContext(ctx).Debug("Failed to read session token", port.Fields{"error": err.Error()})
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return c.httpClient.Do(req)
}

// call выполняет запрос и декодирует успешный ответ в out (если out не nil).
func (c *Client) call(ctx context.Context, method, endpoint string, query url.Values, payload, out any) error {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "BackendClient",
		"method":    method,
		"endpoint":  endpoint,
	})

	resp, err := c.doRequest(ctx, method, endpoint, query, payload)
	if err != nil {
		apiErr := c.normalizer.Normalize(err)
		clientLogger.Warn("Request to backend failed", port.Fields{"error": err.Error(), "kind": apiErr.Kind})
		return apiErr
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
			// токен больше не действителен
			if err := c.tokens.Clear(ctx); err != nil {
				clientLogger.Error("Failed to clear session tokens after 401", err, nil)
			}
		}
		apiErr := c.normalizer.Normalize(&domain.ResponseError{
			Method:      method,
			URL:         resp.Request.URL.String(),
			StatusCode:  resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        raw,
		})
		clientLogger.Warn("Backend returned an error status", port.Fields{"status_code": resp.StatusCode, "message": apiErr.Message})
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		clientLogger.Error("Failed to decode backend response", err, nil)
		return c.normalizer.Normalize(fmt.Errorf("failed to decode response from backend: %w", err))
	}
	return nil
}
