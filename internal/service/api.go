package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ElarizT/Mavericks/internal/credstore"
	"github.com/ElarizT/Mavericks/internal/domain"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status     int
	StatusText string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.Status, e.StatusText)
	}
	return fmt.Sprintf("api error: %d %s: %s", e.Status, e.StatusText, e.Message)
}

// IsAuthError reports whether the backend rejected the credentials.
func (e *APIError) IsAuthError() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// APIClient sends authenticated requests to the backend HTTP API.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	creds      *credstore.Credentials

	mu             sync.RWMutex
	onUnauthorized func()
}

func NewAPIClient(baseURL string, timeout time.Duration, creds *credstore.Credentials) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		creds:      creds,
	}
}

// OnUnauthorized sets the hook run after a 401/403 has cleared the stored
// credentials.
func (c *APIClient) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// Token returns the bearer token requests are currently sent with.
func (c *APIClient) Token(ctx context.Context) (string, error) {
	return c.creds.Token(ctx)
}

func (c *APIClient) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, withParams(path, params), nil, "", out)
}

func (c *APIClient) PostJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), "application/json", out)
}

func (c *APIClient) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", out)
}

func (c *APIClient) PostMultipart(ctx context.Context, path string, body io.Reader, contentType string, out any) error {
	return c.do(ctx, http.MethodPost, path, body, contentType, out)
}

func (c *APIClient) Patch(ctx context.Context, path string, params url.Values, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPatch, withParams(path, params), bytes.NewReader(payload), "application/json", out)
}

func (c *APIClient) Delete(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodDelete, withParams(path, params), nil, "", out)
}

// GetRaw returns the undecoded body and its content type.
func (c *APIClient) GetRaw(ctx context.Context, path string) ([]byte, string, error) {
	resp, body, err := c.send(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	_, data, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *APIClient) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, []byte, error) {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return nil, nil, err
	}
	if token == "" && !isPublicPath(path) {
		return nil, nil, domain.ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Message:    errorMessage(data),
		}
		if apiErr.IsAuthError() {
			c.forceLogout(ctx)
		} else {
			slog.Error("api request failed", "method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		}
		return nil, nil, apiErr
	}

	return resp, data, nil
}

// forceLogout drops every stored credential and tells the owner to
// re-authenticate.
func (c *APIClient) forceLogout(ctx context.Context) {
	slog.Warn("session expired, clearing credentials")
	if err := c.creds.Clear(ctx); err != nil {
		slog.Error("clear credentials after auth failure", "error", err)
	}

	c.mu.RLock()
	hook := c.onUnauthorized
	c.mu.RUnlock()
	if hook != nil {
		hook()
	}
}

func errorMessage(body []byte) string {
	var payload struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch d := payload.Detail.(type) {
		case string:
			if d != "" {
				return d
			}
		case nil:
		default:
			if raw, err := json.Marshal(d); err == nil {
				return string(raw)
			}
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}

func isPublicPath(path string) bool {
	return strings.Contains(path, "/api/login") || strings.Contains(path, "/api/register")
}

func withParams(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}
