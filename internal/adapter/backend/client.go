// Package backend talks to the mediapost HTTP API: the session endpoints used
// by the session coordinator and the media endpoints used by the client.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/pscheid92/mediapost/internal/domain"
	"github.com/pscheid92/mediapost/internal/platform/correlation"
	"github.com/pscheid92/mediapost/internal/platform/version"
)

const (
	loginPath   = "/api/auth/login"
	refreshPath = "/api/auth/refresh"
	logoutPath  = "/api/auth/logout"

	maxErrorBody = 4 << 10
)

// Error is a non-2xx response from the backend.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// Is matches domain.ErrUnauthorized for 401 responses and domain.ErrPostNotFound for 404.
func (e *Error) Is(target error) bool {
	switch target {
	case domain.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case domain.ErrPostNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Client implements domain.Authenticator. The refresh cookie set by the
// backend lives in the client's cookie jar.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ domain.Authenticator = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}, nil
}

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error) {
	var result *domain.LoginResult
	if err := c.do(ctx, http.MethodPost, loginPath, "", creds, &result); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return result, nil
}

// Refresh exchanges the refresh cookie for a new token. A null body means
// the backend holds no session for this client.
func (c *Client) Refresh(ctx context.Context) (*domain.LoginResult, error) {
	var result *domain.LoginResult
	if err := c.do(ctx, http.MethodPost, refreshPath, "", nil, &result); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return result, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, logoutPath, "", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// do sends in as JSON (when non-nil) and decodes the response into out
// (when non-nil). authorization, when set, is sent as the Authorization header.
func (c *Client) do(ctx context.Context, method, path, authorization string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	if id, ok := correlation.ID(ctx); ok {
		req.Header.Set(correlation.Header, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	// the backend answers {"error": "..."}; echo's own errors use "message"
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	message := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &payload) == nil {
		switch {
		case payload.Error != "":
			message = payload.Error
		case payload.Message != "":
			message = payload.Message
		}
	}

	return &Error{StatusCode: resp.StatusCode, Message: message}
}
