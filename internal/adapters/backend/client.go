// internal/adapters/backend/client.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultTimeout is the fixed client-side timeout applied to every
// outgoing call. A timed-out call surfaces through the same normalized
// error path as any other transport failure.
const DefaultTimeout = 15 * time.Second

// Config holds backend client configuration.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
}

// envelope is the backend's JSON response wrapper.
type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	ErrorCode string          `json:"errorCode,omitempty"`
}

// Client performs REST calls against the marketplace backend. It
// attaches bearer auth from its AuthSession, refreshes the access token
// on a 401 exactly once per request, and normalizes every failure into
// *APIError.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	session   *AuthSession
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewClient creates a backend client.
func NewClient(cfg Config, session *AuthSession, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)+1)
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: timeout},
		session:   session,
		limiter:   limiter,
		logger:    logger.With(slog.String("component", "backend_client")),
	}
}

// Session exposes the auth session for callers that need to observe
// authentication state.
func (c *Client) Session() *AuthSession {
	return c.session
}

// Get performs an authenticated GET and unmarshals the envelope data
// field into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.call(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return transportError(err)
		}
	}

	// Hydration must complete before the first request attaches a
	// header. A failed load is not fatal: the request proceeds
	// unauthenticated.
	if err := c.session.Hydrate(ctx); err != nil {
		c.logger.WarnContext(ctx, "token hydration failed, proceeding unauthenticated",
			slog.String("error", err.Error()))
	}

	status, env, err := c.roundTrip(ctx, method, path, query, body, c.session.AccessToken())
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		// Single refresh attempt, then one replay. A second 401 falls
		// through to the normal error path; refresh loops are capped
		// here.
		access, rerr := c.session.RefreshAccess(ctx, c.refreshTokenCall)
		if rerr != nil {
			return rerr
		}
		status, env, err = c.roundTrip(ctx, method, path, query, body, access)
		if err != nil {
			return err
		}
	}

	return decodeResult(status, env, out)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body interface{}, token string) (int, *envelope, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, transportError(fmt.Errorf("failed to encode request body: %w", err))
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, transportError(err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return 0, nil, transportError(err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		// Non-envelope bodies still normalize: keep the status, fall
		// back to a transport-level message.
		env = envelope{Message: fmt.Sprintf("unexpected response body: %s", err.Error())}
	}

	c.logger.DebugContext(ctx, "request completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	return resp.StatusCode, &env, nil
}

// refreshTokenCall exchanges the refresh token for a new pair. It goes
// out without a bearer header and bypasses the 401 handling above.
func (c *Client) refreshTokenCall(ctx context.Context, refreshToken string) (string, string, error) {
	status, env, err := c.roundTrip(ctx, http.MethodPost, "/auth/refresh-token", nil,
		map[string]string{"refreshToken": refreshToken}, "")
	if err != nil {
		return "", "", err
	}

	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := decodeResult(status, env, &data); err != nil {
		return "", "", err
	}
	if data.AccessToken == "" {
		return "", "", fmt.Errorf("refresh response missing access token")
	}
	return data.AccessToken, data.RefreshToken, nil
}

func decodeResult(status int, env *envelope, out interface{}) error {
	if status >= 400 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &APIError{Message: msg, ErrorCode: env.ErrorCode, Status: status}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &APIError{Message: fmt.Sprintf("failed to decode response data: %s", err.Error()), Status: status}
	}
	return nil
}
