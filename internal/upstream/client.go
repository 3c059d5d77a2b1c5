package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/xiaoyu-yang48/Healthcare-Appointment-and-Records-System-sub001/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// Client talks to the remote records REST API. The API is treated as opaque:
// resource responses are streamed back to the caller unmodified.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the fixed per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithTransport installs a custom transport, typically an AuthTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// NewClient creates a records API client for the given base URL.
func NewClient(baseURL string, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
		tracer:     otel.Tracer("portal.internal.upstream"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type authResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e apiError) text() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Error != "" {
		return e.Error
	}
	return "request rejected"
}

// Login exchanges credentials for a token and profile snapshot. A rejection
// comes back as a CredentialError carrying the API's message.
func (c *Client) Login(ctx context.Context, email, password string) (string, json.RawMessage, error) {
	body := map[string]string{"email": email, "password": password}
	return c.authCall(ctx, "/api/auth/login", body)
}

// Register creates an account. The profile document, including role-specific
// fields, passes through opaquely.
func (c *Client) Register(ctx context.Context, profile json.RawMessage) (string, json.RawMessage, error) {
	return c.authCall(ctx, "/api/auth/register", profile)
}

func (c *Client) authCall(ctx context.Context, path string, body any) (string, json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "upstream.auth"+strings.ReplaceAll(path, "/", "."))
	defer span.End()

	payload, err := json.Marshal(body)
	if err != nil {
		return "", nil, fmt.Errorf("upstream: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return "", nil, fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", nil, fmt.Errorf("upstream: %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("upstream: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusConflict {
			return "", nil, &CredentialError{Message: apiErr.text()}
		}
		return "", nil, fmt.Errorf("upstream: %s returned status %d", path, resp.StatusCode)
	}

	var out authResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", nil, fmt.Errorf("upstream: decode auth response: %w", err)
	}
	if out.Token == "" || len(out.User) == 0 {
		return "", nil, fmt.Errorf("upstream: auth response missing token or user")
	}
	return out.Token, out.User, nil
}

// ValidateToken checks a stored token against the profile endpoint. Only an
// explicit 401/403 maps to ErrUnauthorized; anything else is a transport
// error. The response body is ignored.
func (c *Client) ValidateToken(ctx context.Context, token string) error {
	ctx, span := c.tracer.Start(ctx, "upstream.validate_token")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/profile", nil)
	if err != nil {
		return fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("upstream: profile check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode >= 500:
		return fmt.Errorf("upstream: profile check returned status %d", resp.StatusCode)
	default:
		return nil
	}
}

// UpdateProfile writes profile fields and returns the updated snapshot.
func (c *Client) UpdateProfile(ctx context.Context, token string, fields json.RawMessage) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "upstream.update_profile")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/auth/profile", bytes.NewReader(fields))
	if err != nil {
		return nil, fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("upstream: profile update failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upstream: read response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		return nil, fmt.Errorf("upstream: profile update returned status %d: %s", resp.StatusCode, apiErr.text())
	}
	return data, nil
}

// Do forwards an arbitrary resource call. The session's token is attached by
// the AuthTransport; the caller owns the response body.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Response, error) {
	ctx, span := c.tracer.Start(ctx, "upstream.do")
	defer span.End()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("upstream: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("upstream: %s %s failed: %w", method, path, err)
	}
	return resp, nil
}
