package airiq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the live AirIQ TravelAPI service root.
	DefaultBaseURL = "http://airiqnewapi.mywebcheck.in/TravelAPI.svc"

	// DefaultLoginTimeout bounds POST /Login.
	DefaultLoginTimeout = 10 * time.Second

	// DefaultSearchTimeout bounds /Availability and /Pricing calls.
	DefaultSearchTimeout = 20 * time.Second

	// DefaultBookingTimeout bounds /Book calls.
	DefaultBookingTimeout = 30 * time.Second

	// DefaultRateLimit is the default number of data calls per second.
	DefaultRateLimit = 5
)

// Client is an AirIQ TravelAPI client. It owns a SessionManager for the
// token lifecycle and applies the bounded authorization retry on every
// data call.
type Client struct {
	baseURL        string
	creds          Credentials
	httpClient     *http.Client
	logger         arbor.ILogger
	limiter        *rate.Limiter
	scheme         AuthScheme
	loginTimeout   time.Duration
	searchTimeout  time.Duration
	bookingTimeout time.Duration
	tokenTTL       time.Duration
	loginLimit     int
	store          SessionStore
	session        *SessionManager
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client. Per-operation deadlines are
// applied through request contexts, so the client needs no Timeout.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the data-call rate limit in requests per second.
// Zero or negative disables limiting. Login calls are never limited.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithAuthScheme selects the Authorization header style.
func WithAuthScheme(scheme AuthScheme) ClientOption {
	return func(c *Client) {
		c.scheme = scheme
	}
}

// WithTimeouts overrides the per-operation timeouts. Zero values keep the
// defaults.
func WithTimeouts(login, search, booking time.Duration) ClientOption {
	return func(c *Client) {
		if login > 0 {
			c.loginTimeout = login
		}
		if search > 0 {
			c.searchTimeout = search
		}
		if booking > 0 {
			c.bookingTimeout = booking
		}
	}
}

// WithSessionStore persists session state across restarts.
func WithSessionStore(store SessionStore) ClientOption {
	return func(c *Client) {
		c.store = store
	}
}

// WithTokenTTL fixes the token lifetime. Zero keeps the default policy of
// trusting a token until the end of its calendar day.
func WithTokenTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.tokenTTL = ttl
	}
}

// WithDailyLoginLimit caps login attempts per calendar day. Zero means
// unlimited.
func WithDailyLoginLimit(limit int) ClientOption {
	return func(c *Client) {
		c.loginLimit = limit
	}
}

// NewClient creates an AirIQ API client. Credentials and the base URL are
// validated here so a bad deployment fails at startup rather than on the
// first search.
func NewClient(creds Credentials, opts ...ClientOption) (*Client, error) {
	c := &Client{
		baseURL:        DefaultBaseURL,
		creds:          creds,
		httpClient:     &http.Client{},
		logger:         arbor.NewLogger(),
		limiter:        rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		scheme:         AuthSchemeRaw,
		loginTimeout:   DefaultLoginTimeout,
		searchTimeout:  DefaultSearchTimeout,
		bookingTimeout: DefaultBookingTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := creds.Validate(); err != nil {
		return nil, err
	}

	parsed, err := url.Parse(c.baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &ConfigError{Field: "base_url", Message: fmt.Sprintf("%q is not a valid URL", c.baseURL)}
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")

	c.session = newSessionManager(sessionSettings{
		creds:      c.creds,
		loginURL:   c.baseURL + "/Login",
		scheme:     c.scheme,
		httpClient: c.httpClient,
		timeout:    c.loginTimeout,
		tokenTTL:   c.tokenTTL,
		loginLimit: c.loginLimit,
		store:      c.store,
		logger:     c.logger,
	})

	return c, nil
}

// Session exposes the session manager for status, manual token overrides
// and forced logins.
func (c *Client) Session() *SessionManager {
	return c.session
}

// Availability searches one-way flight availability.
func (c *Client) Availability(ctx context.Context, req AvailabilityRequest) (json.RawMessage, error) {
	payload, err := req.payload(c.agentInfo())
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode availability payload: %w", err)
	}
	return c.dispatch(ctx, "/Availability", body, c.searchTimeout)
}

// Pricing forwards a pricing payload, injecting AgentInfo when the caller
// left it out.
func (c *Client) Pricing(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	body, err := c.ensureAgentInfo(payload)
	if err != nil {
		return nil, err
	}
	return c.dispatch(ctx, "/Pricing", body, c.searchTimeout)
}

// Book forwards a booking payload, injecting AgentInfo when the caller
// left it out.
func (c *Client) Book(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	body, err := c.ensureAgentInfo(payload)
	if err != nil {
		return nil, err
	}
	return c.dispatch(ctx, "/Book", body, c.bookingTimeout)
}

func (c *Client) agentInfo() AgentInfo {
	return AgentInfo{
		AgentID:  c.creds.AgentID,
		UserName: c.creds.Username,
		AppType:  appType,
		Version:  appVersion,
	}
}

// ensureAgentInfo attaches the agency identity to a caller-supplied
// payload unless it already carries one.
func (c *Client) ensureAgentInfo(payload json.RawMessage) ([]byte, error) {
	if len(payload) == 0 {
		return nil, &ValidationError{Field: "payload", Message: "must not be empty"}
	}
	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, &ValidationError{Field: "payload", Message: "must be a JSON object"}
	}
	if _, ok := body["AgentInfo"]; !ok {
		body["AgentInfo"] = c.agentInfo()
	}
	return json.Marshal(body)
}

// dispatch runs the request protocol for one data call: acquire a token,
// send, and on a rejected token re-login once and retry with the alternate
// header scheme. A second rejection is final.
func (c *Client) dispatch(ctx context.Context, endpoint string, body []byte, timeout time.Duration) (json.RawMessage, error) {
	token, err := c.session.Token(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := c.send(ctx, endpoint, body, token, c.scheme, timeout)
	if err == nil || !errors.Is(err, errTokenRejected) {
		return raw, err
	}

	c.logger.Warn().Str("endpoint", endpoint).Msg("Session token rejected, re-authenticating")
	c.session.Invalidate()

	// Login failures here (budget exhausted, bad credentials) propagate
	// as-is; only a fresh token earns the retry.
	token, err = c.session.Token(ctx)
	if err != nil {
		return nil, err
	}

	raw, err = c.send(ctx, endpoint, body, token, c.scheme.alternate(), timeout)
	if err != nil && errors.Is(err, errTokenRejected) {
		return nil, &AuthorizationError{Endpoint: endpoint, Message: err.Error()}
	}
	return raw, err
}

// send performs one POST against a data endpoint.
func (c *Client) send(ctx context.Context, endpoint string, body []byte, token string, scheme AuthScheme, timeout time.Duration) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &RateLimitError{RetryAfter: time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", scheme.dataAuthorization(token))

	c.logger.Debug().Str("endpoint", endpoint).Msg("AirIQ request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: HTTP 401 on %s", errTokenRejected, endpoint)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(raw)),
			Endpoint:   endpoint,
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Token timeouts arrive as HTTP 200 with a failure status, so the
	// body has to be inspected before the reply is trusted.
	var env statusEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && tokenRejected(env.Status) {
		return nil, fmt.Errorf("%w: %s on %s", errTokenRejected, env.Status.Description, endpoint)
	}

	return raw, nil
}
