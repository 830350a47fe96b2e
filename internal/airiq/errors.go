package airiq

import (
	"errors"
	"fmt"
	"time"
)

// ErrLoginBudgetExhausted is returned when the daily login allowance is
// spent. Callers should install a token via SetToken instead of retrying;
// the budget resets when the calendar day changes.
var ErrLoginBudgetExhausted = errors.New("airiq: daily login budget exhausted")

// errTokenRejected marks a data call refused for authorization reasons
// (HTTP 401 or a token-timeout status in the body). The dispatcher turns it
// into a single re-login retry, or an AuthorizationError when the retry
// fails too.
var errTokenRejected = errors.New("token rejected")

// ConfigError reports invalid client configuration detected at startup.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("airiq: invalid configuration: %s %s", e.Field, e.Message)
}

// ValidationError reports a request rejected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("airiq: invalid request: %s %s", e.Field, e.Message)
}

// AuthError reports a failed login attempt. StatusCode is zero for
// transport failures.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("AirIQ login failed: %s (status: %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("AirIQ login failed: %s", e.Message)
}

// AuthorizationError reports a data call still rejected after the single
// re-login retry.
type AuthorizationError struct {
	Endpoint string
	Message  string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("AirIQ authorization failed after retry: %s (endpoint: %s)", e.Message, e.Endpoint)
}

// APIError represents a non-auth error reply from the AirIQ API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("AirIQ API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// RateLimitError represents a rate limit error.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("AirIQ rate limit exceeded, retry after %v", e.RetryAfter)
}
