package airiq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/volare/internal/models"
)

const (
	dayFormat = "2006-01-02"

	sessionSourceLogin    = "login"
	sessionSourceOverride = "override"
)

// SessionStore persists session state across restarts. LoadSession returns
// (nil, nil) when nothing is stored.
type SessionStore interface {
	SaveSession(ctx context.Context, session *models.Session) error
	LoadSession(ctx context.Context) (*models.Session, error)
}

// sessionSettings carries the construction parameters for a SessionManager.
type sessionSettings struct {
	creds      Credentials
	loginURL   string
	scheme     AuthScheme
	httpClient *http.Client
	timeout    time.Duration
	tokenTTL   time.Duration
	loginLimit int
	store      SessionStore
	logger     arbor.ILogger
}

// SessionManager owns the cached AirIQ token and the login lifecycle:
// lazy login, expiry tracking, the daily login budget, manual overrides
// and persistence. All state transitions happen under one mutex so that
// check-then-login is atomic.
type SessionManager struct {
	creds      Credentials
	loginURL   string
	scheme     AuthScheme
	httpClient *http.Client
	timeout    time.Duration
	tokenTTL   time.Duration
	loginLimit int
	store      SessionStore
	logger     arbor.ILogger
	now        func() time.Time

	mu         sync.Mutex
	token      string
	expiry     time.Time
	source     string
	loginDay   string
	loginCount int
}

func newSessionManager(cfg sessionSettings) *SessionManager {
	m := &SessionManager{
		creds:      cfg.creds,
		loginURL:   cfg.loginURL,
		scheme:     cfg.scheme,
		httpClient: cfg.httpClient,
		timeout:    cfg.timeout,
		tokenTTL:   cfg.tokenTTL,
		loginLimit: cfg.loginLimit,
		store:      cfg.store,
		logger:     cfg.logger,
		now:        time.Now,
	}
	m.restore(context.Background())
	return m
}

// Token returns a usable session token, logging in first when the cached
// one is missing or expired. Concurrent callers ride on a single login.
func (m *SessionManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && m.now().Before(m.expiry) {
		return m.token, nil
	}
	return m.loginLocked(ctx)
}

// ForceLogin performs a login immediately, regardless of cached state. It
// spends budget like any other login.
func (m *SessionManager) ForceLogin(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.loginLocked(ctx)
	return err
}

// Invalidate drops the cached token, forcing a login on the next request.
// The day's login accounting is kept.
func (m *SessionManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clearTokenLocked()
	m.persistLocked(context.Background())

	m.logger.Debug().Msg("AirIQ session invalidated")
}

// SetToken installs an out-of-band token, bypassing login and the daily
// budget. A zero expiry applies the standard expiry policy.
func (m *SessionManager) SetToken(token string, expiry time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.rollDayLocked(now)
	if expiry.IsZero() {
		expiry = m.expiryFrom(now)
	}

	m.token = token
	m.expiry = expiry
	m.source = sessionSourceOverride
	m.persistLocked(context.Background())

	m.logger.Info().
		Str("token", tokenPreview(token)).
		Str("expiry", expiry.Format(time.RFC3339)).
		Msg("Manual AirIQ token installed")
}

// Status returns a sanitized snapshot safe to expose over HTTP. The token
// itself is never included.
func (m *SessionManager) Status() models.SessionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.rollDayLocked(now)

	status := models.SessionStatus{
		LoginsToday: m.loginCount,
		LoginLimit:  m.loginLimit,
	}
	if m.token != "" && now.Before(m.expiry) {
		expiry := m.expiry
		status.Authenticated = true
		status.TokenPreview = tokenPreview(m.token)
		status.Expiry = &expiry
		status.Source = m.source
	}
	return status
}

// loginLocked performs one POST /Login attempt. Caller holds the mutex.
func (m *SessionManager) loginLocked(ctx context.Context) (string, error) {
	now := m.now()
	m.rollDayLocked(now)

	if m.loginLimit > 0 && m.loginCount >= m.loginLimit {
		m.logger.Warn().
			Int("logins_today", m.loginCount).
			Int("limit", m.loginLimit).
			Msg("AirIQ daily login budget exhausted")
		return "", ErrLoginBudgetExhausted
	}

	// A failed login must leave the session unauthenticated, so stale
	// state is dropped before the attempt.
	m.clearTokenLocked()

	// The attempt counts against the budget whether or not it succeeds;
	// the provider has seen the call either way.
	m.loginCount++

	token, err := m.doLogin(ctx)
	if err != nil {
		m.persistLocked(ctx)
		m.logger.Warn().Err(err).Int("logins_today", m.loginCount).Msg("AirIQ login failed")
		return "", err
	}

	m.token = token
	m.expiry = m.expiryFrom(now)
	m.source = sessionSourceLogin
	m.persistLocked(ctx)

	m.logger.Info().
		Str("token", tokenPreview(token)).
		Str("expiry", m.expiry.Format(time.RFC3339)).
		Int("logins_today", m.loginCount).
		Msg("AirIQ login succeeded")

	return token, nil
}

// doLogin sends the login request. Credentials travel only in the
// Authorization header; the request has no body.
func (m *SessionManager) doLogin(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.loginURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", m.scheme.loginAuthorization(m.creds.EncodedAuthString()))

	m.logger.Debug().Str("url", m.loginURL).Msg("AirIQ login request")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Message: fmt.Sprintf("login request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &AuthError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var result loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &AuthError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to decode login response: %v", err)}
	}

	// HTTP 200 alone is not success: the provider reports login failures
	// inside the body. A usable session needs both a token and
	// ResultCode "1".
	if result.Token == "" || result.Status == nil || result.Status.ResultCode != resultCodeSuccess {
		return "", &AuthError{StatusCode: resp.StatusCode, Message: loginFailureMessage(&result)}
	}

	return result.Token, nil
}

// rollDayLocked resets the login counter when the calendar day changes.
func (m *SessionManager) rollDayLocked(now time.Time) {
	day := now.Format(dayFormat)
	if m.loginDay != day {
		m.loginDay = day
		m.loginCount = 0
	}
}

// expiryFrom computes when a token issued now stops being trusted. With no
// fixed TTL the token is kept until the next local midnight; a token the
// provider dropped earlier is recovered by the dispatcher's bounded retry.
func (m *SessionManager) expiryFrom(now time.Time) time.Time {
	if m.tokenTTL > 0 {
		return now.Add(m.tokenTTL)
	}
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}

func (m *SessionManager) clearTokenLocked() {
	m.token = ""
	m.expiry = time.Time{}
	m.source = ""
}

// persistLocked writes the current state through the store. The login
// counter is persisted even when the token is empty so the daily budget
// survives restarts.
func (m *SessionManager) persistLocked(ctx context.Context) {
	if m.store == nil {
		return
	}
	session := &models.Session{
		Token:      m.token,
		Expiry:     m.expiry,
		LoginDay:   m.loginDay,
		LoginCount: m.loginCount,
		Source:     m.source,
	}
	if err := m.store.SaveSession(ctx, session); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to persist session state")
	}
}

// restore loads persisted state at construction. A still-valid token is
// reused outright; the login counter is restored only when it belongs to
// the current day.
func (m *SessionManager) restore(ctx context.Context) {
	if m.store == nil {
		return
	}
	session, err := m.store.LoadSession(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Failed to load persisted session")
		return
	}
	if session == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if session.LoginDay == now.Format(dayFormat) {
		m.loginDay = session.LoginDay
		m.loginCount = session.LoginCount
	}
	if session.Valid(now) {
		m.token = session.Token
		m.expiry = session.Expiry
		m.source = session.Source
		m.logger.Info().
			Str("token", tokenPreview(session.Token)).
			Str("expiry", session.Expiry.Format(time.RFC3339)).
			Msg("Restored persisted AirIQ session")
	}
}

func loginFailureMessage(result *loginResponse) string {
	if result.Status != nil && result.Status.Description != "" {
		return result.Status.Description
	}
	if result.Token == "" {
		return "login response carried no token"
	}
	return "login response carried no success status"
}

// tokenPreview truncates a token for logs and status output. Full token
// values never leave the session manager.
func tokenPreview(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:8] + "..."
}
