package models

import "time"

// Session is the persisted AirIQ session state. A single record survives
// restarts so a still-valid token and the day's login count are not lost.
type Session struct {
	ID         string    `json:"id"`
	Token      string    `json:"token"`
	Expiry     time.Time `json:"expiry"`
	LoginDay   string    `json:"login_day"`   // Calendar day the login counter belongs to (2006-01-02)
	LoginCount int       `json:"login_count"` // Logins performed on LoginDay
	Source     string    `json:"source"`      // "login" or "override"
	UpdatedAt  time.Time `json:"updated_at"`
}

// Valid reports whether the session holds a usable token at the given time.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.Token != "" && now.Before(s.Expiry)
}

// SessionStatus is the sanitized session view exposed over HTTP.
// The token never appears in full.
type SessionStatus struct {
	Authenticated bool       `json:"authenticated"`
	TokenPreview  string     `json:"token_preview,omitempty"`
	Expiry        *time.Time `json:"expiry,omitempty"`
	Source        string     `json:"source,omitempty"`
	LoginsToday   int        `json:"logins_today"`
	LoginLimit    int        `json:"login_limit"` // 0 = unlimited
}
