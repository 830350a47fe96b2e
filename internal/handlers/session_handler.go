package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/volare/internal/interfaces"
)

// SessionHandler exposes the AirIQ session lifecycle: status, forced
// logins, manual token overrides and invalidation. Responses only ever
// carry the sanitized status view.
type SessionHandler struct {
	session interfaces.SessionController
	logger  arbor.ILogger
}

func NewSessionHandler(session interfaces.SessionController, logger arbor.ILogger) *SessionHandler {
	return &SessionHandler{
		session: session,
		logger:  logger,
	}
}

// StatusHandler handles GET /api/session
func (h *SessionHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	WriteData(w, http.StatusOK, h.session.Status())
}

// LoginHandler handles POST /api/session/login, forcing a login now. It
// spends one attempt from the daily budget.
func (h *SessionHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	if err := h.session.ForceLogin(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("Forced login failed")
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusOK, h.session.Status())
}

// SetTokenHandler handles POST /api/session/token, installing a token
// obtained out of band. Expiry is optional RFC 3339; when absent the
// standard expiry policy applies.
func (h *SessionHandler) SetTokenHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req struct {
		Token  string `json:"token"`
		Expiry string `json:"expiry"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Token == "" {
		WriteError(w, http.StatusBadRequest, "Token is required")
		return
	}

	var expiry time.Time
	if req.Expiry != "" {
		parsed, err := time.Parse(time.RFC3339, req.Expiry)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Expiry must be RFC 3339")
			return
		}
		expiry = parsed
	}

	h.session.SetToken(req.Token, expiry)
	WriteData(w, http.StatusOK, h.session.Status())
}

// InvalidateHandler handles DELETE /api/session
func (h *SessionHandler) InvalidateHandler(w http.ResponseWriter, r *http.Request) {
	h.session.Invalidate()
	h.logger.Info().Msg("Session invalidated by request")
	WriteSuccess(w, "Session invalidated")
}
