package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/volare/internal/interfaces"
	"github.com/ternarybob/volare/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// sessionKey is the fixed record ID for the single AirIQ session. The
// service holds one provider session, not one per user.
const sessionKey = "airiq"

// SessionStorage implements the SessionStorage interface for Badger
type SessionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSessionStorage creates a new SessionStorage instance
func NewSessionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SessionStorage {
	return &SessionStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SessionStorage) SaveSession(ctx context.Context, session *models.Session) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}

	session.ID = sessionKey
	session.UpdatedAt = time.Now()

	if err := s.db.Store().Upsert(sessionKey, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SessionStorage) LoadSession(ctx context.Context) (*models.Session, error) {
	var session models.Session
	if err := s.db.Store().Get(sessionKey, &session); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &session, nil
}

func (s *SessionStorage) DeleteSession(ctx context.Context) error {
	if err := s.db.Store().Delete(sessionKey, &models.Session{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
