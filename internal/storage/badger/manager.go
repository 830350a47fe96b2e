package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/volare/internal/common"
	"github.com/ternarybob/volare/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db      *BadgerDB
	session interfaces.SessionStorage
	booking interfaces.BookingStorage
	logger  arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:      db,
		session: NewSessionStorage(db, logger),
		booking: NewBookingStorage(db, logger),
		logger:  logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// SessionStorage returns the Session storage interface
func (m *Manager) SessionStorage() interfaces.SessionStorage {
	return m.session
}

// BookingStorage returns the Booking storage interface
func (m *Manager) BookingStorage() interfaces.BookingStorage {
	return m.booking
}

// RunValueLogGC reclaims space in the underlying value log
func (m *Manager) RunValueLogGC() error {
	if m.db != nil {
		return m.db.RunValueLogGC()
	}
	return nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
