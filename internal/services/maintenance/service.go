// Package maintenance runs scheduled storage hygiene tasks. It only touches
// local state and never calls the AirIQ API, so the login budget is unaffected.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/volare/internal/common"
	"github.com/ternarybob/volare/internal/interfaces"
)

// Service periodically compacts the Badger value log and sweeps session
// records that no longer carry useful state.
type Service struct {
	storage interfaces.StorageManager
	cron    *cron.Cron
	logger  arbor.ILogger
	running bool

	// now is swapped in tests to pin the calendar day
	now func() time.Time
}

// NewService creates a new maintenance service
func NewService(storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		cron:    cron.New(),
		logger:  logger,
		now:     time.Now,
	}
}

// Start begins the maintenance schedule with the given cron expression
func (s *Service) Start(cronExpr string) error {
	if s.running {
		return fmt.Errorf("maintenance already running")
	}

	if cronExpr == "" {
		cronExpr = "*/30 * * * *" // Default: every 30 minutes
	}

	if _, err := s.cron.AddFunc(cronExpr, s.runMaintenance); err != nil {
		return fmt.Errorf("failed to add maintenance job: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("cron_expr", cronExpr).
		Msg("Maintenance scheduler started")

	return nil
}

// Stop halts the maintenance schedule
func (s *Service) Stop() error {
	if !s.running {
		return nil
	}

	s.cron.Stop()
	s.running = false

	s.logger.Info().Msg("Maintenance scheduler stopped")
	return nil
}

// runMaintenance executes one maintenance cycle. Panics are recovered and
// written to a crash file; an escaped panic in a cron job kills the process.
func (s *Service) runMaintenance() {
	defer func() {
		if r := recover(); r != nil {
			stackTrace := common.GetStackTrace()
			s.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", stackTrace).
				Msg("Maintenance cycle panicked - writing crash file")
			common.WriteCrashFile(r, stackTrace)
		}
	}()

	started := s.now()

	if err := s.storage.RunValueLogGC(); err != nil {
		s.logger.Warn().Err(err).Msg("Value log GC failed")
	}

	if err := s.sweepSession(context.Background()); err != nil {
		s.logger.Warn().Err(err).Msg("Session sweep failed")
	}

	s.logger.Debug().
		Dur("duration", s.now().Sub(started)).
		Msg("Maintenance cycle complete")
}

// sweepSession deletes the persisted session once both its token and its
// login counter are stale. A record from today is kept even with an expired
// token because the counter still caps further logins; re-authentication is
// left to the next API call.
func (s *Service) sweepSession(ctx context.Context) error {
	session, err := s.storage.SessionStorage().LoadSession(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	now := s.now()
	if session.Valid(now) {
		return nil
	}
	if session.LoginDay == now.Format("2006-01-02") {
		return nil
	}

	if err := s.storage.SessionStorage().DeleteSession(ctx); err != nil {
		return err
	}

	s.logger.Info().
		Str("login_day", session.LoginDay).
		Msg("Swept stale session record")
	return nil
}
